package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dnsscience/resolverd/internal/config"
	"github.com/dnsscience/resolverd/internal/cookie"
	"github.com/dnsscience/resolverd/internal/ratelimit"
	"github.com/dnsscience/resolverd/internal/resolver"
	"github.com/dnsscience/resolverd/internal/server"
)

var (
	configFile = flag.String("config", "", "YAML config file (optional; built-in defaults otherwise)")
	listenAddr = flag.String("listen", "", "UDP listen address (overrides config file)")
	stats      = flag.Bool("stats", true, "Print statistics periodically")
)

func main() {
	flag.Parse()

	cfg := config.Default()
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		cfg = *loaded
	}
	if *listenAddr != "" {
		cfg.Listen = *listenAddr
	}

	fmt.Println("╔══════════════════════════════════════════════════════════════╗")
	fmt.Println("║                                                              ║")
	fmt.Println("║                   resolverd - Iterative DNS                  ║")
	fmt.Println("║                                                              ║")
	fmt.Println("╚══════════════════════════════════════════════════════════════╝")
	fmt.Println()

	fmt.Printf("Configuration:\n")
	fmt.Printf("  Listen Address:     %s\n", cfg.Listen)
	if cfg.MetricsListen != "" {
		fmt.Printf("  Metrics Address:    %s\n", cfg.MetricsListen)
	}
	fmt.Printf("  Query Timeout:      %s\n", cfg.QueryTimeout)
	fmt.Printf("  Max Referrals:      %d\n", cfg.MaxReferrals)
	fmt.Printf("  Max CNAME Depth:    %d\n", cfg.MaxCNAMEDepth)
	fmt.Printf("  Max Glue Depth:     %d\n", cfg.MaxGlueDepth)
	fmt.Printf("  DNS Cookies:        %v\n", cfg.EnableCookies)
	fmt.Printf("  Rate Limiting:      %v\n", cfg.EnableRateLimit)
	fmt.Println()

	res := resolver.New(resolver.Config{
		QueryTimeout:  cfg.QueryTimeout,
		MaxReferrals:  cfg.MaxReferrals,
		MaxCNAMEDepth: cfg.MaxCNAMEDepth,
		MaxGlueDepth:  cfg.MaxGlueDepth,
	})

	srvCfg := server.Config{
		ListenAddr: cfg.Listen,
		Resolver:   res,
	}

	if cfg.EnableCookies {
		mgr, err := cookie.NewManager(cookie.Config{Enabled: true, RequireValid: true})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating cookie manager: %v\n", err)
			os.Exit(1)
		}
		srvCfg.Cookies = mgr
		srvCfg.RequireCookie = true
		stop := make(chan struct{})
		defer close(stop)
		go mgr.RotateSecretPeriodically(stop)
	}

	if cfg.EnableRateLimit {
		rl := ratelimit.New(ratelimit.Config{
			QueriesPerSecond: cfg.QueriesPerSecond,
			BurstSize:        cfg.BurstSize,
		})
		for _, cidr := range cfg.ExemptNets {
			if err := rl.AddExempt(cidr); err != nil {
				fmt.Fprintf(os.Stderr, "Error adding exempt net %q: %v\n", cidr, err)
				os.Exit(1)
			}
		}
		srvCfg.RateLimiter = rl
	}

	srv, err := server.New(srvCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error starting server: %v\n", err)
		os.Exit(1)
	}

	if cfg.MetricsListen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(cfg.MetricsListen, mux); err != nil {
				fmt.Fprintf(os.Stderr, "metrics server: %v\n", err)
			}
		}()
		fmt.Printf("Metrics listening on %s/metrics\n", cfg.MetricsListen)
	}

	fmt.Println("resolverd started successfully!")
	fmt.Println()

	if *stats {
		go printStats(srv)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	fmt.Println()

	if err := srv.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "Error stopping server: %v\n", err)
		os.Exit(1)
	}
}

func printStats(srv *server.Server) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		s := srv.GetStats()
		fmt.Printf("[stats] queries=%d answers=%d nxdomain=%d errors=%d dropped=%d pool_queue=%d pool_failed=%d\n",
			s.Queries, s.Answers, s.NXDomain, s.Errors, s.Dropped, s.Pool.QueueDepth, s.Pool.Failed)
	}
}
