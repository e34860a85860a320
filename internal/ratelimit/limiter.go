// Package ratelimit provides per-client admission control for inbound
// queries, a second resource bound alongside per-query timeouts: it
// protects the worker pool from a single noisy or abusive client source
// address, independent of whether any individual query is well-formed.
package ratelimit

import (
	"net"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter enforces a token-bucket rate per client IP.
type Limiter struct {
	mu              sync.RWMutex
	limitersByIP    map[string]*rate.Limiter
	queriesPerSec   rate.Limit
	burstSize       int
	cleanupInterval time.Duration
	lastCleanup     time.Time
	exemptNets      []*net.IPNet
}

// Config configures a Limiter.
type Config struct {
	QueriesPerSecond float64
	BurstSize        int
	CleanupInterval  time.Duration
}

// DefaultConfig returns reasonable per-client bounds for a small resolver.
func DefaultConfig() Config {
	return Config{
		QueriesPerSecond: 100,
		BurstSize:        200,
		CleanupInterval:  5 * time.Minute,
	}
}

// New builds a Limiter from cfg.
func New(cfg Config) *Limiter {
	if cfg.QueriesPerSecond <= 0 {
		cfg.QueriesPerSecond = 100
	}
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = 200
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}
	return &Limiter{
		limitersByIP:    make(map[string]*rate.Limiter),
		queriesPerSec:   rate.Limit(cfg.QueriesPerSecond),
		burstSize:       cfg.BurstSize,
		cleanupInterval: cfg.CleanupInterval,
		lastCleanup:     time.Now(),
	}
}

// Allow reports whether a query from ip should be admitted.
func (rl *Limiter) Allow(ip net.IP) bool {
	if rl.isExempt(ip) {
		return true
	}

	key := ip.String()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if time.Since(rl.lastCleanup) > rl.cleanupInterval {
		rl.cleanup()
	}

	limiter, ok := rl.limitersByIP[key]
	if !ok {
		limiter = rate.NewLimiter(rl.queriesPerSec, rl.burstSize)
		rl.limitersByIP[key] = limiter
	}
	return limiter.Allow()
}

// AllowString parses ipStr and calls Allow. A string that doesn't parse as
// an IP is never rate-limited: the server's own decode/validation layer
// is responsible for rejecting malformed client addresses.
func (rl *Limiter) AllowString(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return true
	}
	return rl.Allow(ip)
}

// AddExempt marks a CIDR range (or single IP) as exempt from rate limiting.
func (rl *Limiter) AddExempt(cidr string) error {
	_, ipnet, err := net.ParseCIDR(cidr)
	if err != nil {
		ip := net.ParseIP(cidr)
		if ip == nil {
			return err
		}
		bits := 32
		if ip.To4() == nil {
			bits = 128
		}
		ipnet = &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)}
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.exemptNets = append(rl.exemptNets, ipnet)
	return nil
}

func (rl *Limiter) isExempt(ip net.IP) bool {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	for _, n := range rl.exemptNets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// cleanup drops every tracked limiter. Called with rl.mu held. A simple
// full clear is sufficient here: the cost of a client briefly regaining
// its full burst after a cleanup is far lower than the cost of tracking
// per-entry last-seen times for an unbounded set of client addresses.
func (rl *Limiter) cleanup() {
	rl.limitersByIP = make(map[string]*rate.Limiter)
	rl.lastCleanup = time.Now()
}

// Stats reports limiter bookkeeping sizes for observability.
type Stats struct {
	TrackedClients int
	ExemptNets     int
}

func (rl *Limiter) GetStats() Stats {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return Stats{
		TrackedClients: len(rl.limitersByIP),
		ExemptNets:     len(rl.exemptNets),
	}
}
