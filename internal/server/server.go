// Package server provides the UDP front end (C10): it binds a listening
// socket, decodes each inbound datagram, dispatches it to an independent
// worker for resolution, and writes the encoded reply back to the
// original sender. Workers share nothing but the listening socket, which
// is read-only for the acceptor and write-only for workers.
package server

import (
	"context"
	"fmt"
	"net"
	"os"
	"sync/atomic"
	"time"

	"github.com/dnsscience/resolverd/internal/cookie"
	"github.com/dnsscience/resolverd/internal/metrics"
	"github.com/dnsscience/resolverd/internal/packet"
	"github.com/dnsscience/resolverd/internal/pool"
	"github.com/dnsscience/resolverd/internal/ratelimit"
	"github.com/dnsscience/resolverd/internal/resolver"
	"github.com/dnsscience/resolverd/internal/worker"
)

// Config holds server wiring: where to listen, how to resolve, and which
// optional admission controls to apply before resolving.
type Config struct {
	ListenAddr string

	Resolver *resolver.Resolver

	Workers   int
	QueueSize int

	Cookies       *cookie.Manager // nil disables cookie validation
	RequireCookie bool
	RateLimiter   *ratelimit.Limiter // nil disables rate limiting
}

// Server is the UDP DNS server front end.
type Server struct {
	cfg  Config
	conn *net.UDPConn
	pool *worker.Pool

	queries  atomic.Uint64
	answers  atomic.Uint64
	errors   atomic.Uint64
	dropped  atomic.Uint64
	nxdomain atomic.Uint64

	done chan struct{}
}

// New builds a Server bound to no socket yet; call Start to begin serving.
func New(cfg Config) (*Server, error) {
	if cfg.Resolver == nil {
		return nil, fmt.Errorf("server: Resolver is required")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 64
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = cfg.Workers * 10
	}

	return &Server{
		cfg:  cfg,
		pool: worker.NewPool(worker.Config{Workers: cfg.Workers, QueueSize: cfg.QueueSize}),
		done: make(chan struct{}),
	}, nil
}

// Start binds the UDP listener and begins the accept loop in a background
// goroutine. It returns once the socket is bound.
func (s *Server) Start() error {
	addr, err := net.ResolveUDPAddr("udp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("server: resolve %s: %w", s.cfg.ListenAddr, err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("server: listen on %s: %w", s.cfg.ListenAddr, err)
	}
	s.conn = conn

	go s.acceptLoop()
	return nil
}

// Stop closes the listening socket and drains the worker pool. In-flight
// workers finish their current datagram; no new ones are accepted.
func (s *Server) Stop() error {
	close(s.done)
	if s.conn != nil {
		s.conn.Close()
	}
	return s.pool.Close()
}

// acceptLoop reads datagrams off the listen socket and hands each one to
// the worker pool. The acceptor itself never blocks on resolution.
func (s *Server) acceptLoop() {
	const maxDatagramSize = 1500
	for {
		select {
		case <-s.done:
			return
		default:
		}

		buf := pool.GetBuffer(maxDatagramSize)
		n, addr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			pool.PutBuffer(buf)
			select {
			case <-s.done:
				return
			default:
				fmt.Fprintf(os.Stderr, "server: read error: %v\n", err)
				continue
			}
		}

		datagram := make([]byte, n)
		copy(datagram, buf[:n])
		pool.PutBuffer(buf)
		clientAddr := addr

		job := worker.JobFunc(func(ctx context.Context) error {
			s.handleDatagram(ctx, datagram, clientAddr)
			return nil
		})
		if err := s.pool.SubmitAsync(context.Background(), job); err != nil {
			fmt.Fprintf(os.Stderr, "server: dispatch dropped from %s: %v\n", clientAddr, err)
		}
	}
}

// handleDatagram implements the per-request steps from spec §4.10: decode,
// synthesize FormErr on decode failure, require exactly one question,
// resolve, fix up id/RA, encode, and write the reply to the original
// source address.
func (s *Server) handleDatagram(ctx context.Context, datagram []byte, addr *net.UDPAddr) {
	s.queries.Add(1)

	msg, err := packet.Decode(datagram)
	if err != nil {
		s.errors.Add(1)
		var fe *packet.FormatError
		if ok := asFormatError(err, &fe); ok {
			metrics.FormErrorsTotal.WithLabelValues("decode").Inc()
			if reply := packet.ErrorResponse(fe.Partial); reply != nil {
				s.send(reply, addr)
				return
			}
		}
		s.dropped.Add(1)
		metrics.DroppedTotal.Inc()
		return
	}

	if len(msg.Questions) == 1 {
		metrics.QueriesTotal.WithLabelValues(msg.Questions[0].Type.String()).Inc()
	}

	if len(msg.Questions) != 1 {
		s.errors.Add(1)
		metrics.FormErrorsTotal.WithLabelValues("question_count").Inc()
		s.send(&packet.Message{
			ID:    msg.ID,
			Flags: packet.Flags{QR: true, Opcode: msg.Flags.Opcode, RD: msg.Flags.RD, CD: msg.Flags.CD, RCode: packet.RCodeFormErr},
		}, addr)
		return
	}

	if s.cfg.RateLimiter != nil && !s.cfg.RateLimiter.Allow(addr.IP) {
		metrics.RateLimitedTotal.Inc()
		s.dropped.Add(1)
		return
	}

	if s.cfg.Cookies != nil {
		if reply := s.checkCookie(msg, addr); reply != nil {
			s.errors.Add(1)
			s.send(reply, addr)
			return
		}
	}

	start := time.Now()
	resp, err := s.cfg.Resolver.Resolve(ctx, msg.Questions[0])
	if err != nil {
		// Apart from FormErr (and Refused for a failed required cookie
		// check), this server synthesizes no failure response; a
		// resolution failure is dropped rather than
		// answered with a synthesized SERVFAIL (a production implementation
		// would send one, but that's out of scope here).
		s.errors.Add(1)
		s.dropped.Add(1)
		metrics.ObserveResolution("error", start)
		metrics.DroppedTotal.Inc()
		return
	}

	resp.ID = msg.ID
	resp.Flags.QR = true
	resp.Flags.RA = true

	outcome := "answered"
	if resp.Flags.RCode == packet.RCodeNXDomain {
		s.nxdomain.Add(1)
		outcome = "nxdomain"
	}
	metrics.ObserveResolution(outcome, start)
	metrics.RepliesTotal.WithLabelValues(resp.Flags.RCode.String()).Inc()
	s.answers.Add(1)
	s.send(resp, addr)
}

// checkCookie validates an inbound DNS Cookie option if one is present in
// the query's EDNS OPT record. It returns a non-nil reply only when the
// query must be rejected (invalid cookie with validation required); a nil
// return means resolution should proceed normally.
//
// A full server-cookie round trip (generating and echoing a fresh server
// cookie on every reply) needs a reply-side OPT record, which this
// resolver doesn't synthesize: the core wire codec has no EDNS size
// negotiation (a stated non-goal), so cookie support here is
// validate-only. BADCOOKIE (RFC 7873) is an EDNS extended-rcode,
// unrepresentable in the plain 4-bit RCode this codec models, so a
// failed validation is surfaced as Refused instead.
func (s *Server) checkCookie(msg *packet.Message, addr *net.UDPAddr) *packet.Message {
	for _, rr := range msg.Additional {
		if rr.Type != packet.RRTypeOPT {
			continue
		}
		raw, ok := rr.Data.(packet.OtherRecordData)
		if !ok {
			continue
		}
		clientCookie, serverCookie, found := extractCookieOption(raw.Raw)
		if !found {
			return nil
		}
		if len(serverCookie) == 0 {
			return nil // first query from this client: nothing to validate yet
		}
		var sc [8]byte
		copy(sc[:], serverCookie)
		if err := s.cfg.Cookies.ValidateServerCookie(clientCookie, sc, addr.IP); err != nil && s.cfg.RequireCookie {
			return &packet.Message{
				ID:    msg.ID,
				Flags: packet.Flags{QR: true, Opcode: msg.Flags.Opcode, RD: msg.Flags.RD, RCode: packet.RCodeRefused},
			}
		}
		return nil
	}
	return nil
}

// extractCookieOption scans an OPT record's raw rdata for an EDNS COOKIE
// option (code 10, RFC 7873 §4) among its TLV-encoded options.
func extractCookieOption(rdata []byte) (clientCookie [8]byte, serverCookie []byte, found bool) {
	const cookieOptionCode = 10
	pos := 0
	for pos+4 <= len(rdata) {
		code := uint16(rdata[pos])<<8 | uint16(rdata[pos+1])
		length := uint16(rdata[pos+2])<<8 | uint16(rdata[pos+3])
		pos += 4
		if pos+int(length) > len(rdata) {
			return clientCookie, nil, false
		}
		if code == cookieOptionCode {
			cc, sc, err := cookie.ParseCookie(rdata[pos : pos+int(length)])
			if err != nil {
				return clientCookie, nil, false
			}
			return cc, sc, true
		}
		pos += int(length)
	}
	return clientCookie, nil, false
}

func (s *Server) send(msg *packet.Message, addr *net.UDPAddr) {
	wire, err := packet.Encode(msg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "server: encode reply to %s: %v\n", addr, err)
		return
	}
	if _, err := s.conn.WriteToUDP(wire, addr); err != nil {
		fmt.Fprintf(os.Stderr, "server: write reply to %s: %v\n", addr, err)
	}
}

func asFormatError(err error, target **packet.FormatError) bool {
	fe, ok := err.(*packet.FormatError)
	if !ok {
		return false
	}
	*target = fe
	return true
}

// Stats reports server-level counters for observability, including the
// dispatch pool's own view of queue depth and job outcomes.
type Stats struct {
	Queries  uint64
	Answers  uint64
	Errors   uint64
	Dropped  uint64
	NXDomain uint64
	Pool     worker.Stats
}

func (s *Server) GetStats() Stats {
	return Stats{
		Queries:  s.queries.Load(),
		Answers:  s.answers.Load(),
		Errors:   s.errors.Load(),
		Dropped:  s.dropped.Load(),
		NXDomain: s.nxdomain.Load(),
		Pool:     s.pool.GetStats(),
	}
}
