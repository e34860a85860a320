// Package resolver implements iterative DNS resolution: starting from a
// root nameserver, following referrals down through the hierarchy until
// an authoritative answer, an authoritative non-existence, or a terminal
// failure is reached.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/dnsscience/resolverd/internal/metrics"
	"github.com/dnsscience/resolverd/internal/packet"
	"github.com/dnsscience/resolverd/internal/random"
	"github.com/dnsscience/resolverd/internal/roothints"
	"github.com/dnsscience/resolverd/internal/transport"
)

var (
	ErrMaxReferrals  = errors.New("resolver: max referrals reached")
	ErrMaxCNAMEChase = errors.New("resolver: max CNAME chase depth reached")
	ErrMaxGlueDepth  = errors.New("resolver: max nested glue lookup depth reached")
	ErrNoNameservers = errors.New("resolver: no error, answer, or nameservers in referral")
	ErrNoQuestion    = errors.New("resolver: no question to resolve")
)

// Exchanger sends an already-encoded query to a nameserver and returns its
// decoded reply. transport.Exchange satisfies this; tests substitute a
// fake to script nameserver behavior without opening real sockets.
type Exchanger func(ctx context.Context, addr net.IP, query []byte) (*packet.Message, error)

// Config bounds the resolver's iteration so that adversarial or merely
// misconfigured delegation chains fail instead of looping forever.
type Config struct {
	// QueryTimeout bounds a single upstream exchange.
	QueryTimeout time.Duration
	// MaxReferrals bounds how many times a single question may be
	// redirected to a new nameserver before giving up.
	MaxReferrals int
	// MaxCNAMEDepth bounds how many CNAME aliases are chased in sequence.
	MaxCNAMEDepth int
	// MaxGlueDepth bounds how deep a nested "resolve the NS target's own
	// address" lookup may recurse. This is the in-bailiwick defense: an NS
	// record whose target lies inside the zone it's delegating (e.g.
	// ns.example.com for example.com) has no glue, and naively resolving
	// it loops back into the same delegation.
	MaxGlueDepth int
}

// DefaultConfig returns conservative bounds in line with the timeouts a
// practical deployment is expected to enforce.
func DefaultConfig() Config {
	return Config{
		QueryTimeout:  5 * time.Second,
		MaxReferrals:  20,
		MaxCNAMEDepth: 8,
		MaxGlueDepth:  4,
	}
}

// Resolver performs iterative resolution for single questions.
type Resolver struct {
	cfg      Config
	exchange Exchanger
}

// New builds a Resolver that talks upstream over real UDP sockets via
// transport.Exchange.
func New(cfg Config) *Resolver {
	return &Resolver{cfg: cfg, exchange: transport.Exchange}
}

// NewWithExchanger builds a Resolver against a caller-supplied Exchanger,
// bypassing real UDP sockets. Used by this package's own tests and by the
// server package's tests to exercise resolution without a network.
func NewWithExchanger(cfg Config, ex Exchanger) *Resolver {
	return &Resolver{cfg: cfg, exchange: ex}
}

// Resolve performs iterative resolution of a single question, starting
// from a root nameserver. The returned Message's question section is
// never touched downstream; only id/RA-bit fixup is the caller's job.
func (r *Resolver) Resolve(ctx context.Context, q packet.Question) (*packet.Message, error) {
	roots := roothints.Addresses()
	if len(roots) == 0 {
		return nil, fmt.Errorf("resolver: no root hints configured")
	}
	return r.resolveFrom(ctx, q, roots[0], 0, 0)
}

// resolveFrom walks referrals starting at nameserver, chasing at most one
// CNAME chain (tracked by cnameDepth) and recursing into nested glue
// lookups at most glueDepth times.
func (r *Resolver) resolveFrom(ctx context.Context, q packet.Question, nameserver net.IP, cnameDepth, glueDepth int) (*packet.Message, error) {
	for referral := 0; referral < r.cfg.MaxReferrals; referral++ {
		reply, err := r.queryOne(ctx, nameserver, q)
		if err != nil {
			return nil, err
		}

		switch {
		case reply.Flags.RCode == packet.RCodeNoError && len(reply.Answers) > 0:
			return r.handleAnswer(ctx, q, reply, cnameDepth, glueDepth)

		case reply.Flags.RCode == packet.RCodeNXDomain:
			return reply, nil

		case reply.Flags.RCode != packet.RCodeNoError:
			return nil, fmt.Errorf("resolver: nonzero response code %s from %s", reply.Flags.RCode, nameserver)
		}

		// NoError, no answers: a referral deeper into the hierarchy.
		next, err := r.followReferral(ctx, reply, glueDepth)
		if err != nil {
			return nil, err
		}
		metrics.UpstreamReferralsTotal.Inc()
		nameserver = next
	}
	return nil, ErrMaxReferrals
}

// queryOne builds and sends a single outbound query: a fresh transaction
// id, the caller's question verbatim, recursion-desired clear, and every
// other flag clear.
func (r *Resolver) queryOne(ctx context.Context, nameserver net.IP, q packet.Question) (*packet.Message, error) {
	queryCtx := ctx
	var cancel context.CancelFunc
	if r.cfg.QueryTimeout > 0 {
		queryCtx, cancel = context.WithTimeout(ctx, r.cfg.QueryTimeout)
		defer cancel()
	}

	query := &packet.Message{
		ID:        random.TransactionID(),
		Flags:     packet.Flags{Opcode: packet.OpcodeQuery},
		Questions: []packet.Question{q},
	}
	wire, err := packet.Encode(query)
	if err != nil {
		return nil, fmt.Errorf("resolver: encode query: %w", err)
	}

	reply, err := r.exchange(queryCtx, nameserver, wire)
	if err != nil {
		return nil, fmt.Errorf("resolver: query %s: %w", nameserver, err)
	}
	return reply, nil
}

// followReferral scans the authority section of a referral reply for the
// first NS record, per spec servers typically randomize so taking the
// first is as good as any. It resolves that NS's address either from
// glue in the additional section, or, if absent, by recursing into this
// same algorithm bounded by MaxGlueDepth.
func (r *Resolver) followReferral(ctx context.Context, reply *packet.Message, glueDepth int) (net.IP, error) {
	var nsTarget packet.Name
	found := false
	for _, rr := range reply.Authority {
		if ns, ok := rr.Data.(packet.NSRecordData); ok {
			nsTarget = ns.Target
			found = true
			break
		}
	}
	if !found {
		return nil, ErrNoNameservers
	}

	if glue := findGlue(reply.Additional, nsTarget); glue != nil {
		return glue, nil
	}

	if glueDepth >= r.cfg.MaxGlueDepth {
		return nil, ErrMaxGlueDepth
	}

	nsQuestion := packet.Question{Name: nsTarget, Type: packet.RRTypeA, Class: packet.NewClass(packet.ClassIN)}
	nsReply, err := r.resolveFrom(ctx, nsQuestion, roothints.Addresses()[0], 0, glueDepth+1)
	if err != nil {
		return nil, fmt.Errorf("resolver: resolve nameserver %s: %w", nsTarget, err)
	}
	for _, rr := range nsReply.Answers {
		if a, ok := rr.Data.(packet.ARecordData); ok {
			return net.IP(a.Addr[:]), nil
		}
	}
	return nil, fmt.Errorf("resolver: nameserver %s resolved with no address", nsTarget)
}

// findGlue looks for an A or AAAA record in a referral's additional
// section whose owner name matches the NS target.
func findGlue(additional []packet.ResourceRecord, nsTarget packet.Name) net.IP {
	for _, rr := range additional {
		if !rr.Name.EqualFold(nsTarget) {
			continue
		}
		switch data := rr.Data.(type) {
		case packet.ARecordData:
			return net.IP(data.Addr[:])
		case packet.AAAARecordData:
			return net.IP(data.Addr[:])
		}
	}
	return nil
}

// handleAnswer implements Answer handling (spec §4.9 step 5): a
// single-record CNAME answer triggers a chase of the alias target,
// merging the chased result's records into the original reply while
// leaving the original question untouched.
func (r *Resolver) handleAnswer(ctx context.Context, q packet.Question, reply *packet.Message, cnameDepth, glueDepth int) (*packet.Message, error) {
	if len(reply.Answers) != 1 {
		return reply, nil
	}
	cname, ok := reply.Answers[0].Data.(packet.CNAMERecordData)
	if !ok {
		return reply, nil
	}
	if cnameDepth >= r.cfg.MaxCNAMEDepth {
		return nil, ErrMaxCNAMEChase
	}

	chaseQuestion := packet.Question{Name: cname.Target, Type: q.Type, Class: q.Class}
	chased, err := r.resolveFrom(ctx, chaseQuestion, roothints.Addresses()[0], cnameDepth+1, glueDepth)
	if err != nil {
		return nil, fmt.Errorf("resolver: chase CNAME %s: %w", cname.Target, err)
	}

	merged := &packet.Message{
		ID:         reply.ID,
		Flags:      reply.Flags,
		Questions:  reply.Questions,
		Answers:    append(append([]packet.ResourceRecord(nil), reply.Answers...), chased.Answers...),
		Authority:  append(append([]packet.ResourceRecord(nil), reply.Authority...), chased.Authority...),
		Additional: append(append([]packet.ResourceRecord(nil), reply.Additional...), chased.Additional...),
	}
	return merged, nil
}
