// Package transport sends a single query to a single upstream nameserver
// over UDP and decodes its reply. It is the resolver's only means of
// talking to the outside world; there is no TCP fallback.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/dnsscience/resolverd/internal/metrics"
	"github.com/dnsscience/resolverd/internal/packet"
)

// ErrTruncated is returned when an upstream reply sets the TC bit. The spec
// this resolver follows does not retry over TCP: the caller sees whatever
// answer fit in the UDP response, marked truncated.
var ErrTruncated = errors.New("transport: response truncated")

// maxResponseSize bounds the read buffer at 2048 bytes, matching the
// upstream exchange's expected reply size; since there is no EDNS size
// negotiation, no upstream should ever need more.
const maxResponseSize = 2048

// Exchange sends query (already encoded to wire bytes) to the nameserver at
// addr over a single UDP datagram, and returns the decoded reply.
//
// A fresh, OS-assigned ephemeral source port is bound per call: binding a
// wildcard local address via net.ListenUDP with no explicit port, rather
// than reusing a pooled socket, is what makes the source port
// unpredictable to an off-path attacker trying to guess the query tuple.
func Exchange(ctx context.Context, addr net.IP, query []byte) (*packet.Message, error) {
	start := time.Now()
	defer metrics.ObserveUpstreamExchange(start)

	raddr := &net.UDPAddr{IP: addr, Port: 53}

	conn, err := net.ListenUDP("udp", nil)
	if err != nil {
		return nil, fmt.Errorf("transport: bind local socket: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return nil, fmt.Errorf("transport: set deadline: %w", err)
		}
	}

	if _, err := conn.WriteToUDP(query, raddr); err != nil {
		return nil, fmt.Errorf("transport: send query to %s: %w", raddr, err)
	}

	buf := make([]byte, maxResponseSize)
	n, from, err := conn.ReadFromUDP(buf)
	if err != nil {
		return nil, fmt.Errorf("transport: read reply from %s: %w", raddr, err)
	}
	if !from.IP.Equal(addr) {
		return nil, fmt.Errorf("transport: reply from unexpected address %s, wanted %s", from.IP, addr)
	}

	msg, err := packet.Decode(buf[:n])
	if err != nil {
		return nil, fmt.Errorf("transport: decode reply from %s: %w", raddr, err)
	}
	if msg.Flags.TC {
		return msg, ErrTruncated
	}
	return msg, nil
}
