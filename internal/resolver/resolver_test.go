package resolver

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dnsscience/resolverd/internal/packet"
)

func testQuestion(name string) packet.Question {
	return packet.Question{
		Name:  mustName(name),
		Type:  packet.RRTypeA,
		Class: packet.NewClass(packet.ClassIN),
	}
}

func mustName(dotted string) packet.Name {
	var labels [][]byte
	start := 0
	for i := 0; i <= len(dotted); i++ {
		if i == len(dotted) || dotted[i] == '.' {
			if i > start {
				labels = append(labels, []byte(dotted[start:i]))
			}
			start = i + 1
		}
	}
	return packet.Name{Labels: labels}
}

func nxdomainReply(id uint16, q packet.Question) *packet.Message {
	return &packet.Message{
		ID:        id,
		Flags:     packet.Flags{QR: true, RCode: packet.RCodeNXDomain},
		Questions: []packet.Question{q},
	}
}

func answerReply(id uint16, q packet.Question, rr packet.ResourceRecord) *packet.Message {
	return &packet.Message{
		ID:        id,
		Flags:     packet.Flags{QR: true, RCode: packet.RCodeNoError},
		Questions: []packet.Question{q},
		Answers:   []packet.ResourceRecord{rr},
	}
}

func aRecord(name packet.Name, ip net.IP) packet.ResourceRecord {
	var addr [4]byte
	copy(addr[:], ip.To4())
	return packet.ResourceRecord{
		Name: name, Type: packet.RRTypeA, Class: packet.NewClass(packet.ClassIN), TTL: 300,
		Data: packet.ARecordData{Addr: addr},
	}
}

func cnameRecord(name packet.Name, target packet.Name) packet.ResourceRecord {
	return packet.ResourceRecord{
		Name: name, Type: packet.RRTypeCNAME, Class: packet.NewClass(packet.ClassIN), TTL: 300,
		Data: packet.CNAMERecordData{Target: target},
	}
}

func TestResolveNXDomainPropagatesVerbatim(t *testing.T) {
	q := testQuestion("nonexistent.test.")

	ex := func(ctx context.Context, addr net.IP, query []byte) (*packet.Message, error) {
		qm, err := packet.Decode(query)
		require.NoError(t, err)
		return nxdomainReply(qm.ID, q), nil
	}

	r := NewWithExchanger(DefaultConfig(), ex)
	reply, err := r.Resolve(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, packet.RCodeNXDomain, reply.Flags.RCode)
}

func TestResolveFollowsReferralUsingGlue(t *testing.T) {
	target := mustName("example.test.")
	nsTarget := mustName("ns1.example.test.")
	tldServer := net.ParseIP("203.0.113.10")
	authServer := net.ParseIP("203.0.113.20")

	ex := func(ctx context.Context, addr net.IP, query []byte) (*packet.Message, error) {
		qm, err := packet.Decode(query)
		require.NoError(t, err)
		q := qm.Questions[0]

		if addr.Equal(authServer) {
			return answerReply(qm.ID, q, aRecord(target, net.ParseIP("192.0.2.1"))), nil
		}

		// root or TLD: refer to authServer via glue.
		return &packet.Message{
			ID:        qm.ID,
			Flags:     packet.Flags{QR: true, RCode: packet.RCodeNoError},
			Questions: []packet.Question{q},
			Authority: []packet.ResourceRecord{
				{Name: target, Type: packet.RRTypeNS, Class: packet.NewClass(packet.ClassIN), TTL: 300,
					Data: packet.NSRecordData{Target: nsTarget}},
			},
			Additional: []packet.ResourceRecord{
				aRecord(nsTarget, authServer),
			},
		}, nil
	}
	_ = tldServer

	q := packet.Question{Name: target, Type: packet.RRTypeA, Class: packet.NewClass(packet.ClassIN)}
	r := NewWithExchanger(DefaultConfig(), ex)
	reply, err := r.Resolve(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, reply.Answers, 1)
	a, ok := reply.Answers[0].Data.(packet.ARecordData)
	require.True(t, ok)
	assert.Equal(t, net.ParseIP("192.0.2.1").To4(), net.IP(a.Addr[:]))
}

func TestResolveChasesCNAME(t *testing.T) {
	alias := mustName("alias.test.")
	canonical := mustName("target.test.")

	ex := func(ctx context.Context, addr net.IP, query []byte) (*packet.Message, error) {
		qm, err := packet.Decode(query)
		require.NoError(t, err)
		q := qm.Questions[0]
		if q.Name.EqualFold(alias) {
			return answerReply(qm.ID, q, cnameRecord(alias, canonical)), nil
		}
		return answerReply(qm.ID, q, aRecord(canonical, net.ParseIP("10.0.0.1"))), nil
	}

	q := packet.Question{Name: alias, Type: packet.RRTypeA, Class: packet.NewClass(packet.ClassIN)}
	r := NewWithExchanger(DefaultConfig(), ex)
	reply, err := r.Resolve(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, reply.Answers, 2)
	assert.Equal(t, packet.RRTypeCNAME, reply.Answers[0].Type)
	assert.Equal(t, packet.RRTypeA, reply.Answers[1].Type)
	assert.True(t, reply.Questions[0].Name.EqualFold(alias))
}

func TestResolveFailsOnServerError(t *testing.T) {
	q := testQuestion("broken.test.")
	ex := func(ctx context.Context, addr net.IP, query []byte) (*packet.Message, error) {
		qm, err := packet.Decode(query)
		require.NoError(t, err)
		return &packet.Message{ID: qm.ID, Flags: packet.Flags{QR: true, RCode: packet.RCodeServFail}, Questions: qm.Questions}, nil
	}
	r := NewWithExchanger(DefaultConfig(), ex)
	_, err := r.Resolve(context.Background(), q)
	assert.Error(t, err)
}

func TestResolveDetectsReferralWithNoNameservers(t *testing.T) {
	q := testQuestion("stuck.test.")
	ex := func(ctx context.Context, addr net.IP, query []byte) (*packet.Message, error) {
		qm, err := packet.Decode(query)
		require.NoError(t, err)
		return &packet.Message{ID: qm.ID, Flags: packet.Flags{QR: true, RCode: packet.RCodeNoError}, Questions: qm.Questions}, nil
	}
	r := NewWithExchanger(DefaultConfig(), ex)
	_, err := r.Resolve(context.Background(), q)
	assert.ErrorIs(t, err, ErrNoNameservers)
}
