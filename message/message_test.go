package message

import (
	"crypto/ed25519"
	stderrors "errors"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mezonai/jetton/address"
	"github.com/mezonai/jetton/cell"
	"github.com/mezonai/jetton/errors"
)

var (
	alice = address.MustParse("0:1111111111111111111111111111111111111111111111111111111111111111")
	bob   = address.MustParse("0:2222222222222222222222222222222222222222222222222222222222222222")
)

func nano(v uint64) *uint256.Int { return uint256.NewInt(v) }

func TestTransferWireLayout(t *testing.T) {
	c, err := Encode(&Transfer{
		QueryID:          9,
		JettonAmount:     nano(50_000_000_000),
		To:               bob,
		ResponseAddress:  alice,
		ForwardTonAmount: nano(100_000_000),
	})
	require.NoError(t, err)

	s := c.BeginParse()
	op, _ := s.LoadUint(32)
	assert.Equal(t, uint64(0xf8a7ea5), op)
	qid, _ := s.LoadUint(64)
	assert.Equal(t, uint64(9), qid)
	amount, _ := s.LoadCoins()
	assert.Equal(t, "50000000000", amount.Dec())
	to, _ := address.Load(s)
	assert.True(t, bob.Equal(to))
	resp, _ := address.Load(s)
	assert.True(t, alice.Equal(resp))
	custom, _ := s.LoadMaybeRef()
	assert.Nil(t, custom)
	fwd, _ := s.LoadCoins()
	assert.Equal(t, "100000000", fwd.Dec())
	payload, _ := s.LoadMaybeRef()
	assert.Nil(t, payload)
	assert.NoError(t, s.EnsureEmpty())

	decoded, err := Decode(c)
	require.NoError(t, err)
	tr, ok := decoded.(*Transfer)
	require.True(t, ok)
	assert.Equal(t, uint64(9), QueryID(tr))
	assert.True(t, bob.Equal(tr.To))
}

func TestMintCarriesInnerTransfer(t *testing.T) {
	mint := &Mint{
		To:             alice,
		TotalTonAmount: nano(1_000_000_000),
		JettonAmount:   nano(100),
		Inner: &InternalTransfer{
			JettonAmount:     nano(100),
			ResponseAddress:  bob,
			ForwardTonAmount: nano(50_000_000),
		},
	}
	c, err := Encode(mint)
	require.NoError(t, err)
	assert.Equal(t, 1, c.RefsCount())

	decoded, err := Decode(c)
	require.NoError(t, err)
	got := decoded.(*Mint)
	require.NotNil(t, got.Inner)
	assert.Nil(t, got.Inner.From)
	assert.True(t, bob.Equal(got.Inner.ResponseAddress))
	assert.Equal(t, uint64(50_000_000), got.Inner.ForwardTonAmount.Uint64())

	// inner record with the wrong opcode
	b := cell.NewBuilder()
	_ = b.StoreUint(uint64(OpMint), 32)
	_ = b.StoreUint(0, 64)
	_ = address.Store(b, alice)
	_ = b.StoreCoins(nano(1))
	_ = b.StoreCoins(nano(1))
	_ = b.StoreRef(MustEncode(&Excesses{}))
	_, err = Decode(b.EndCell())
	assert.True(t, stderrors.Is(err, errors.ErrMalformedMessage))
}

func TestDecodeRejectsMalformed(t *testing.T) {
	unknown := cell.NewBuilder()
	_ = unknown.StoreUint(0xdeadbeef, 32)
	_ = unknown.StoreUint(0, 64)

	truncated := cell.NewBuilder()
	_ = truncated.StoreUint(uint64(OpBurn), 32)
	_ = truncated.StoreUint(0, 64)
	_ = truncated.StoreCoins(nano(5))

	trailing := cell.NewBuilder()
	_ = trailing.StoreCell(MustEncode(&Excesses{QueryID: 1}))
	_ = trailing.StoreUint(1, 1)

	short := cell.NewBuilder()
	_ = short.StoreUint(uint64(OpExcesses), 32)

	tests := []struct {
		name string
		body *cell.Cell
	}{
		{"nil", nil},
		{"unknown opcode", unknown.EndCell()},
		{"truncated", truncated.EndCell()},
		{"trailing bits", trailing.EndCell()},
		{"missing query id", short.EndCell()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.body)
			assert.True(t, stderrors.Is(err, errors.ErrMalformedMessage), "got %v", err)
		})
	}
}

func TestBurnCustomPayloadIsOptional(t *testing.T) {
	with, err := Decode(MustEncode(&Burn{JettonAmount: nano(5), ResponseAddress: alice, CustomPayload: cell.Empty()}))
	require.NoError(t, err)
	assert.NotNil(t, with.(*Burn).CustomPayload)

	without, err := Decode(MustEncode(&Burn{JettonAmount: nano(5), ResponseAddress: alice}))
	require.NoError(t, err)
	assert.Nil(t, without.(*Burn).CustomPayload)
}

func TestBounceBody(t *testing.T) {
	original := MustEncode(&InternalTransfer{
		QueryID:         77,
		JettonAmount:    nano(123456),
		From:            alice,
		ResponseAddress: bob,
	})
	bounced := BounceBody(original)
	assert.Equal(t, 32+256, bounced.BitLen())
	assert.Equal(t, 0, bounced.RefsCount())
	assert.True(t, IsBouncedBody(bounced))
	assert.False(t, IsBouncedBody(original))

	got, err := DecodeBounced(bounced)
	require.NoError(t, err)
	assert.Equal(t, OpInternalTransfer, got.Opcode)
	assert.Equal(t, uint64(77), got.QueryID)
	assert.Equal(t, uint64(123456), got.JettonAmount.Uint64())

	short := BounceBody(MustEncode(&Excesses{QueryID: 3}))
	assert.Equal(t, 32+96, short.BitLen())
	got, err = DecodeBounced(short)
	require.NoError(t, err)
	assert.Nil(t, got.JettonAmount)
}

// A relay message built field by field the way a wallet script does:
// 0x18 prefix, destination, value, then zeroed tail and an inline 32-bit body.
func TestParseInternalScriptLayout(t *testing.T) {
	b := cell.NewBuilder()
	require.NoError(t, b.StoreUint(0x18, 6))
	require.NoError(t, address.Store(b, bob))
	require.NoError(t, b.StoreCoins(nano(40_000_000_000)))
	require.NoError(t, b.StoreUint(0, 1+4+4+64+32+1+1))
	require.NoError(t, b.StoreUint(0, 32))

	m, err := ParseInternal(b.EndCell())
	require.NoError(t, err)
	assert.True(t, m.Bounce)
	assert.False(t, m.Bounced)
	assert.Nil(t, m.Src)
	assert.True(t, bob.Equal(m.Dest))
	assert.Equal(t, uint64(40_000_000_000), m.Amount().Uint64())
	assert.Nil(t, m.Init)
	assert.Equal(t, 32, m.Body.BitLen())
}

func TestInternalRoundTripWithStateInit(t *testing.T) {
	code := cell.NewBuilder()
	_ = code.StoreUint(1, 8)
	init := &address.StateInit{Code: code.EndCell(), Data: cell.Empty()}
	big := cell.NewBuilder()
	for i := 0; i < 15; i++ {
		_ = big.StoreUint(uint64(i), 64)
	}

	for _, body := range []*cell.Cell{nil, MustEncode(&Excesses{QueryID: 5}), big.EndCell()} {
		m := &Internal{
			Bounce:    true,
			Src:       alice,
			Dest:      bob,
			Value:     nano(1_000),
			CreatedLt: 42,
			CreatedAt: 1_700_000_000,
			Init:      init,
			Body:      body,
		}
		c, err := m.Cell()
		require.NoError(t, err)

		got, err := ParseInternal(c)
		require.NoError(t, err)
		assert.True(t, alice.Equal(got.Src))
		assert.Equal(t, uint64(42), got.CreatedLt)
		assert.Equal(t, uint32(1_700_000_000), got.CreatedAt)
		require.NotNil(t, got.Init)
		assert.True(t, init.Code.Equal(got.Init.Code))
		want := body
		if want == nil {
			want = cell.Empty()
		}
		assert.Equal(t, want.Hash(), got.Body.Hash())
	}
}

func TestSignedCommand(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	relay := &Internal{Bounce: true, Dest: bob, Value: nano(1)}
	relayCell, err := relay.Cell()
	require.NoError(t, err)

	cmd := &Command{Seqno: 4, ValidUntil: 1000, Actions: []RelayAction{{Mode: 3, Message: relayCell}}}
	signed, err := SignCommand(cmd, priv)
	require.NoError(t, err)
	assert.Equal(t, SignatureBits+32+32+8, signed.BitLen())

	sc, err := ParseCommand(signed)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), sc.Seqno)
	assert.Equal(t, uint32(1000), sc.ValidUntil)
	require.Len(t, sc.Actions, 1)
	assert.Equal(t, uint8(3), sc.Actions[0].Mode)
	assert.True(t, sc.Verify(pub))

	otherPub, _, _ := ed25519.GenerateKey(nil)
	assert.False(t, sc.Verify(otherPub))

	// heartbeat: no actions
	hb, err := SignCommand(&Command{Seqno: 0, ValidUntil: 1}, priv)
	require.NoError(t, err)
	sc, err = ParseCommand(hb)
	require.NoError(t, err)
	assert.Empty(t, sc.Actions)
	assert.True(t, sc.Verify(pub))

	// tampering with the seqno breaks the signature
	tampered := cell.NewBuilder()
	_ = tampered.StoreBytes(sc.Signature)
	_ = tampered.StoreUint(1, 32)
	_ = tampered.StoreUint(1, 32)
	sc, err = ParseCommand(tampered.EndCell())
	require.NoError(t, err)
	assert.False(t, sc.Verify(pub))

	_, err = ParseCommand(cell.Empty())
	assert.True(t, stderrors.Is(err, errors.ErrMalformedMessage))

	// a relay ref without its mode byte
	truncated := cell.NewBuilder()
	require.NoError(t, truncated.StoreBytes(sc.Signature))
	require.NoError(t, truncated.StoreUint(1, 32))
	require.NoError(t, truncated.StoreUint(1, 32))
	require.NoError(t, truncated.StoreRef(relayCell))
	_, err = ParseCommand(truncated.EndCell())
	assert.True(t, stderrors.Is(err, errors.ErrMalformedMessage))
}

func TestDecodeRandomBodiesDoesNotPanic(t *testing.T) {
	f := fuzz.New().NilChance(0)
	ops := []Opcode{OpMint, OpInternalTransfer, OpTransfer, OpBurn, OpChangeAdmin, OpChangeContent,
		OpBurnNotification, OpTransferNotification, OpExcesses}
	for i := 0; i < 1000; i++ {
		var payload []byte
		var refs uint8
		f.Fuzz(&payload)
		f.Fuzz(&refs)
		if len(payload) > 100 {
			payload = payload[:100]
		}
		b := cell.NewBuilder()
		_ = b.StoreUint(uint64(ops[i%len(ops)]), 32)
		_ = b.StoreBytes(payload)
		for j := 0; j < int(refs%5); j++ {
			_ = b.StoreRef(cell.Empty())
		}
		body := b.EndCell()
		assert.NotPanics(t, func() {
			_, _ = Decode(body)
			_, _ = ParseInternal(body)
			_, _ = ParseCommand(body)
			_, _ = DecodeBounced(body)
		})
	}
}
