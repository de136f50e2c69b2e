package cell

import (
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyCellHash(t *testing.T) {
	assert.Equal(t, "96a296d224f285c67bee93c30f8a309157f0daa35dc5b87e410b78630a09cfc7", Empty().HashHex())
	assert.Equal(t, "96a296d224f285c67bee93c30f8a309157f0daa35dc5b87e410b78630a09cfc7", NewBuilder().EndCell().HashHex())
}

func TestBuilderSliceFields(t *testing.T) {
	child := NewBuilder()
	require.NoError(t, child.StoreUint(0xdead, 16))

	b := NewBuilder()
	require.NoError(t, b.StoreUint(0x178d4519, 32))
	require.NoError(t, b.StoreUint(7, 64))
	require.NoError(t, b.StoreCoins(uint256.NewInt(100_000_000_000)))
	require.NoError(t, b.StoreBit(true))
	require.NoError(t, b.StoreInt(-1, 8))
	require.NoError(t, b.StoreMaybeRef(nil))
	require.NoError(t, b.StoreMaybeRef(child.EndCell()))
	c := b.EndCell()

	s := c.BeginParse()
	op, err := s.LoadUint(32)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x178d4519), op)
	q, _ := s.LoadUint(64)
	assert.Equal(t, uint64(7), q)
	coins, err := s.LoadCoins()
	require.NoError(t, err)
	assert.Equal(t, "100000000000", coins.Dec())
	bit, _ := s.LoadBit()
	assert.True(t, bit)
	wc, _ := s.LoadInt(8)
	assert.Equal(t, int64(-1), wc)
	absent, err := s.LoadMaybeRef()
	require.NoError(t, err)
	assert.Nil(t, absent)
	present, err := s.LoadMaybeRef()
	require.NoError(t, err)
	require.NotNil(t, present)
	v, _ := present.BeginParse().LoadUint(16)
	assert.Equal(t, uint64(0xdead), v)
	assert.NoError(t, s.EnsureEmpty())

	_, err = s.LoadUint(1)
	assert.ErrorIs(t, err, ErrNotEnoughData)
	_, err = s.LoadRef()
	assert.ErrorIs(t, err, ErrNotEnoughRefs)
}

func TestCoinsEncoding(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.StoreCoins(uint256.NewInt(0)))
	assert.Equal(t, 4, b.BitLen())

	b = NewBuilder()
	require.NoError(t, b.StoreCoins(uint256.NewInt(0x0102)))
	assert.Equal(t, 4+16, b.BitLen())
	assert.Equal(t, []byte{0x20, 0x10, 0x20}, b.EndCell().Data())

	tooBig := new(uint256.Int).Lsh(uint256.NewInt(1), 120)
	assert.ErrorIs(t, NewBuilder().StoreCoins(tooBig), ErrValueTooBig)
}

func TestBuilderOverflow(t *testing.T) {
	b := NewBuilder()
	for i := 0; i < MaxBits; i++ {
		require.NoError(t, b.StoreBit(false))
	}
	assert.ErrorIs(t, b.StoreBit(true), ErrCellOverflow)

	b = NewBuilder()
	for i := 0; i < MaxRefs; i++ {
		require.NoError(t, b.StoreRef(Empty()))
	}
	assert.ErrorIs(t, b.StoreRef(Empty()), ErrCellOverflow)
	assert.ErrorIs(t, NewBuilder().StoreUint(256, 8), ErrValueTooBig)
}

func TestHashDependsOnContentAndRefs(t *testing.T) {
	a := NewBuilder()
	_ = a.StoreUint(1, 8)
	b := NewBuilder()
	_ = b.StoreUint(1, 8)
	assert.Equal(t, a.EndCell().Hash(), b.EndCell().Hash())

	_ = b.StoreRef(Empty())
	assert.NotEqual(t, a.EndCell().Hash(), b.EndCell().Hash())

	// Same bytes, different bit length.
	c := NewBuilder()
	_ = c.StoreUint(1, 9)
	assert.NotEqual(t, a.EndCell().Hash(), c.EndCell().Hash())
}

func TestBOCRoundTripKeepsHash(t *testing.T) {
	shared := NewBuilder()
	_ = shared.StoreStringTail("shared")
	sharedCell := shared.EndCell()

	mid := NewBuilder()
	_ = mid.StoreUint(5, 3)
	_ = mid.StoreRef(sharedCell)

	root := NewBuilder()
	_ = root.StoreUint(0x595f07bc, 32)
	_ = root.StoreRef(mid.EndCell())
	_ = root.StoreRef(sharedCell)
	c := root.EndCell()

	raw, err := c.ToBOC()
	require.NoError(t, err)
	parsed, err := FromBOC(raw)
	require.NoError(t, err)
	assert.Equal(t, c.Hash(), parsed.Hash())
	assert.Equal(t, 2, parsed.RefsCount())

	b64, err := c.ToBase64()
	require.NoError(t, err)
	fromB64, err := FromBase64(b64)
	require.NoError(t, err)
	assert.True(t, c.Equal(fromB64))

	raw[len(raw)-1] ^= 0xff
	_, err = FromBOC(raw)
	assert.ErrorIs(t, err, ErrInvalidBOC)
}

func TestStringTailSpansRefs(t *testing.T) {
	long := make([]byte, 300)
	for i := range long {
		long[i] = byte('a' + i%26)
	}
	b := NewBuilder()
	_ = b.StoreUint(1, 8)
	require.NoError(t, b.StoreStringTail(string(long)))

	s := b.EndCell().BeginParse()
	_, _ = s.LoadUint(8)
	out, err := s.LoadStringTail()
	require.NoError(t, err)
	assert.Equal(t, string(long), out)
}

func TestFromBOCRandomInputDoesNotPanic(t *testing.T) {
	f := fuzz.New().NilChance(0).NumElements(0, 64)
	for i := 0; i < 500; i++ {
		var raw []byte
		f.Fuzz(&raw)
		if i%2 == 0 {
			raw = append([]byte{0xb5, 0xee, 0x9c, 0x72}, raw...)
		}
		assert.NotPanics(t, func() { _, _ = FromBOC(raw) })
	}
}

func TestJSONRoundTrip(t *testing.T) {
	b := NewBuilder()
	_ = b.StoreUint(42, 7)
	c := b.EndCell()

	raw, err := c.MarshalJSON()
	require.NoError(t, err)
	var back Cell
	require.NoError(t, back.UnmarshalJSON(raw))
	assert.Equal(t, c.Hash(), back.Hash())
}

func TestWideUintIsZeroExtended(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.StoreUint(0, 107))
	require.NoError(t, b.StoreUint(5, 70))
	assert.Equal(t, 177, b.BitLen())

	s := b.EndCell().BeginParse()
	v, err := s.LoadUint(107)
	require.NoError(t, err)
	assert.Zero(t, v)
	v, err = s.LoadUint(70)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), v)

	b = NewBuilder()
	require.NoError(t, b.StoreBit(true))
	require.NoError(t, b.StoreUint(0, 69))
	_, err = b.EndCell().BeginParse().LoadUint(70)
	assert.ErrorIs(t, err, ErrValueTooBig)
}

func TestBigUintSpansWords(t *testing.T) {
	v, err := uint256.FromHex("0x1234567890abcdef1122334455667788")
	require.NoError(t, err)
	b := NewBuilder()
	require.NoError(t, b.StoreBigUint(v, 130))
	require.NoError(t, b.StoreBigUint(uint256.NewInt(3), 2))

	s := b.EndCell().BeginParse()
	got, err := s.LoadBigUint(130)
	require.NoError(t, err)
	assert.Equal(t, v.Hex(), got.Hex())
	low, _ := s.LoadUint(2)
	assert.Equal(t, uint64(3), low)
}

func TestEndCellLeavesBuilderUsable(t *testing.T) {
	b := NewBuilder()
	_ = b.StoreUint(0xab, 8)
	first := b.EndCell()
	_ = b.StoreUint(0xcd, 8)
	second := b.EndCell()

	assert.Equal(t, []byte{0xab}, first.Data())
	assert.Equal(t, []byte{0xab, 0xcd}, second.Data())
}
