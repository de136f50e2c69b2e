package cell

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/tonkeeper/tongo/boc"
)

// MaxCoinsBytes bounds the VarUInteger 16 encoding used for Coins.
const MaxCoinsBytes = 15

// Builder accumulates bits and refs for a new cell.
type Builder struct {
	bits   *boc.Cell
	bitLen int
	refs   []*Cell
}

func NewBuilder() *Builder {
	return &Builder{bits: boc.NewCell()}
}

func (b *Builder) BitLen() int {
	return b.bitLen
}

func (b *Builder) BitsLeft() int {
	return MaxBits - b.bitLen
}

func (b *Builder) RefsLeft() int {
	return MaxRefs - len(b.refs)
}

func (b *Builder) StoreBit(v bool) error {
	if b.bitLen >= MaxBits {
		return ErrCellOverflow
	}
	if err := b.bits.WriteBit(v); err != nil {
		return err
	}
	b.bitLen++
	return nil
}

// StoreUint writes v as an unsigned big-endian integer of exactly bits width.
// Widths above 64 are zero-extended on the left.
func (b *Builder) StoreUint(v uint64, bits int) error {
	if bits < 0 || bits > MaxBits {
		return fmt.Errorf("invalid bit width %d", bits)
	}
	if bits < 64 && v>>uint(bits) != 0 {
		return fmt.Errorf("%d in %d bits: %w", v, bits, ErrValueTooBig)
	}
	if b.BitsLeft() < bits {
		return ErrCellOverflow
	}
	for pad := bits - 64; pad > 0; {
		n := min(pad, 64)
		if err := b.bits.WriteUint(0, n); err != nil {
			return err
		}
		pad -= n
	}
	if n := min(bits, 64); n > 0 {
		if err := b.bits.WriteUint(v, n); err != nil {
			return err
		}
	}
	b.bitLen += bits
	return nil
}

// StoreInt writes v in two's complement using bits width (1..64).
func (b *Builder) StoreInt(v int64, bits int) error {
	if bits <= 0 || bits > 64 {
		return fmt.Errorf("invalid bit width %d", bits)
	}
	if bits < 64 {
		limit := int64(1) << uint(bits-1)
		if v < -limit || v >= limit {
			return fmt.Errorf("%d in %d bits: %w", v, bits, ErrValueTooBig)
		}
	}
	u := uint64(v)
	if bits < 64 {
		u &= (1 << uint(bits)) - 1
	}
	return b.StoreUint(u, bits)
}

// StoreBigUint writes v as an unsigned integer of bits width (0..256).
func (b *Builder) StoreBigUint(v *uint256.Int, bits int) error {
	if bits < 0 || bits > 256 {
		return fmt.Errorf("invalid bit width %d", bits)
	}
	if v == nil {
		v = new(uint256.Int)
	}
	if v.BitLen() > bits {
		return fmt.Errorf("%s in %d bits: %w", v.Dec(), bits, ErrValueTooBig)
	}
	if b.BitsLeft() < bits {
		return ErrCellOverflow
	}
	// words are little endian; every chunk below the first is a whole word
	for hi := bits; hi > 0; {
		n := hi % 64
		if n == 0 {
			n = 64
		}
		if err := b.bits.WriteUint(v[(hi-n)/64], n); err != nil {
			return err
		}
		hi -= n
	}
	b.bitLen += bits
	return nil
}

func (b *Builder) StoreBytes(p []byte) error {
	if b.BitsLeft() < len(p)*8 {
		return ErrCellOverflow
	}
	if len(p) == 0 {
		return nil
	}
	if err := b.bits.WriteBytes(p); err != nil {
		return err
	}
	b.bitLen += len(p) * 8
	return nil
}

// StoreCoins writes a VarUInteger 16: a 4-bit byte length followed by that many big-endian bytes.
func (b *Builder) StoreCoins(v *uint256.Int) error {
	if v == nil {
		v = new(uint256.Int)
	}
	n := v.ByteLen()
	if n > MaxCoinsBytes {
		return fmt.Errorf("coins %s: %w", v.Dec(), ErrValueTooBig)
	}
	if b.BitsLeft() < 4+n*8 {
		return ErrCellOverflow
	}
	if err := b.StoreUint(uint64(n), 4); err != nil {
		return err
	}
	return b.StoreBytes(v.Bytes())
}

func (b *Builder) StoreRef(c *Cell) error {
	if c == nil {
		return fmt.Errorf("nil ref")
	}
	if len(b.refs) >= MaxRefs {
		return ErrCellOverflow
	}
	b.refs = append(b.refs, c)
	return nil
}

// StoreMaybeRef writes a presence bit and, when c is not nil, the reference.
func (b *Builder) StoreMaybeRef(c *Cell) error {
	if c == nil {
		return b.StoreBit(false)
	}
	if len(b.refs) >= MaxRefs {
		return ErrCellOverflow
	}
	if err := b.StoreBit(true); err != nil {
		return err
	}
	return b.StoreRef(c)
}

// StoreSlice appends the unread remainder of s (bits and refs).
func (b *Builder) StoreSlice(s *Slice) error {
	if b.BitsLeft() < s.BitsLeft() || b.RefsLeft() < s.RefsLeft() {
		return ErrCellOverflow
	}
	for i := s.bitPos(); i < s.cell.bitLen; i++ {
		if err := b.StoreBit(s.cell.bit(i)); err != nil {
			return err
		}
	}
	b.refs = append(b.refs, s.cell.refs[s.refPos():]...)
	return nil
}

// StoreCell appends all bits and refs of c.
func (b *Builder) StoreCell(c *Cell) error {
	return b.StoreSlice(c.BeginParse())
}

// StoreBuilder appends the bits and refs accumulated so far in o.
func (b *Builder) StoreBuilder(o *Builder) error {
	return b.StoreCell(o.EndCell())
}

// StoreTLB appends v encoded by the tongo TL-B encoder.
func (b *Builder) StoreTLB(v any) error {
	c, err := FromTLB(v)
	if err != nil {
		return err
	}
	return b.StoreCell(c)
}

// StoreStringTail writes s in snake format: bytes fill the current cell and continue in a chain of refs.
func (b *Builder) StoreStringTail(s string) error {
	return b.storeSnake([]byte(s))
}

func (b *Builder) storeSnake(p []byte) error {
	room := b.BitsLeft() / 8
	if len(p) <= room {
		return b.StoreBytes(p)
	}
	if err := b.StoreBytes(p[:room]); err != nil {
		return err
	}
	next := NewBuilder()
	if err := next.storeSnake(p[room:]); err != nil {
		return err
	}
	return b.StoreRef(next.EndCell())
}

// EndCell freezes the builder contents into a cell. The builder can be reused afterwards.
func (b *Builder) EndCell() *Cell {
	b.bits.ResetCounters()
	data, err := readData(b.bits, b.bitLen)
	if err != nil {
		// every bit counted in bitLen was written to b.bits
		panic(fmt.Sprintf("read back builder bits: %v", err))
	}
	refs := make([]*Cell, len(b.refs))
	copy(refs, b.refs)
	return &Cell{data: data, bitLen: b.bitLen, refs: refs}
}
