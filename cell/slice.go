package cell

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/tonkeeper/tongo/boc"
	"github.com/tonkeeper/tongo/tlb"
)

// Slice reads a cell front to back.
type Slice struct {
	cell *Cell
	r    *boc.Cell
}

func (s *Slice) BitsLeft() int {
	return s.r.BitsAvailableForRead()
}

func (s *Slice) RefsLeft() int {
	return s.r.RefsAvailableForRead()
}

func (s *Slice) bitPos() int {
	return s.cell.bitLen - s.BitsLeft()
}

func (s *Slice) refPos() int {
	return len(s.cell.refs) - s.RefsLeft()
}

func (s *Slice) LoadBit() (bool, error) {
	if s.BitsLeft() < 1 {
		return false, ErrNotEnoughData
	}
	return s.r.ReadBit()
}

// PreloadUint reads without advancing.
func (s *Slice) PreloadUint(bits int) (uint64, error) {
	peek := s.cell.BeginParse()
	for n := s.bitPos(); n > 0; {
		k := min(n, 64)
		if _, err := peek.r.ReadUint(k); err != nil {
			return 0, err
		}
		n -= k
	}
	return peek.LoadUint(bits)
}

// LoadUint reads an unsigned integer of bits width. Widths above 64 must carry zeros
// in the leading bits.
func (s *Slice) LoadUint(bits int) (uint64, error) {
	if bits < 0 || bits > MaxBits {
		return 0, fmt.Errorf("invalid bit width %d", bits)
	}
	if s.BitsLeft() < bits {
		return 0, ErrNotEnoughData
	}
	for pad := bits - 64; pad > 0; {
		n := min(pad, 64)
		hi, err := s.r.ReadUint(n)
		if err != nil {
			return 0, err
		}
		if hi != 0 {
			return 0, fmt.Errorf("%d bit integer: %w", bits, ErrValueTooBig)
		}
		pad -= n
	}
	if bits == 0 {
		return 0, nil
	}
	return s.r.ReadUint(min(bits, 64))
}

func (s *Slice) LoadInt(bits int) (int64, error) {
	if bits <= 0 || bits > 64 {
		return 0, fmt.Errorf("invalid bit width %d", bits)
	}
	u, err := s.LoadUint(bits)
	if err != nil {
		return 0, err
	}
	if bits < 64 && u&(1<<uint(bits-1)) != 0 {
		u |= ^uint64(0) << uint(bits)
	}
	return int64(u), nil
}

func (s *Slice) LoadBigUint(bits int) (*uint256.Int, error) {
	if bits < 0 || bits > 256 {
		return nil, fmt.Errorf("invalid bit width %d", bits)
	}
	if s.BitsLeft() < bits {
		return nil, ErrNotEnoughData
	}
	v := new(uint256.Int)
	for left := bits; left > 0; {
		n := left % 64
		if n == 0 {
			n = 64
		}
		word, err := s.r.ReadUint(n)
		if err != nil {
			return nil, err
		}
		v.Lsh(v, uint(n))
		v.Or(v, uint256.NewInt(word))
		left -= n
	}
	return v, nil
}

func (s *Slice) LoadBytes(n int) ([]byte, error) {
	if n < 0 || s.BitsLeft() < n*8 {
		return nil, ErrNotEnoughData
	}
	if n == 0 {
		return []byte{}, nil
	}
	return s.r.ReadBytes(n)
}

func (s *Slice) LoadCoins() (*uint256.Int, error) {
	n, err := s.LoadUint(4)
	if err != nil {
		return nil, err
	}
	raw, err := s.LoadBytes(int(n))
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).SetBytes(raw), nil
}

func (s *Slice) LoadRef() (*Cell, error) {
	if s.RefsLeft() < 1 {
		return nil, ErrNotEnoughRefs
	}
	idx := s.refPos()
	if _, err := s.r.NextRef(); err != nil {
		return nil, err
	}
	return s.cell.refs[idx], nil
}

// LoadMaybeRef reads a presence bit and returns nil when the ref is absent.
func (s *Slice) LoadMaybeRef() (*Cell, error) {
	present, err := s.LoadBit()
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	return s.LoadRef()
}

// LoadTLB decodes v with the tongo TL-B decoder, advancing past the bits it consumed.
// Only bit-level types are supported; refs are not tracked through the decoder.
func (s *Slice) LoadTLB(v any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decode %T: %v", v, r)
		}
	}()
	refs := s.RefsLeft()
	if err := tlb.Unmarshal(s.r, v); err != nil {
		if s.BitsLeft() == 0 {
			return fmt.Errorf("%w: %v", ErrNotEnoughData, err)
		}
		return err
	}
	if s.RefsLeft() != refs {
		return fmt.Errorf("tl-b value consumed %d refs", refs-s.RefsLeft())
	}
	return nil
}

// LoadStringTail reads the rest of the slice and its snake continuation as a string.
func (s *Slice) LoadStringTail() (string, error) {
	var out []byte
	cur := s
	for {
		if cur.BitsLeft()%8 != 0 {
			return "", fmt.Errorf("string tail is not byte aligned")
		}
		chunk, err := cur.LoadBytes(cur.BitsLeft() / 8)
		if err != nil {
			return "", err
		}
		out = append(out, chunk...)
		if cur.RefsLeft() == 0 {
			break
		}
		next, err := cur.LoadRef()
		if err != nil {
			return "", err
		}
		cur = next.BeginParse()
	}
	return string(out), nil
}

// ToCell materializes the unread remainder into a new cell.
func (s *Slice) ToCell() *Cell {
	b := NewBuilder()
	_ = b.StoreSlice(s)
	return b.EndCell()
}

// EnsureEmpty fails when bits or refs remain unread.
func (s *Slice) EnsureEmpty() error {
	if s.BitsLeft() != 0 || s.RefsLeft() != 0 {
		return fmt.Errorf("%d bits and %d refs left unread", s.BitsLeft(), s.RefsLeft())
	}
	return nil
}
