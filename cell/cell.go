// Package cell implements the bit-and-reference record model every message body and
// every piece of actor storage is encoded in. A cell carries at most 1023 data bits and
// at most 4 references to child cells; its identity is the representation hash.
//
// Builders and slices keep their bits in tongo boc cells, so hashing, bag-of-cells
// serialization and TL-B encoding follow the reference TON implementation.
package cell

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/tonkeeper/tongo/boc"
	"github.com/tonkeeper/tongo/tlb"
)

const (
	MaxBits = 1023
	MaxRefs = 4
)

var (
	ErrCellOverflow  = errors.New("cell overflow")
	ErrNotEnoughData = errors.New("not enough data in cell")
	ErrNotEnoughRefs = errors.New("not enough refs in cell")
	ErrValueTooBig   = errors.New("value does not fit into requested bit width")
)

// Cell is immutable once produced by Builder.EndCell or FromBOC.
type Cell struct {
	data   []byte
	bitLen int
	refs   []*Cell

	rawOnce  sync.Once
	raw      *boc.Cell
	hashOnce sync.Once
	hash     [32]byte
}

// Empty returns a cell with no bits and no refs.
func Empty() *Cell {
	return &Cell{}
}

func (c *Cell) BitLen() int {
	return c.bitLen
}

func (c *Cell) RefsCount() int {
	return len(c.refs)
}

// Ref returns the i-th child cell.
func (c *Cell) Ref(i int) (*Cell, error) {
	if i < 0 || i >= len(c.refs) {
		return nil, fmt.Errorf("ref %d: %w", i, ErrNotEnoughRefs)
	}
	return c.refs[i], nil
}

// Data returns a copy of the data bytes; the last byte is zero-padded when BitLen is not a multiple of 8.
func (c *Cell) Data() []byte {
	out := make([]byte, (c.bitLen+7)/8)
	copy(out, c.data)
	return out
}

// BeginParse returns a reader positioned at the first bit and first ref.
func (c *Cell) BeginParse() *Slice {
	r := boc.NewCell()
	_ = writeData(r, c.data, c.bitLen)
	for _, ref := range c.refs {
		_ = r.AddRef(ref.Raw())
	}
	return &Slice{cell: c, r: r}
}

// Raw returns the tongo form of the cell tree. Callers must not write to it.
func (c *Cell) Raw() *boc.Cell {
	c.rawOnce.Do(func() {
		if c.raw != nil {
			return
		}
		r := boc.NewCell()
		_ = writeData(r, c.data, c.bitLen)
		for _, ref := range c.refs {
			_ = r.AddRef(ref.Raw())
		}
		c.raw = r
	})
	return c.raw
}

// Hash returns the representation hash.
func (c *Cell) Hash() [32]byte {
	c.hashOnce.Do(func() {
		h, err := c.Raw().Hash()
		if err != nil {
			// only ordinary cells are ever built or accepted from a BOC
			panic(fmt.Sprintf("hash of ordinary cell: %v", err))
		}
		copy(c.hash[:], h)
	})
	return c.hash
}

// FromRaw converts a tongo cell tree. Exotic cells are rejected.
func FromRaw(r *boc.Cell) (*Cell, error) {
	return fromRaw(r, make(map[*boc.Cell]*Cell))
}

func fromRaw(r *boc.Cell, seen map[*boc.Cell]*Cell) (*Cell, error) {
	if c, ok := seen[r]; ok {
		return c, nil
	}
	if r.IsExotic() {
		return nil, fmt.Errorf("%w: exotic cell", ErrInvalidBOC)
	}
	r.ResetCounters()
	bitLen := r.BitsAvailableForRead()
	data, err := readData(r, bitLen)
	if err != nil {
		return nil, err
	}
	c := &Cell{data: data, bitLen: bitLen}
	for _, child := range r.Refs() {
		ref, err := fromRaw(child, seen)
		if err != nil {
			return nil, err
		}
		c.refs = append(c.refs, ref)
	}
	r.ResetCounters()
	c.raw = r
	seen[r] = c
	return c, nil
}

// FromTLB encodes v with the tongo TL-B encoder into a standalone cell.
func FromTLB(v any) (*Cell, error) {
	r := boc.NewCell()
	if err := tlb.Marshal(r, v); err != nil {
		return nil, err
	}
	return FromRaw(r)
}

// writeData appends bitLen bits of data, most significant bit first.
func writeData(r *boc.Cell, data []byte, bitLen int) error {
	full := bitLen / 8
	if full > 0 {
		if err := r.WriteBytes(data[:full]); err != nil {
			return err
		}
	}
	if rem := bitLen % 8; rem != 0 {
		return r.WriteUint(uint64(data[full]>>(8-rem)), rem)
	}
	return nil
}

func readData(r *boc.Cell, bitLen int) ([]byte, error) {
	out := make([]byte, (bitLen+7)/8)
	full := bitLen / 8
	if full > 0 {
		b, err := r.ReadBytes(full)
		if err != nil {
			return nil, err
		}
		copy(out, b)
	}
	if rem := bitLen % 8; rem != 0 {
		v, err := r.ReadUint(rem)
		if err != nil {
			return nil, err
		}
		out[full] = byte(v << (8 - rem))
	}
	return out, nil
}

func (c *Cell) bit(i int) bool {
	return c.data[i/8]&(1<<(7-i%8)) != 0
}

// Equal reports whether both cells have the same representation hash.
func (c *Cell) Equal(o *Cell) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c.Hash() == o.Hash()
}

// HashHex is the lowercase hex form of Hash.
func (c *Cell) HashHex() string {
	h := c.Hash()
	return hex.EncodeToString(h[:])
}

func (c *Cell) String() string {
	var sb strings.Builder
	c.dump(&sb, 0)
	return sb.String()
}

func (c *Cell) dump(sb *strings.Builder, indent int) {
	sb.WriteString(strings.Repeat("  ", indent))
	fmt.Fprintf(sb, "%d[%s]", c.bitLen, strings.ToUpper(hex.EncodeToString(c.dumpData())))
	if len(c.refs) > 0 {
		sb.WriteString(" -> {\n")
		for _, r := range c.refs {
			r.dump(sb, indent+1)
			sb.WriteString("\n")
		}
		sb.WriteString(strings.Repeat("  ", indent))
		sb.WriteString("}")
	}
}

// dumpData appends the completion tag when the data is not byte aligned.
func (c *Cell) dumpData() []byte {
	out := c.Data()
	if rem := c.bitLen % 8; rem != 0 {
		out[len(out)-1] |= 1 << (7 - rem)
	}
	return out
}
