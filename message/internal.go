package message

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/mezonai/jetton/address"
	"github.com/mezonai/jetton/cell"
	"github.com/mezonai/jetton/errors"
)

// Internal is an actor-to-actor message: the int_msg_info header, an optional
// StateInit for lazy instantiation, and the body.
type Internal struct {
	Bounce    bool
	Bounced   bool
	Src       *address.Address
	Dest      *address.Address
	Value     *uint256.Int
	IHRFee    *uint256.Int
	FwdFee    *uint256.Int
	CreatedLt uint64
	CreatedAt uint32
	Init      *address.StateInit
	Body      *cell.Cell
}

// Amount returns Value, treating nil as zero.
func (m *Internal) Amount() *uint256.Int {
	if m.Value == nil {
		return new(uint256.Int)
	}
	return m.Value
}

// Cell encodes the message. The StateInit goes by ref; the body is kept inline when it fits.
func (m *Internal) Cell() (*cell.Cell, error) {
	b := cell.NewBuilder()
	err := run(
		func() error { return b.StoreBit(false) }, // int_msg_info$0
		func() error { return b.StoreBit(true) },  // ihr_disabled
		func() error { return b.StoreBit(m.Bounce) },
		func() error { return b.StoreBit(m.Bounced) },
		func() error { return address.Store(b, m.Src) },
		func() error { return address.Store(b, m.Dest) },
		func() error { return b.StoreCoins(m.Value) },
		func() error { return b.StoreBit(false) }, // no extra currencies
		func() error { return b.StoreCoins(m.IHRFee) },
		func() error { return b.StoreCoins(m.FwdFee) },
		func() error { return b.StoreUint(m.CreatedLt, 64) },
		func() error { return b.StoreUint(uint64(m.CreatedAt), 32) },
	)
	if err != nil {
		return nil, err
	}

	if m.Init == nil {
		err = b.StoreBit(false)
	} else {
		var initCell *cell.Cell
		if initCell, err = m.Init.Cell(); err == nil {
			err = run(
				func() error { return b.StoreBit(true) },
				func() error { return b.StoreBit(true) },
				func() error { return b.StoreRef(initCell) },
			)
		}
	}
	if err != nil {
		return nil, err
	}

	body := m.Body
	if body == nil {
		body = cell.Empty()
	}
	if b.BitsLeft() > body.BitLen() && b.RefsLeft() >= body.RefsCount() {
		err = run(
			func() error { return b.StoreBit(false) },
			func() error { return b.StoreCell(body) },
		)
	} else {
		err = run(
			func() error { return b.StoreBit(true) },
			func() error { return b.StoreRef(body) },
		)
	}
	if err != nil {
		return nil, err
	}
	return b.EndCell(), nil
}

// ParseInternal decodes an internal message. Only int_msg_info is accepted; src may be
// addr_none, which the sender's substrate fills in when relaying.
func ParseInternal(c *cell.Cell) (*Internal, error) {
	m, err := parseInternal(c.BeginParse())
	if err != nil {
		return nil, errors.Malformed(err)
	}
	return m, nil
}

func parseInternal(s *cell.Slice) (*Internal, error) {
	kind, err := s.LoadBit()
	if err != nil {
		return nil, err
	}
	if kind {
		return nil, fmt.Errorf("only internal messages can be relayed")
	}
	m := &Internal{}
	r := &reader{s: s}
	r.bit() // ihr_disabled
	m.Bounce = r.bit()
	m.Bounced = r.bit()
	m.Src = r.addr()
	m.Dest = r.addr()
	m.Value = r.coins()
	if r.bit() {
		return nil, fmt.Errorf("extra currencies are not supported")
	}
	m.IHRFee = r.coins()
	m.FwdFee = r.coins()
	m.CreatedLt = r.uint(64)
	m.CreatedAt = uint32(r.uint(32))
	hasInit := r.bit()
	if r.err != nil {
		return nil, r.err
	}
	if m.Dest == nil {
		return nil, fmt.Errorf("internal message without destination")
	}

	if hasInit {
		if r.bit() {
			ref := r.ref()
			if r.err != nil {
				return nil, r.err
			}
			m.Init, err = address.LoadStateInit(ref.BeginParse())
		} else {
			m.Init, err = address.LoadStateInit(s)
		}
		if err != nil {
			return nil, err
		}
	}

	if r.bit() {
		m.Body = r.ref()
	} else {
		m.Body = s.ToCell()
	}
	if r.err != nil {
		return nil, r.err
	}
	return m, nil
}

func (r *reader) bit() bool {
	if r.err != nil {
		return false
	}
	var v bool
	v, r.err = r.s.LoadBit()
	return v
}

func (r *reader) uint(bits int) uint64 {
	if r.err != nil {
		return 0
	}
	var v uint64
	v, r.err = r.s.LoadUint(bits)
	return v
}
