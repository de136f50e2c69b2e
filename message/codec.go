package message

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/mezonai/jetton/address"
	"github.com/mezonai/jetton/cell"
	"github.com/mezonai/jetton/errors"
)

// Encode writes opcode:32, queryId:64 and the body fields in wire order.
func Encode(body Body) (*cell.Cell, error) {
	b := cell.NewBuilder()
	if err := b.StoreUint(uint64(body.Opcode()), 32); err != nil {
		return nil, err
	}
	if err := b.StoreUint(body.queryID(), 64); err != nil {
		return nil, err
	}
	if err := body.storeFields(b); err != nil {
		return nil, fmt.Errorf("encode %s: %w", body.Opcode(), err)
	}
	return b.EndCell(), nil
}

// MustEncode panics on encoding errors; used for bodies built from validated values.
func MustEncode(body Body) *cell.Cell {
	c, err := Encode(body)
	if err != nil {
		panic(err)
	}
	return c
}

// IsEmpty reports whether c carries no operation at all (a plain value transfer).
func IsEmpty(c *cell.Cell) bool {
	return c == nil || (c.BitLen() == 0 && c.RefsCount() == 0)
}

// PeekOpcode returns the first 32 bits of c.
func PeekOpcode(c *cell.Cell) (Opcode, error) {
	op, err := c.BeginParse().PreloadUint(32)
	if err != nil {
		return 0, errors.Malformed(err)
	}
	return Opcode(op), nil
}

// Decode parses an operation body. Unknown opcodes, truncated records and trailing
// data all fail with MalformedMessage.
func Decode(c *cell.Cell) (Body, error) {
	if c == nil {
		return nil, errors.Errorf(errors.ErrCodeMalformedMessage, "empty body")
	}
	s := c.BeginParse()
	body, err := load(s)
	if err != nil {
		return nil, errors.Malformed(err)
	}
	if err := s.EnsureEmpty(); err != nil {
		return nil, errors.Errorf(errors.ErrCodeMalformedMessage, "%s body: %v", body.Opcode(), err)
	}
	return body, nil
}

func load(s *cell.Slice) (Body, error) {
	rawOp, err := s.LoadUint(32)
	if err != nil {
		return nil, err
	}
	qid, err := s.LoadUint(64)
	if err != nil {
		return nil, err
	}
	r := &reader{s: s}

	switch op := Opcode(rawOp); op {
	case OpMint:
		m := &Mint{QueryID: qid}
		m.To = r.addr()
		m.TotalTonAmount = r.coins()
		m.JettonAmount = r.coins()
		innerCell := r.ref()
		if r.err != nil {
			return nil, r.err
		}
		inner, err := Decode(innerCell)
		if err != nil {
			return nil, fmt.Errorf("mint inner record: %w", err)
		}
		transfer, ok := inner.(*InternalTransfer)
		if !ok {
			return nil, fmt.Errorf("mint inner record has opcode %s", inner.Opcode())
		}
		m.Inner = transfer
		return m, nil
	case OpInternalTransfer:
		m := &InternalTransfer{QueryID: qid}
		m.JettonAmount = r.coins()
		m.From = r.addr()
		m.ResponseAddress = r.addr()
		m.ForwardTonAmount = r.coins()
		m.ForwardPayload = r.maybeRef()
		return m, r.err
	case OpTransfer:
		m := &Transfer{QueryID: qid}
		m.JettonAmount = r.coins()
		m.To = r.addr()
		m.ResponseAddress = r.addr()
		m.CustomPayload = r.maybeRef()
		m.ForwardTonAmount = r.coins()
		m.ForwardPayload = r.maybeRef()
		return m, r.err
	case OpBurn:
		m := &Burn{QueryID: qid}
		m.JettonAmount = r.coins()
		m.ResponseAddress = r.addr()
		m.CustomPayload = r.maybeRef()
		return m, r.err
	case OpChangeAdmin:
		m := &ChangeAdmin{QueryID: qid}
		m.NewAdmin = r.addr()
		return m, r.err
	case OpChangeContent:
		m := &ChangeContent{QueryID: qid}
		m.Content = r.ref()
		return m, r.err
	case OpBurnNotification:
		m := &BurnNotification{QueryID: qid}
		m.JettonAmount = r.coins()
		m.Owner = r.addr()
		m.ResponseAddress = r.addr()
		return m, r.err
	case OpTransferNotification:
		m := &TransferNotification{QueryID: qid}
		m.JettonAmount = r.coins()
		m.From = r.addr()
		m.ForwardPayload = r.maybeRef()
		return m, r.err
	case OpExcesses:
		return &Excesses{QueryID: qid}, nil
	default:
		return nil, fmt.Errorf("unknown opcode %s", op)
	}
}

// reader keeps the first error so field sequences read linearly.
type reader struct {
	s   *cell.Slice
	err error
}

func (r *reader) coins() *uint256.Int {
	if r.err != nil {
		return nil
	}
	var v *uint256.Int
	v, r.err = r.s.LoadCoins()
	return v
}

func (r *reader) addr() *address.Address {
	if r.err != nil {
		return nil
	}
	var a *address.Address
	a, r.err = address.Load(r.s)
	return a
}

func (r *reader) ref() *cell.Cell {
	if r.err != nil {
		return nil
	}
	var c *cell.Cell
	c, r.err = r.s.LoadRef()
	return c
}

func (r *reader) maybeRef() *cell.Cell {
	if r.err != nil {
		return nil
	}
	var c *cell.Cell
	c, r.err = r.s.LoadMaybeRef()
	return c
}
