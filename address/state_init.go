package address

import (
	"fmt"

	"github.com/tonkeeper/tongo/boc"
	"github.com/tonkeeper/tongo/tlb"

	"github.com/mezonai/jetton/cell"
)

// StateInit is the (code, data) pair an actor is instantiated from.
type StateInit struct {
	Code *cell.Cell
	Data *cell.Cell
}

// Cell encodes split_depth:none special:none code:^Cell data:^Cell library:none.
func (si *StateInit) Cell() (*cell.Cell, error) {
	if si.Code == nil || si.Data == nil {
		return nil, fmt.Errorf("state init needs both code and data")
	}
	return cell.FromTLB(tlb.StateInit{
		Code: tlb.Maybe[tlb.Ref[boc.Cell]]{Exists: true, Value: tlb.Ref[boc.Cell]{Value: *si.Code.Raw()}},
		Data: tlb.Maybe[tlb.Ref[boc.Cell]]{Exists: true, Value: tlb.Ref[boc.Cell]{Value: *si.Data.Raw()}},
	})
}

// Address returns the identifier this state would live at on workchain wc.
func (si *StateInit) Address(wc int32) (*Address, error) {
	c, err := si.Cell()
	if err != nil {
		return nil, err
	}
	return New(wc, c.Hash()), nil
}

// LoadStateInit parses the layout written by Cell. Split depth, special flags and
// libraries are rejected.
func LoadStateInit(s *cell.Slice) (*StateInit, error) {
	splitDepth, err := s.LoadBit()
	if err != nil {
		return nil, err
	}
	special, err := s.LoadBit()
	if err != nil {
		return nil, err
	}
	if splitDepth || special {
		return nil, fmt.Errorf("state init with split depth or special flags is not supported")
	}
	code, err := s.LoadMaybeRef()
	if err != nil {
		return nil, err
	}
	data, err := s.LoadMaybeRef()
	if err != nil {
		return nil, err
	}
	library, err := s.LoadBit()
	if err != nil {
		return nil, err
	}
	if library {
		return nil, fmt.Errorf("state init libraries are not supported")
	}
	if code == nil || data == nil {
		return nil, fmt.Errorf("state init without code or data")
	}
	return &StateInit{Code: code, Data: data}, nil
}

// Derive computes the address of the actor running code with initial storage data.
// It is pure: the same inputs always give the same address.
func Derive(workchain int32, code, data *cell.Cell) (*Address, error) {
	return (&StateInit{Code: code, Data: data}).Address(workchain)
}
