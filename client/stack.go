package client

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/mezonai/jetton/address"
	"github.com/mezonai/jetton/cell"
)

// stack reads get-method results in order, like a TVM stack reader.
type stack struct {
	items []any
	pos   int
}

func newStack(items []any) *stack {
	return &stack{items: items}
}

func (s *stack) next(kind string) (any, error) {
	if s.pos >= len(s.items) {
		return nil, fmt.Errorf("stack: expected %s at %d, only %d items", kind, s.pos, len(s.items))
	}
	v := s.items[s.pos]
	s.pos++
	return v, nil
}

func (s *stack) readBigNumber() (*uint256.Int, error) {
	v, err := s.next("number")
	if err != nil {
		return nil, err
	}
	n, ok := v.(*uint256.Int)
	if !ok {
		return nil, fmt.Errorf("stack: item %d is %T, not a number", s.pos-1, v)
	}
	return n, nil
}

func (s *stack) readBoolean() (bool, error) {
	v, err := s.next("boolean")
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("stack: item %d is %T, not a boolean", s.pos-1, v)
	}
	return b, nil
}

func (s *stack) readAddress() (*address.Address, error) {
	v, err := s.next("address")
	if err != nil {
		return nil, err
	}
	a, ok := v.(*address.Address)
	if !ok {
		return nil, fmt.Errorf("stack: item %d is %T, not an address", s.pos-1, v)
	}
	return a, nil
}

func (s *stack) readCell() (*cell.Cell, error) {
	v, err := s.next("cell")
	if err != nil {
		return nil, err
	}
	c, ok := v.(*cell.Cell)
	if !ok {
		return nil, fmt.Errorf("stack: item %d is %T, not a cell", s.pos-1, v)
	}
	return c, nil
}
