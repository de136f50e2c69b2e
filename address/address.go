// Package address holds actor identifiers: a workchain id and the 256-bit hash of the
// actor's initial state. The wire and text forms are those of tongo's ton.AccountID.
package address

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tonkeeper/tongo/tlb"
	"github.com/tonkeeper/tongo/ton"

	"github.com/mezonai/jetton/cell"
)

const (
	BasechainID   int32 = 0
	MasterchainID int32 = -1
)

var (
	ErrInvalidAddress     = errors.New("invalid address")
	ErrUnsupportedAddress = errors.New("unsupported address kind")
)

// Address is a ton.AccountID; Address.Address is the state hash.
type Address ton.AccountID

func New(workchain int32, hash [32]byte) *Address {
	return FromAccountID(*ton.NewAccountID(workchain, hash))
}

func FromAccountID(id ton.AccountID) *Address {
	a := Address(id)
	return &a
}

func (a *Address) AccountID() ton.AccountID {
	return ton.AccountID(*a)
}

// String returns the raw form "wc:hex".
func (a *Address) String() string {
	if a == nil {
		return "none"
	}
	id := a.AccountID()
	return id.ToRaw()
}

// Equal treats two nil addresses (addr_none) as equal.
func (a *Address) Equal(o *Address) bool {
	if a == nil || o == nil {
		return a == nil && o == nil
	}
	return *a == *o
}

// Key is the byte form used as a storage key.
func (a *Address) Key() []byte {
	out := make([]byte, 0, 36)
	out = strconv.AppendInt(out, int64(a.Workchain), 10)
	out = append(out, ':')
	return append(out, a.Address[:]...)
}

// Store writes a as MsgAddress: addr_none (00) for nil, otherwise addr_std
// (10, no anycast, workchain:int8, hash:256).
func Store(b *cell.Builder, a *Address) error {
	if a == nil {
		return b.StoreTLB(tlb.MsgAddress{SumType: "AddrNone"})
	}
	if a.Workchain < -128 || a.Workchain > 127 {
		return fmt.Errorf("%w: workchain %d does not fit addr_std", ErrInvalidAddress, a.Workchain)
	}
	id := a.AccountID()
	return b.StoreTLB(id.ToMsgAddress())
}

// Load reads a MsgAddress, returning nil for addr_none.
func Load(s *cell.Slice) (*Address, error) {
	var msg tlb.MsgAddress
	if err := s.LoadTLB(&msg); err != nil {
		return nil, err
	}
	switch msg.SumType {
	case "AddrNone":
		return nil, nil
	case "AddrStd":
		if msg.AddrStd.Anycast.Exists {
			return nil, fmt.Errorf("%w: anycast", ErrUnsupportedAddress)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAddress, msg.SumType)
	}
	id, err := ton.AccountIDFromTlb(msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return FromAccountID(*id), nil
}

// Cell wraps a single address into its own cell, the shape get-method slice arguments take.
func Cell(a *Address) (*cell.Cell, error) {
	b := cell.NewBuilder()
	if err := Store(b, a); err != nil {
		return nil, err
	}
	return b.EndCell(), nil
}

// ParseRaw accepts "wc:hex".
func ParseRaw(s string) (*Address, error) {
	if !strings.Contains(s, ":") {
		return nil, fmt.Errorf("%w: %q has no workchain separator", ErrInvalidAddress, s)
	}
	id, err := ton.AccountIDFromRaw(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidAddress, s, err)
	}
	return FromAccountID(id), nil
}

// Parse accepts both the raw and the user-friendly form.
func Parse(s string) (*Address, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ":") {
		return ParseRaw(s)
	}
	a, _, err := ParseFriendly(s)
	return a, err
}

func MustParse(s string) *Address {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a *Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = *parsed
	return nil
}
