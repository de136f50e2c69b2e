package message

import (
	"github.com/holiman/uint256"

	"github.com/mezonai/jetton/cell"
	"github.com/mezonai/jetton/errors"
)

// BouncedPrefix starts every bounced body.
const BouncedPrefix uint32 = 0xffffffff

const bouncedBodyBits = 256

// BounceBody builds the body returned to a sender: the prefix followed by the first
// 256 bits of the original body, without its refs.
func BounceBody(original *cell.Cell) *cell.Cell {
	b := cell.NewBuilder()
	_ = b.StoreUint(uint64(BouncedPrefix), 32)
	if original == nil {
		return b.EndCell()
	}
	s := original.BeginParse()
	n := s.BitsLeft()
	if n > bouncedBodyBits {
		n = bouncedBodyBits
	}
	for i := 0; i < n; i++ {
		bit, _ := s.LoadBit()
		_ = b.StoreBit(bit)
	}
	return b.EndCell()
}

// Bounced is what survives of an operation body after a bounce.
type Bounced struct {
	Opcode  Opcode
	QueryID uint64
	// JettonAmount is set for opcodes whose first field is an amount.
	JettonAmount *uint256.Int
}

// DecodeBounced reads a body produced by BounceBody.
func DecodeBounced(c *cell.Cell) (*Bounced, error) {
	s := c.BeginParse()
	prefix, err := s.LoadUint(32)
	if err != nil {
		return nil, errors.Malformed(err)
	}
	if uint32(prefix) != BouncedPrefix {
		return nil, errors.Errorf(errors.ErrCodeMalformedMessage, "missing bounced prefix")
	}
	op, err := s.LoadUint(32)
	if err != nil {
		return nil, errors.Malformed(err)
	}
	qid, err := s.LoadUint(64)
	if err != nil {
		return nil, errors.Malformed(err)
	}
	out := &Bounced{Opcode: Opcode(op), QueryID: qid}
	switch out.Opcode {
	case OpInternalTransfer, OpTransfer, OpBurn, OpBurnNotification, OpTransferNotification:
		amount, err := s.LoadCoins()
		if err != nil {
			return nil, errors.Malformed(err)
		}
		out.JettonAmount = amount
	}
	return out, nil
}

// IsBouncedBody reports whether c starts with the bounced prefix.
func IsBouncedBody(c *cell.Cell) bool {
	if c == nil {
		return false
	}
	v, err := c.BeginParse().PreloadUint(32)
	return err == nil && uint32(v) == BouncedPrefix
}
