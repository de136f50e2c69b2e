package message

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mezonai/jetton/cell"
	"github.com/mezonai/jetton/errors"
)

// SignatureBits is the width of the ed25519 signature leading an Account command.
const SignatureBits = ed25519.SignatureSize * 8

// RelayAction asks the Account to send Message with the given send mode.
type RelayAction struct {
	Mode    uint8
	Message *cell.Cell
}

// Command is the signed part of an Account external message.
type Command struct {
	Seqno      uint32
	ValidUntil uint32
	Actions    []RelayAction
}

// Cell encodes seqno:32 valid_until:32 followed by (mode:8, ^message) per action.
func (c *Command) Cell() (*cell.Cell, error) {
	if len(c.Actions) > cell.MaxRefs {
		return nil, fmt.Errorf("at most %d actions per command, got %d", cell.MaxRefs, len(c.Actions))
	}
	b := cell.NewBuilder()
	if err := b.StoreUint(uint64(c.Seqno), 32); err != nil {
		return nil, err
	}
	if err := b.StoreUint(uint64(c.ValidUntil), 32); err != nil {
		return nil, err
	}
	for _, a := range c.Actions {
		if a.Message == nil {
			return nil, fmt.Errorf("relay action without message")
		}
		if err := b.StoreUint(uint64(a.Mode), 8); err != nil {
			return nil, err
		}
		if err := b.StoreRef(a.Message); err != nil {
			return nil, err
		}
	}
	return b.EndCell(), nil
}

// SignCommand signs the hash of the command cell and prepends the signature.
func SignCommand(c *Command, key ed25519.PrivateKey) (*cell.Cell, error) {
	body, err := c.Cell()
	if err != nil {
		return nil, err
	}
	return SignBody(body, key)
}

// SignBody prepends an ed25519 signature over body.Hash() to body.
func SignBody(body *cell.Cell, key ed25519.PrivateKey) (*cell.Cell, error) {
	hash := body.Hash()
	sig := ed25519.Sign(key, hash[:])
	b := cell.NewBuilder()
	if err := b.StoreBytes(sig); err != nil {
		return nil, err
	}
	if err := b.StoreCell(body); err != nil {
		return nil, err
	}
	return b.EndCell(), nil
}

// SignedCommand is a parsed external message.
type SignedCommand struct {
	Signature []byte
	// Body is the signed remainder; its hash is what the signature covers.
	Body *cell.Cell
	Command
}

// Verify checks the signature against pub.
func (sc *SignedCommand) Verify(pub ed25519.PublicKey) bool {
	if len(pub) != ed25519.PublicKeySize || len(sc.Signature) != ed25519.SignatureSize {
		return false
	}
	hash := sc.Body.Hash()
	return ed25519.Verify(pub, hash[:], sc.Signature)
}

// ParseCommand splits an external message into signature, signed body and fields.
func ParseCommand(c *cell.Cell) (*SignedCommand, error) {
	s := c.BeginParse()
	sig, err := s.LoadBytes(ed25519.SignatureSize)
	if err != nil {
		return nil, errors.Malformed(err)
	}
	sc := &SignedCommand{Signature: sig, Body: s.ToCell()}

	bs := sc.Body.BeginParse()
	seqno, err := bs.LoadUint(32)
	if err != nil {
		return nil, errors.Malformed(err)
	}
	validUntil, err := bs.LoadUint(32)
	if err != nil {
		return nil, errors.Malformed(err)
	}
	sc.Seqno, sc.ValidUntil = uint32(seqno), uint32(validUntil)

	for bs.RefsLeft() > 0 {
		mode, err := bs.LoadUint(8)
		if err != nil {
			return nil, errors.Malformed(err)
		}
		msg, err := bs.LoadRef()
		if err != nil {
			return nil, errors.Malformed(err)
		}
		sc.Actions = append(sc.Actions, RelayAction{Mode: uint8(mode), Message: msg})
	}
	if err := bs.EnsureEmpty(); err != nil {
		return nil, errors.Errorf(errors.ErrCodeMalformedMessage, "command: %v", err)
	}
	return sc, nil
}
