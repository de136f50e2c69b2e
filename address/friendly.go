package address

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/tonkeeper/tongo/ton"
)

const (
	tagBounceable    = 0x11
	tagNonBounceable = 0x51
	tagTestnet       = 0x80
)

// Flags carried by the user-friendly form.
type Flags struct {
	Bounceable bool
	Testnet    bool
}

// ToFriendly returns the 48 character base64url form: tag, workchain, hash and a CRC16 checksum.
func (a *Address) ToFriendly(bounceable, testnet bool) string {
	id := a.AccountID()
	return id.ToHuman(bounceable, testnet)
}

// ParseFriendly decodes the user-friendly form, url-safe or standard alphabet.
func ParseFriendly(s string) (*Address, Flags, error) {
	if len(s) != 48 {
		return nil, Flags{}, fmt.Errorf("%w: friendly form must be 48 characters", ErrInvalidAddress)
	}
	s = strings.NewReplacer("+", "-", "/", "_").Replace(s)
	id, err := ton.AccountIDFromBase64Url(s)
	if err != nil {
		return nil, Flags{}, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	head, err := base64.URLEncoding.DecodeString(s[:4])
	if err != nil {
		return nil, Flags{}, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}

	var flags Flags
	tag := head[0]
	if tag&tagTestnet != 0 {
		flags.Testnet = true
		tag &^= tagTestnet
	}
	switch tag {
	case tagBounceable:
		flags.Bounceable = true
	case tagNonBounceable:
	default:
		return nil, Flags{}, fmt.Errorf("%w: unknown tag 0x%x", ErrInvalidAddress, head[0])
	}
	return FromAccountID(id), flags, nil
}
