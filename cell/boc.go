package cell

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/tonkeeper/tongo/boc"
)

var ErrInvalidBOC = errors.New("invalid bag of cells")

// ToBOC serializes the cell tree rooted at c as a single-root bag of cells with a CRC32-C trailer.
func (c *Cell) ToBOC() ([]byte, error) {
	return boc.SerializeBoc(c.Raw(), false, true, false, 0)
}

// ToBase64 is the standard base64 form of ToBOC.
func (c *Cell) ToBase64() (string, error) {
	raw, err := c.ToBOC()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// FromBOC parses a single-root bag of cells.
func FromBOC(raw []byte) (c *Cell, err error) {
	defer func() {
		if r := recover(); r != nil {
			c, err = nil, fmt.Errorf("%w: %v", ErrInvalidBOC, r)
		}
	}()
	roots, err := boc.DeserializeBoc(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBOC, err)
	}
	if len(roots) != 1 {
		return nil, fmt.Errorf("%w: expected a single root, got %d", ErrInvalidBOC, len(roots))
	}
	return FromRaw(roots[0])
}

// FromBase64 decodes the standard base64 form produced by ToBase64.
func FromBase64(s string) (*Cell, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBOC, err)
	}
	return FromBOC(raw)
}

// MarshalJSON encodes the cell as a base64 BOC string.
func (c *Cell) MarshalJSON() ([]byte, error) {
	s, err := c.ToBase64()
	if err != nil {
		return nil, err
	}
	return []byte(`"` + s + `"`), nil
}

func (c *Cell) UnmarshalJSON(input []byte) error {
	if len(input) < 2 || input[0] != '"' || input[len(input)-1] != '"' {
		return fmt.Errorf("%w: expected a quoted base64 string", ErrInvalidBOC)
	}
	parsed, err := FromBase64(string(input[1 : len(input)-1]))
	if err != nil {
		return err
	}
	c.data, c.bitLen, c.refs = parsed.data, parsed.bitLen, parsed.refs
	return nil
}
