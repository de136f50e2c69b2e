package jetton

import (
	"fmt"

	"github.com/mezonai/jetton/cell"
)

const (
	ContentOnchain  uint8 = 0
	ContentOffchain uint8 = 1
)

// Content is token metadata: a layout tag and a URI (or inline data) stored as a snake string.
type Content struct {
	Type uint8
	URI  string
}

func (c Content) Cell() (*cell.Cell, error) {
	b := cell.NewBuilder()
	if err := b.StoreUint(uint64(c.Type), 8); err != nil {
		return nil, err
	}
	if err := b.StoreStringTail(c.URI); err != nil {
		return nil, err
	}
	return b.EndCell(), nil
}

// ParseContent reads a content cell. An empty cell decodes to the zero Content.
func ParseContent(c *cell.Cell) (Content, error) {
	if c.BitLen() == 0 && c.RefsCount() == 0 {
		return Content{}, nil
	}
	s := c.BeginParse()
	t, err := s.LoadUint(8)
	if err != nil {
		return Content{}, fmt.Errorf("content: %w", err)
	}
	uri, err := s.LoadStringTail()
	if err != nil {
		return Content{}, fmt.Errorf("content: %w", err)
	}
	return Content{Type: uint8(t), URI: uri}, nil
}
