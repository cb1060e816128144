package led

import (
	"encoding"
	"fmt"
	"strconv"
	"strings"
)

// RGB is a single LED color as a red, green, blue channel triple.
type RGB [3]uint8

// Black is the all-channels-off color.
var Black = RGB{}

// Color is a color in either of the two accepted forms: an RGB channel
// triple or an integer packed as 0xRRGGBB. RGB normalizes the color to
// the triple form before any channel arithmetic happens.
type Color interface {
	RGB() RGB
}

// RGB implements Color.
func (c RGB) RGB() RGB { return c }

var (
	_ encoding.TextUnmarshaler = (*RGB)(nil)
	_ encoding.TextMarshaler   = RGB{}
)

// UnmarshalText parses a "#RRGGBB" hex string.
func (c *RGB) UnmarshalText(text []byte) error {
	s := strings.TrimPrefix(string(text), "#")
	if len(s) != 6 {
		return fmt.Errorf("invalid color %q: want #RRGGBB", text)
	}

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return fmt.Errorf("invalid color %q: %w", text, err)
	}

	*c = PackedColor(v).RGB()
	return nil
}

func (c RGB) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("#%02X%02X%02X", c[0], c[1], c[2])), nil
}

// PackedColor is a color packed into the low 24 bits of an integer as
// 0xRRGGBB.
type PackedColor uint32

// RGB decomposes the packed value as 3 big-endian bytes, so 0xFFAABB
// becomes (255, 170, 187).
func (c PackedColor) RGB() RGB {
	return RGB{uint8(c >> 16), uint8(c >> 8), uint8(c)}
}

// Valid reports whether the packed value fits in 24 bits.
func (c PackedColor) Valid() bool { return c <= 0xFFFFFF }
