package scene

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/achilleasa/vista/types"
	"gopkg.in/yaml.v3"
)

// An RGB color with components in the [0, 1] range. In scene documents
// colors are written as "#RGB", "#RRGGBB", "0xRRGGBB" or as an integer.
type Color types.Vec3

// Create a color from a packed 0xRRGGBB value.
func ColorFromHex(hex uint32) Color {
	return Color{
		float32((hex>>16)&0xff) / 255.0,
		float32((hex>>8)&0xff) / 255.0,
		float32(hex&0xff) / 255.0,
	}
}

// Parse a color definition.
func ParseColor(def string) (Color, error) {
	def = strings.TrimSpace(def)

	var digits string
	switch {
	case strings.HasPrefix(def, "#"):
		digits = def[1:]
		if len(digits) == 3 {
			digits = string([]byte{digits[0], digits[0], digits[1], digits[1], digits[2], digits[2]})
		}
	case strings.HasPrefix(def, "0x"), strings.HasPrefix(def, "0X"):
		digits = def[2:]
	default:
		val, err := strconv.ParseUint(def, 10, 32)
		if err != nil || val > 0xffffff {
			return Color{}, fmt.Errorf("scene: invalid color %q", def)
		}
		return ColorFromHex(uint32(val)), nil
	}

	if len(digits) != 6 {
		return Color{}, fmt.Errorf("scene: invalid color %q", def)
	}
	val, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("scene: invalid color %q", def)
	}
	return ColorFromHex(uint32(val)), nil
}

// Pack color into a 0xRRGGBB value.
func (c Color) Hex() uint32 {
	var hex uint32
	for _, comp := range c {
		if comp < 0 {
			comp = 0
		} else if comp > 1 {
			comp = 1
		}
		hex = hex<<8 | uint32(comp*255.0+0.5)
	}
	return hex
}

func (c Color) String() string {
	return fmt.Sprintf("#%06x", c.Hex())
}

// Implements yaml.Unmarshaler.
func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("scene: line %d: expected a color value", value.Line)
	}

	parsed, err := ParseColor(value.Value)
	if err != nil {
		return fmt.Errorf("%s (line %d)", err.Error(), value.Line)
	}
	*c = parsed
	return nil
}

// Implements yaml.Marshaler.
func (c Color) MarshalYAML() (interface{}, error) {
	return c.String(), nil
}
