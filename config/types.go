package config

import (
	"encoding/hex"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// SpawnMode selects the initial agent layout.
type SpawnMode string

const (
	SpawnPoint        SpawnMode = "point"
	SpawnRandom       SpawnMode = "random"
	SpawnInwardCircle SpawnMode = "inward_circle"
	SpawnRandomCircle SpawnMode = "random_circle"
)

// SpawnModes lists every accepted spawn mode.
var SpawnModes = []SpawnMode{SpawnPoint, SpawnRandom, SpawnInwardCircle, SpawnRandomCircle}

// Valid reports whether m names a known spawn mode.
func (m SpawnMode) Valid() bool {
	for _, s := range SpawnModes {
		if m == s {
			return true
		}
	}
	return false
}

// UnmarshalYAML accepts "inward-circle", "InwardCircle" style spellings.
func (m *SpawnMode) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	*m = ParseSpawnMode(s)
	return nil
}

// ParseSpawnMode normalizes s to snake case. Unknown names are returned as-is
// and rejected by Validate.
func ParseSpawnMode(s string) SpawnMode {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for i, r := range s {
		switch {
		case r == '-' || r == ' ':
			b.WriteByte('_')
		case r >= 'A' && r <= 'Z':
			if i > 0 && s[i-1] >= 'a' && s[i-1] <= 'z' {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteRune(r)
		}
	}
	return SpawnMode(b.String())
}

// Color is an 8-bit RGBA colour written in YAML as "#rrggbb" or "#rrggbbaa".
type Color struct {
	R, G, B, A uint8
}

// ParseColor parses a hex colour string. Alpha defaults to 255.
func ParseColor(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 && len(s) != 8 {
		return Color{}, fmt.Errorf("colour %q: want #rrggbb or #rrggbbaa", s)
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return Color{}, fmt.Errorf("colour %q: %w", s, err)
	}
	c := Color{R: raw[0], G: raw[1], B: raw[2], A: 255}
	if len(raw) == 4 {
		c.A = raw[3]
	}
	return c, nil
}

// String returns the colour in "#rrggbb" form, with alpha only when not opaque.
func (c Color) String() string {
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// Floats returns the colour as normalized RGB components.
func (c Color) Floats() [3]float32 {
	return [3]float32{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255}
}

func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c Color) MarshalYAML() (any, error) {
	return c.String(), nil
}
