package noise

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// Seed identifies a noise field. It is either numeric or free text; text that
// parses as a base-10 integer is treated as that number.
type Seed struct {
	text  string
	value int64
}

// SeedFromInt returns a numeric seed.
func SeedFromInt(v int64) Seed {
	return Seed{text: strconv.FormatInt(v, 10), value: v}
}

// ParseSeed converts seed text into a Seed. Non-numeric text is hashed with
// 64-bit FNV-1a, so "river" always yields the same field.
func ParseSeed(s string) Seed {
	s = strings.TrimSpace(s)
	if s == "" {
		return SeedFromInt(0)
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return SeedFromInt(v)
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return Seed{text: s, value: int64(h.Sum64())}
}

// Int64 returns the numeric value fed to the noise backends.
func (s Seed) Int64() int64 { return s.value }

// String returns the seed as it was given.
func (s Seed) String() string {
	if s.text == "" {
		return "0"
	}
	return s.text
}

// IsNumeric reports whether the seed was given as an integer.
func (s Seed) IsNumeric() bool {
	_, err := strconv.ParseInt(s.String(), 10, 64)
	return err == nil
}

// MarshalJSON encodes numeric seeds as numbers and text seeds as strings.
func (s Seed) MarshalJSON() ([]byte, error) {
	if s.IsNumeric() {
		return []byte(s.String()), nil
	}
	return json.Marshal(s.text)
}

// UnmarshalJSON accepts either a JSON number or a JSON string.
func (s *Seed) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*s = ParseSeed(text)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("seed must be a number or a string: %w", err)
	}
	v, err := num.Int64()
	if err != nil {
		return fmt.Errorf("seed must be an integer: %w", err)
	}
	*s = SeedFromInt(v)
	return nil
}
