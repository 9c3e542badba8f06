package selection

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/matzehuels/sectorlock/pkg/errors"
)

// Direction is one of the nine cells of the movement pad.
type Direction int

// Directions, clockwise from north. DirNone is the center cell.
const (
	DirNone Direction = iota
	DirN
	DirNE
	DirE
	DirSE
	DirS
	DirSW
	DirW
	DirNW
)

type dirInfo struct {
	short string
	pad   string
	arrow string
	dx    float64
	dy    float64
}

var dirTable = [...]dirInfo{
	DirNone: {"none", "middle-middle", "•", 0, 0},
	DirN:    {"n", "top-middle", "↑", 0, -1},
	DirNE:   {"ne", "top-right", "↗", 1, -1},
	DirE:    {"e", "middle-right", "→", 1, 0},
	DirSE:   {"se", "bottom-right", "↘", 1, 1},
	DirS:    {"s", "bottom-middle", "↓", 0, 1},
	DirSW:   {"sw", "bottom-left", "↙", -1, 1},
	DirW:    {"w", "middle-left", "←", -1, 0},
	DirNW:   {"nw", "top-left", "↖", -1, -1},
}

// aliases maps extra spellings accepted by ParseDirection.
var aliases = map[string]Direction{
	"up":     DirN,
	"down":   DirS,
	"left":   DirW,
	"right":  DirE,
	"center": DirNone,
}

// Directions returns the eight moving directions in pad order, row by row.
func Directions() []Direction {
	return []Direction{DirNW, DirN, DirNE, DirW, DirE, DirSW, DirS, DirSE}
}

// ParseDirection accepts pad names ("top-left" ... "bottom-right",
// "middle-middle"), compass names ("nw", "n", ...), "up", "down", "left",
// "right" and "none". Matching is case-insensitive.
func ParseDirection(s string) (Direction, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for d, info := range dirTable {
		if key == info.short || key == info.pad {
			return Direction(d), nil
		}
	}
	if d, ok := aliases[key]; ok {
		return d, nil
	}
	if hint := suggestDirection(key); hint != "" {
		return DirNone, errors.New(errors.ErrCodeInvalidDirection, "unknown direction %q, did you mean %q?", s, hint)
	}
	return DirNone, errors.New(errors.ErrCodeInvalidDirection, "unknown direction %q", s)
}

// maxSuggestDistance is the largest edit distance still offered as a typo fix.
const maxSuggestDistance = 2

// suggestDirection returns the pad name or alias closest to key, or "" when
// nothing is close. Compass short names are too short to compare.
func suggestDirection(key string) string {
	if len(key) <= maxSuggestDistance {
		return ""
	}
	best, bestDist := "", maxSuggestDistance+1
	consider := func(name string) {
		if d := levenshtein.ComputeDistance(key, name); d < bestDist {
			best, bestDist = name, d
		}
	}
	for _, info := range dirTable {
		consider(info.pad)
	}
	for _, name := range []string{"up", "down", "left", "right", "center"} {
		consider(name)
	}
	return best
}

func (d Direction) valid() bool { return d >= 0 && int(d) < len(dirTable) }

// Delta returns the unit step of the direction. y grows downward.
func (d Direction) Delta() (dx, dy float64) {
	if !d.valid() {
		return 0, 0
	}
	return dirTable[d].dx, dirTable[d].dy
}

// String returns the compass name of the direction.
func (d Direction) String() string {
	if !d.valid() {
		return "invalid"
	}
	return dirTable[d].short
}

// PadName returns the movement pad name of the direction, e.g. "top-left".
func (d Direction) PadName() string {
	if !d.valid() {
		return ""
	}
	return dirTable[d].pad
}

// Arrow returns the glyph drawn on the movement pad button.
func (d Direction) Arrow() string {
	if !d.valid() {
		return "?"
	}
	return dirTable[d].arrow
}

// MarshalText encodes the direction by its pad name.
func (d Direction) MarshalText() ([]byte, error) {
	if !d.valid() {
		return nil, errors.New(errors.ErrCodeInvalidDirection, "invalid direction %d", int(d))
	}
	return []byte(d.PadName()), nil
}

// UnmarshalText decodes any spelling accepted by ParseDirection.
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
