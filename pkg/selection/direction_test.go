package selection

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/matzehuels/sectorlock/pkg/errors"
)

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in   string
		want Direction
	}{
		{in: "top-left", want: DirNW},
		{in: "top-middle", want: DirN},
		{in: "top-right", want: DirNE},
		{in: "middle-left", want: DirW},
		{in: "middle-middle", want: DirNone},
		{in: "middle-right", want: DirE},
		{in: "bottom-left", want: DirSW},
		{in: "bottom-middle", want: DirS},
		{in: "bottom-right", want: DirSE},
		{in: "NE", want: DirNE},
		{in: " s ", want: DirS},
		{in: "up", want: DirN},
		{in: "none", want: DirNone},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDirection(tt.in)
			if err != nil {
				t.Fatalf("ParseDirection(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseDirection(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseDirectionInvalid(t *testing.T) {
	for _, in := range []string{"", "north-east", "top", "9"} {
		_, err := ParseDirection(in)
		if !errors.Is(err, errors.ErrCodeInvalidDirection) {
			t.Errorf("ParseDirection(%q) error = %v, want %s", in, err, errors.ErrCodeInvalidDirection)
		}
	}
}

func TestParseDirectionSuggests(t *testing.T) {
	tests := []struct {
		in, hint string
	}{
		{"rigth", "right"},
		{"bottom-rigth", "bottom-right"},
		{"top-lft", "top-left"},
		{"dwn", "down"},
		{"sideways", ""},
		{"xy", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := ParseDirection(tt.in)
			if err == nil {
				t.Fatalf("ParseDirection(%q) succeeded", tt.in)
			}
			msg := errors.UserMessage(err)
			if tt.hint == "" {
				if strings.Contains(msg, "did you mean") {
					t.Errorf("unexpected suggestion in %q", msg)
				}
				return
			}
			if !strings.Contains(msg, `did you mean "`+tt.hint+`"`) {
				t.Errorf("message %q does not suggest %q", msg, tt.hint)
			}
		})
	}
}

func TestDirectionDelta(t *testing.T) {
	tests := []struct {
		dir    Direction
		dx, dy float64
	}{
		{DirNone, 0, 0},
		{DirN, 0, -1},
		{DirSE, 1, 1},
		{DirW, -1, 0},
		{DirNW, -1, -1},
		{Direction(42), 0, 0},
	}

	for _, tt := range tests {
		dx, dy := tt.dir.Delta()
		if dx != tt.dx || dy != tt.dy {
			t.Errorf("%v.Delta() = (%v, %v), want (%v, %v)", tt.dir, dx, dy, tt.dx, tt.dy)
		}
	}
}

func TestDirectionsCoverPad(t *testing.T) {
	seen := map[Direction]bool{}
	for _, d := range Directions() {
		if d == DirNone {
			t.Error("Directions() should not include DirNone")
		}
		seen[d] = true
	}
	if len(seen) != 8 {
		t.Errorf("Directions() has %d distinct entries, want 8", len(seen))
	}
}

func TestDirectionJSON(t *testing.T) {
	var body struct {
		Direction Direction `json:"direction"`
	}
	if err := json.Unmarshal([]byte(`{"direction":"bottom-left"}`), &body); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if body.Direction != DirSW {
		t.Errorf("Direction = %v, want %v", body.Direction, DirSW)
	}

	out, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != `{"direction":"bottom-left"}` {
		t.Errorf("Marshal = %s", out)
	}

	if err := json.Unmarshal([]byte(`{"direction":"sideways"}`), &body); err == nil {
		t.Error("Unmarshal of an unknown direction should fail")
	}
}
