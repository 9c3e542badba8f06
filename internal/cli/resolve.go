package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sectorlock/pkg/errors"
	"github.com/matzehuels/sectorlock/pkg/geometry"
	"github.com/matzehuels/sectorlock/pkg/sector"
	"github.com/matzehuels/sectorlock/pkg/snap"
)

// resolveOutput is the --json shape of the resolve command.
type resolveOutput struct {
	Candidate geometry.Rect      `json:"candidate"`
	Level     sector.Level       `json:"level"`
	Boundary  *geometry.Boundary `json:"boundary,omitempty"`
	Rect      geometry.Rect      `json:"rect"`
	Adjusted  bool               `json:"adjusted"`
	Rejected  bool               `json:"rejected"`
	Reason    snap.Reason        `json:"reason,omitempty"`
	Band      string             `json:"band,omitempty"`
	Notice    string             `json:"notice,omitempty"`
}

// resolveCommand runs the snap resolver once.
func (c *CLI) resolveCommand() *cobra.Command {
	var (
		rectStr, lastStr string
		level            int
		asJSON           bool
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a candidate rectangle against a lock",
		Long: `Resolve checks a candidate rectangle (x,y,w,h on the 0–100 scale) against the
lock of an unlock level. The rectangle is accepted, snapped onto the nearest band
of the free ring, or refused, in which case the last good rectangle is kept.`,
		Example: `  sectorlock resolve --rect 45,45,1,1
  sectorlock resolve --rect 10,10,30,30 --last 1,1,5,5 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			candidate, err := parseRectFlag(rectStr)
			if err != nil {
				return err
			}
			last := candidate
			if lastStr != "" {
				if last, err = parseRectFlag(lastStr); err != nil {
					return err
				}
			}

			lvl := sector.ClampLevel(level)
			boundary := sector.BoundaryFor(lvl)
			res := snap.Resolve(candidate, boundary, last)

			out := resolveOutput{
				Candidate: candidate,
				Level:     lvl,
				Boundary:  boundary,
				Rect:      res.Rect,
				Adjusted:  res.Adjusted,
				Rejected:  res.Rejected,
				Reason:    res.Reason,
			}
			switch {
			case res.Rejected:
				out.Notice = res.Reason.Message()
			case res.Adjusted:
				out.Band = res.Band.String()
				out.Notice = snap.NoticeAdjusted
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			printKeyValue("Level", fmt.Sprintf("%d", lvl))
			printRect("Candidate", candidate)
			printOutcome(res.Rejected, res.Adjusted, res.Reason, res.Band)
			printRect("Result", res.Rect)
			return nil
		},
	}

	cmd.Flags().StringVar(&rectStr, "rect", "", "candidate rectangle x,y,w,h (required)")
	cmd.Flags().StringVar(&lastStr, "last", "", "last good rectangle x,y,w,h (default: the candidate)")
	cmd.Flags().IntVarP(&level, "level", "l", 1, "unlock level 1-4")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	cmd.MarkFlagRequired("rect")

	return cmd
}

func parseRectFlag(s string) (geometry.Rect, error) {
	x, y, w, h, err := errors.ParseRect(s)
	if err != nil {
		return geometry.Rect{}, err
	}
	return geometry.Rect{X: x, Y: y, W: w, H: h}, nil
}
