package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sectorlock/pkg/sector"
)

// sectorsCommand prints the lock geometry of each unlock level.
func (c *CLI) sectorsCommand() *cobra.Command {
	var level int

	cmd := &cobra.Command{
		Use:   "sectors",
		Short: "Print the lock side and ring width of each unlock level",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			levels := []sector.Level{sector.Level1, sector.Level2, sector.Level3, sector.Level4}
			if cmd.Flags().Changed("level") {
				levels = []sector.Level{sector.ClampLevel(level)}
			}
			fmt.Fprintln(cmd.OutOrStdout(), sectorTable(levels))
			return nil
		},
	}

	cmd.Flags().IntVarP(&level, "level", "l", 1, "only print this unlock level")
	return cmd
}

// sectorTable renders one row per level: lock side, ring width and badge.
func sectorTable(levels []sector.Level) string {
	rows := make([][]string, 0, len(levels))
	for _, l := range levels {
		b := sector.BoundaryFor(l)
		side, margin, label := "—", "—", "Unlocked"
		if b != nil {
			side = fmt.Sprintf("%.4f", b.Side())
			margin = fmt.Sprintf("%.4f", b.Margin)
			label = l.LockLabel()
		}
		rows = append(rows, []string{fmt.Sprintf("%d", l), side, margin, label})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Level", "Lock side", "Ring width", "Badge").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle.Padding(0, 1)
			}
			if col == 0 {
				return StyleNumber.Padding(0, 1)
			}
			return StyleValue.Padding(0, 1)
		}).
		Render()
}
