package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sectorlock/pkg/cache"
	"github.com/matzehuels/sectorlock/pkg/errors"
	"github.com/matzehuels/sectorlock/pkg/render"
	"github.com/matzehuels/sectorlock/pkg/sector"
	"github.com/matzehuels/sectorlock/pkg/selection"
)

const (
	formatSVG  = "svg"
	formatPNG  = "png"
	formatPDF  = "pdf"
	formatJSON = "json"
	formatText = "txt"

	defaultOutput   = "frame.svg"
	frameCacheTTL   = 7 * 24 * time.Hour
	textGridColumns = 60
	textGridRows    = 30
)

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{formatSVG: true, formatPNG: true, formatPDF: true, formatJSON: true, formatText: true}

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string   // output file path, "-" for stdout
	format  string   // output format; derived from the output extension when empty
	level   int      // unlock level
	size    string   // selection size "WxH" in design units
	moves   []string // directions applied in order after placing the selection
	image   string   // image file filling the selection
	px      int      // pixel size of the rendered frame
	noRings bool     // omit the sector outlines
	noCache bool     // bypass the frame cache
}

// renderCommand renders a frame after an optional sequence of moves.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{output: defaultOutput}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a frame to SVG, PNG, PDF, JSON or text",
		Example: `  sectorlock render -o frame.svg
  sectorlock render --level 2 --size 120x80 --move right --move right -o frame.png
  sectorlock render --image photo.jpg -f svg -o -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.px <= 0 {
				opts.px = c.Config.Render.Size
			}
			opts.format = resolveFormat(opts.format, opts.output)
			if !validFormats[opts.format] {
				return errors.New(errors.ErrCodeUnsupported,
					"invalid format: %s (must be 'svg', 'png', 'pdf', 'json' or 'txt')", opts.format)
			}
			return c.runRender(cmd.Context(), cmd.OutOrStdout(), &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", opts.output, `output file ("-" for stdout)`)
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: svg, png, pdf, json, txt (default: from the output extension)")
	cmd.Flags().IntVarP(&opts.level, "level", "l", opts.level, "unlock level 1-4 (default from config)")
	cmd.Flags().StringVar(&opts.size, "size", "", "selection size WxH in design units")
	cmd.Flags().StringArrayVar(&opts.moves, "move", nil, "move the selection one step (repeatable): up, top-right, nw, ...")
	cmd.Flags().StringVar(&opts.image, "image", "", "image file filling the selection")
	cmd.Flags().IntVar(&opts.px, "px", 0, "frame size in pixels (default from config)")
	cmd.Flags().BoolVar(&opts.noRings, "no-rings", false, "omit the sector outlines")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the frame cache")

	return cmd
}

// resolveFormat returns format, or the output extension when format is
// empty, or svg.
func resolveFormat(format, output string) string {
	if format != "" {
		return strings.ToLower(format)
	}
	if ext := strings.TrimPrefix(filepath.Ext(output), "."); ext != "" {
		return strings.ToLower(ext)
	}
	return formatSVG
}

func (c *CLI) runRender(ctx context.Context, stdout io.Writer, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	var ctrlOpts []selection.Option
	if opts.level > 0 {
		ctrlOpts = append(ctrlOpts, selection.WithLevel(sector.ClampLevel(opts.level)))
	}
	if opts.size != "" {
		w, h, err := errors.ParseDimensions(opts.size)
		if err != nil {
			return err
		}
		ctrlOpts = append(ctrlOpts, selection.WithInitialSize(w, h))
	}
	ctrl := c.newController(ctrlOpts...)

	var last selection.Outcome
	for _, m := range opts.moves {
		dir, err := selection.ParseDirection(m)
		if err != nil {
			return err
		}
		last = ctrl.Move(dir)
		logger.Debug("move", "dir", dir, "rect", last.Rect.String(), "adjusted", last.Adjusted, "rejected", last.Rejected)
	}
	if last.Notice != "" {
		logger.Info(last.Notice)
	}

	frame := render.FrameOf(ctrl)
	svgOpts, keyOpts, err := frameOptions(opts, last.Rejected)
	if err != nil {
		return err
	}

	var (
		data   []byte
		cached bool
	)
	switch opts.format {
	case formatJSON:
		data, err = json.MarshalIndent(frame, "", "  ")
		data = append(data, '\n')
	case formatText:
		data = []byte(render.Rasterize(frame, textGridColumns, textGridRows).String())
	default:
		data, cached, err = c.renderCached(ctx, frame, opts, svgOpts, keyOpts)
	}
	if err != nil {
		return err
	}

	if opts.output == "-" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	prog.done("Rendered " + opts.output)
	printFile(opts.output)
	if opts.format != formatJSON && opts.format != formatText {
		printCacheStatus(cached)
	}
	return nil
}

// frameOptions builds the SVG options and the matching cache key options.
func frameOptions(opts *renderOpts, invalid bool) ([]render.SVGOption, cache.FrameKeyOpts, error) {
	svgOpts := []render.SVGOption{render.WithSize(opts.px)}
	key := cache.FrameKeyOpts{Format: opts.format, Size: opts.px, Invalid: invalid, NoRings: opts.noRings}

	if invalid {
		svgOpts = append(svgOpts, render.WithInvalid())
	}
	if opts.noRings {
		svgOpts = append(svgOpts, render.WithoutRings())
	}
	if opts.image != "" {
		img, err := os.ReadFile(opts.image)
		if err != nil {
			return nil, key, errors.Wrap(errors.ErrCodeFileNotFound, err, "read image %s", opts.image)
		}
		svgOpts = append(svgOpts, render.WithImage(imageMIME(opts.image), img))
		key.ImageHash = cache.Hash(img)
	}
	return svgOpts, key, nil
}

// renderCached renders an SVG-based format through the frame cache.
func (c *CLI) renderCached(ctx context.Context, frame render.Frame, opts *renderOpts,
	svgOpts []render.SVGOption, keyOpts cache.FrameKeyOpts) ([]byte, bool, error) {
	fc := cache.Instrument(c.newCache(opts.noCache), "frame")
	defer fc.Close()

	state, err := cache.HashJSON(frame)
	if err != nil {
		return nil, false, err
	}
	key := cache.NewDefaultKeyer().FrameKey(state, keyOpts)
	if data, hit, err := fc.Get(ctx, key); err == nil && hit {
		return data, true, nil
	}

	svg := render.RenderSVG(frame, svgOpts...)
	var data []byte
	switch opts.format {
	case formatPNG:
		data, err = render.ToPNG(svg, 2)
	case formatPDF:
		data, err = render.ToPDF(svg)
	default:
		data = svg
	}
	if err != nil {
		return nil, false, err
	}

	if err := fc.Set(ctx, key, data, frameCacheTTL); err != nil {
		loggerFromContext(ctx).Warn("frame cache write failed", "err", err)
	}
	return data, false, nil
}

func imageMIME(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".svg":
		return "image/svg+xml"
	default:
		return "image/jpeg"
	}
}
