package cli

import (
	"encoding/json"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-label-mcp/internal/imaging"
	"github.com/ironsheep/image-label-mcp/internal/label"
	"github.com/ironsheep/image-label-mcp/internal/ocr"
)

type putOptions struct {
	x, y          int
	mode          string
	background    string
	color         string
	font          string
	size          float64
	onOutOfBounds string
	output        string
	verify        bool
}

// putResult is printed as JSON after a label is drawn.
type putResult struct {
	Output    string          `json:"output"`
	Drawn     bool            `json:"drawn"`
	Placement label.Placement `json:"placement"`
	TextColor string          `json:"text_color"`
	ReadBack  *ocr.ReadBack   `json:"read_back,omitempty"`
}

// PutCmd returns the put command.
func PutCmd(a *app) *cobra.Command {
	var o putOptions

	cmd := &cobra.Command{
		Use:   "put <image> <text>",
		Short: "Draw a text label onto an image file",
		Long: `Draw a single-line text label with a solid background onto an image file.

Unset options take their defaults from the configuration file. The text
colour is black or white, whichever contrasts more with the background,
unless --color is given.

Examples:
  # Bottom-left anchored label, written next to the input
  image-label-mcp put photo.png "Kitchen" --x 20 --y 200

  # Centred label in a downloaded font
  image-label-mcp put photo.png "Exit" --x 320 --y 40 --mode center \
    --font https://example.com/fonts/Inter-Bold.ttf --size 24 -o out.png`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPut(cmd, a, &o, args[0], args[1])
		},
	}

	f := cmd.Flags()
	f.IntVar(&o.x, "x", 0, "anchor X coordinate")
	f.IntVar(&o.y, "y", 0, "anchor Y coordinate")
	f.StringVar(&o.mode, "mode", "", "anchor mode: bottom-left, top-left or center")
	f.StringVar(&o.background, "background", "", "background colour (#RRGGBB or b,g,r)")
	f.StringVar(&o.color, "color", "", "text colour; default is the contrast colour")
	f.StringVar(&o.font, "font", "", "font name, path or URL")
	f.Float64Var(&o.size, "size", 0, "font size in pixels")
	f.StringVar(&o.onOutOfBounds, "on-out-of-bounds", "", "clip or reject")
	f.StringVarP(&o.output, "output", "o", "", "output file; default <image>.labelled<ext>")
	f.BoolVar(&o.verify, "verify", false, "read the label back with OCR")

	return cmd
}

func runPut(cmd *cobra.Command, a *app, o *putOptions, path, text string) error {
	cfg := a.cfg

	mode, err := cfg.AnchorMode()
	if o.mode != "" {
		mode, err = label.ParseAnchorMode(o.mode)
	}
	if err != nil {
		return err
	}
	policy, err := cfg.BoundsPolicy()
	if o.onOutOfBounds != "" {
		policy, err = label.ParseBoundsPolicy(o.onOutOfBounds)
	}
	if err != nil {
		return err
	}
	bg, err := cfg.Background()
	if o.background != "" {
		bg, err = label.ParseColor(o.background)
	}
	if err != nil {
		return fmt.Errorf("invalid background: %w", err)
	}
	var fg *label.Color
	if o.color != "" {
		c, err := label.ParseColor(o.color)
		if err != nil {
			return fmt.Errorf("invalid color: %w", err)
		}
		fg = &c
	}

	fontName, size := cfg.Font.Default, cfg.Font.Size
	if o.font != "" {
		fontName = o.font
	}
	if o.size > 0 {
		size = o.size
	}

	h, err := a.catalog().Open(cmd.Context(), fontName, size)
	if err != nil {
		return err
	}
	defer h.Close()

	img, err := imaging.NewImageCache().Load(path)
	if err != nil {
		return err
	}

	p, err := label.New(h, label.WithBoundsPolicy(policy)).PutPlaced(img, text, image.Pt(o.x, o.y), bg, fg, mode)
	if err != nil {
		return err
	}

	output := o.output
	if output == "" {
		output = labelledPath(path)
	}
	if err := imaging.Save(img, output); err != nil {
		return err
	}
	a.logger.Debug("label written", "output", output, "block", p.Block, "visible", p.Visible)

	textColor := label.ContrastColor(bg)
	if fg != nil {
		textColor = *fg
	}
	result := putResult{
		Output:    output,
		Drawn:     !p.Empty(),
		Placement: p,
		TextColor: textColor.Hex(),
	}
	if o.verify && result.Drawn {
		if result.ReadBack, err = ocr.ReadLabel(img, p.Visible, text, cfg.OCR.Language); err != nil {
			return err
		}
	}

	return writeJSON(cmd, result)
}

// labelledPath returns dir/name.labelled.ext for dir/name.ext.
func labelledPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".labelled" + ext
}

func writeJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
