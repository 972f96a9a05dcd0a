package render

import (
	"fmt"
	"strings"

	"github.com/nabeel-w/ButterCut-Assignment/internal/models"
)

// Text overlay defaults, applied when the styling fields are unset.
const (
	defaultFontColor  = "white"
	defaultFontSize   = 36
	defaultBoxColor   = "black@0.5"
	defaultBoxBorderW = 5
)

// overlayBoxSize is the square the image/video overlays are fitted into.
const overlayBoxSize = 100

// Graph is a compiled filter graph: the filter_complex expression, the asset
// paths to append as extra engine inputs (in order), and the label of the
// final video stream. An empty overlay list compiles to the zero Graph, in
// which case the base stream is the output.
type Graph struct {
	FilterComplex string
	ExtraInputs   []string
	FinalLabel    string
}

// Empty reports whether the graph has no stages.
func (g Graph) Empty() bool {
	return g.FilterComplex == ""
}

// Compiler turns an ordered overlay list into a Graph. List order is z-order:
// later overlays draw on top of earlier ones.
type Compiler struct {
	resolver *AssetResolver
}

func NewCompiler(resolver *AssetResolver) *Compiler {
	return &Compiler{resolver: resolver}
}

// Compile chains the base video stream through one stage per overlay. Each
// stage consumes the previous label and produces [vN]; every stage is gated
// to the overlay's [start_time, end_time] window. Overlays with an unknown
// type are skipped.
func (c *Compiler) Compile(overlays []models.Overlay) (Graph, error) {
	if len(overlays) == 0 {
		return Graph{}, nil
	}

	var (
		chains       []string
		extraInputs  []string
		currentLabel = "[0:v]"
		labelIndex   = 0
	)

	for _, o := range overlays {
		outLabel := fmt.Sprintf("[v%d]", labelIndex)

		var chain string
		switch o.Type {
		case models.OverlayText:
			chain = drawTextStage(o, currentLabel, outLabel)

		case models.OverlayImage, models.OverlayVideo:
			assetPath, err := c.resolver.Resolve(o.Content)
			if err != nil {
				return Graph{}, err
			}
			extraInputs = append(extraInputs, assetPath)
			chain = overlayStage(o, len(extraInputs), labelIndex, currentLabel, outLabel)

		default:
			// Unknown overlay type, skip.
			continue
		}

		chains = append(chains, chain)
		currentLabel = outLabel
		labelIndex++
	}

	if len(chains) == 0 {
		return Graph{}, nil
	}

	return Graph{
		FilterComplex: strings.Join(chains, "; "),
		ExtraInputs:   extraInputs,
		FinalLabel:    currentLabel,
	}, nil
}

// drawTextStage emits a drawtext filter for a text overlay, positioned by
// frame-fraction expressions and time-gated with enable=between(t,..).
func drawTextStage(o models.Overlay, inLabel, outLabel string) string {
	opts := []string{
		fmt.Sprintf("text='%s'", escapeFilterText(o.Content)),
		fmt.Sprintf("x=w*%s", formatFloat(o.X)),
		fmt.Sprintf("y=h*%s", formatFloat(o.Y)),
		fmt.Sprintf("fontcolor=%s", escapeFilterText(stringOr(o.Color, defaultFontColor))),
		fmt.Sprintf("fontsize=%d", intOr(o.FontSize, defaultFontSize)),
		timeGate(o),
	}

	// Box defaults to enabled when unset.
	if o.Box == nil || *o.Box {
		opts = append(opts,
			"box=1",
			fmt.Sprintf("boxcolor=%s", escapeFilterText(stringOr(o.BoxColor, defaultBoxColor))),
			fmt.Sprintf("boxborderw=%d", intOr(o.BoxBorderW, defaultBoxBorderW)),
		)
	}

	return inLabel + "drawtext=" + strings.Join(opts, ":") + outLabel
}

// overlayStage emits the scale/pad/overlay chain for an image or video
// overlay. The asset is fitted inside a fixed square preserving aspect ratio
// and padded with a transparent background before compositing.
func overlayStage(o models.Overlay, inputIndex, labelIndex int, inLabel, outLabel string) string {
	scaledLabel := fmt.Sprintf("[ov%d]", labelIndex)
	paddedLabel := fmt.Sprintf("[pad%d]", labelIndex)

	return fmt.Sprintf(
		"[%d:v]scale=%d:%d:force_original_aspect_ratio=decrease%s;"+
			"%spad=%d:%d:(ow-iw)/2:(oh-ih)/2:color=black@0.0%s;"+
			"%s%soverlay=x=w*%s:y=h*%s:%s%s",
		inputIndex, overlayBoxSize, overlayBoxSize, scaledLabel,
		scaledLabel, overlayBoxSize, overlayBoxSize, paddedLabel,
		inLabel, paddedLabel, formatFloat(o.X), formatFloat(o.Y), timeGate(o), outLabel,
	)
}

// timeGate restricts a stage to the overlay's time window.
func timeGate(o models.Overlay) string {
	return fmt.Sprintf("enable='between(t,%s,%s)'", formatFloat(o.StartTime), formatFloat(o.EndTime))
}

// escapeFilterText escapes the characters that break out of a quoted
// filter option value.
func escapeFilterText(s string) string {
	s = strings.ReplaceAll(s, ":", "\\:")
	s = strings.ReplaceAll(s, "'", "\\'")
	return s
}

func formatFloat(f float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", f), "0"), ".")
}

func stringOr(v *string, def string) string {
	if v != nil && strings.TrimSpace(*v) != "" {
		return strings.TrimSpace(*v)
	}
	return def
}

func intOr(v *int, def int) int {
	if v != nil {
		return *v
	}
	return def
}
