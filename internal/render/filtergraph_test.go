package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nabeel-w/ButterCut-Assignment/internal/models"
	"github.com/nabeel-w/ButterCut-Assignment/internal/pkg/errors"
)

func textOverlay(content string, x, y, start, end float64) models.Overlay {
	return models.Overlay{
		Type:      models.OverlayText,
		Content:   content,
		X:         x,
		Y:         y,
		StartTime: start,
		EndTime:   end,
	}
}

func newTestCompiler(t *testing.T, assets ...string) (*Compiler, string) {
	t.Helper()
	root := t.TempDir()
	for _, name := range assets {
		if err := os.WriteFile(filepath.Join(root, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return NewCompiler(NewAssetResolver(root)), root
}

func TestCompileEmptyList(t *testing.T) {
	c, _ := newTestCompiler(t)

	g, err := c.Compile(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !g.Empty() {
		t.Errorf("expected empty graph, got %q", g.FilterComplex)
	}
	if g.FinalLabel != "" || len(g.ExtraInputs) != 0 {
		t.Errorf("expected zero graph, got %+v", g)
	}
}

func TestCompileSingleTextOverlay(t *testing.T) {
	c, _ := newTestCompiler(t)

	g, err := c.Compile([]models.Overlay{textOverlay("Hi", 0.5, 0.1, 0, 3)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Count(g.FilterComplex, "drawtext=") != 1 {
		t.Errorf("expected exactly one draw stage, got %q", g.FilterComplex)
	}
	for _, want := range []string{
		"[0:v]drawtext=",
		"text='Hi'",
		"x=w*0.5",
		"y=h*0.1",
		"enable='between(t,0,3)'",
		"[v0]",
	} {
		if !strings.Contains(g.FilterComplex, want) {
			t.Errorf("expected %q in graph, got %q", want, g.FilterComplex)
		}
	}
	if g.FinalLabel != "[v0]" {
		t.Errorf("expected final label [v0], got %s", g.FinalLabel)
	}
	if len(g.ExtraInputs) != 0 {
		t.Errorf("text overlay should add no inputs, got %v", g.ExtraInputs)
	}
}

func TestCompileTextDefaults(t *testing.T) {
	c, _ := newTestCompiler(t)

	g, err := c.Compile([]models.Overlay{textOverlay("Hello", 0.2, 0.2, 1, 2)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"fontcolor=white",
		"fontsize=36",
		"box=1",
		"boxcolor=black@0.5",
		"boxborderw=5",
	} {
		if !strings.Contains(g.FilterComplex, want) {
			t.Errorf("expected default %q, got %q", want, g.FilterComplex)
		}
	}
}

func TestCompileTextStyling(t *testing.T) {
	c, _ := newTestCompiler(t)

	color := "yellow"
	size := 24
	box := false
	o := textOverlay("Styled", 0.3, 0.7, 2, 4)
	o.Color = &color
	o.FontSize = &size
	o.Box = &box

	g, err := c.Compile([]models.Overlay{o})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(g.FilterComplex, "fontcolor=yellow") {
		t.Errorf("expected custom color, got %q", g.FilterComplex)
	}
	if !strings.Contains(g.FilterComplex, "fontsize=24") {
		t.Errorf("expected custom size, got %q", g.FilterComplex)
	}
	if strings.Contains(g.FilterComplex, "box=1") {
		t.Errorf("expected box disabled, got %q", g.FilterComplex)
	}
}

func TestCompileTextEscaping(t *testing.T) {
	c, _ := newTestCompiler(t)

	g, err := c.Compile([]models.Overlay{textOverlay("it's 10:30", 0, 0, 0, 1)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(g.FilterComplex, `it\'s 10\:30`) {
		t.Errorf("expected escaped text, got %q", g.FilterComplex)
	}
}

func TestCompileImageOverlay(t *testing.T) {
	c, root := newTestCompiler(t, "logo.png")

	o := models.Overlay{
		Type: models.OverlayImage, Content: "logo.png",
		X: 0.8, Y: 0.1, StartTime: 0, EndTime: 5,
	}

	g, err := c.Compile([]models.Overlay{o})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(g.ExtraInputs) != 1 || g.ExtraInputs[0] != filepath.Join(root, "logo.png") {
		t.Errorf("expected resolved extra input, got %v", g.ExtraInputs)
	}
	for _, want := range []string{
		"[1:v]scale=100:100:force_original_aspect_ratio=decrease[ov0]",
		"[ov0]pad=100:100:(ow-iw)/2:(oh-ih)/2:color=black@0.0[pad0]",
		"[0:v][pad0]overlay=x=w*0.8:y=h*0.1:enable='between(t,0,5)'[v0]",
	} {
		if !strings.Contains(g.FilterComplex, want) {
			t.Errorf("expected %q in graph, got %q", want, g.FilterComplex)
		}
	}
}

func TestCompileMissingAsset(t *testing.T) {
	c, _ := newTestCompiler(t)

	o := models.Overlay{
		Type: models.OverlayImage, Content: "ghost.png",
		X: 0, Y: 0, StartTime: 0, EndTime: 1,
	}

	_, err := c.Compile([]models.Overlay{o})
	if !errors.IsAssetNotFound(err) {
		t.Fatalf("expected ASSET_NOT_FOUND, got %v", err)
	}
}

func TestCompileChainsOverlaysInOrder(t *testing.T) {
	c, _ := newTestCompiler(t, "a.png", "b.png")

	overlays := []models.Overlay{
		textOverlay("first", 0.1, 0.1, 0, 1),
		{Type: models.OverlayImage, Content: "a.png", X: 0.2, Y: 0.2, StartTime: 1, EndTime: 2},
		{Type: models.OverlayVideo, Content: "b.png", X: 0.3, Y: 0.3, StartTime: 2, EndTime: 3},
	}

	g, err := c.Compile(overlays)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Each stage consumes the previous label.
	for _, want := range []string{"[0:v]drawtext", "[v0][pad1]overlay", "[v1][pad2]overlay"} {
		if !strings.Contains(g.FilterComplex, want) {
			t.Errorf("expected chained stage %q, got %q", want, g.FilterComplex)
		}
	}
	if g.FinalLabel != "[v2]" {
		t.Errorf("expected final label [v2], got %s", g.FinalLabel)
	}
	if len(g.ExtraInputs) != 2 {
		t.Errorf("expected two extra inputs, got %v", g.ExtraInputs)
	}
}

func TestCompileOrderPreserving(t *testing.T) {
	c, _ := newTestCompiler(t)

	a := textOverlay("alpha", 0.1, 0.1, 0, 1)
	b := textOverlay("beta", 0.2, 0.2, 1, 2)

	g1, err := c.Compile([]models.Overlay{a, b})
	if err != nil {
		t.Fatal(err)
	}
	g2, err := c.Compile([]models.Overlay{b, a})
	if err != nil {
		t.Fatal(err)
	}

	// Swapping changes z-order, never the set of stages.
	if strings.Count(g1.FilterComplex, "drawtext=") != strings.Count(g2.FilterComplex, "drawtext=") {
		t.Errorf("stage count changed with order: %q vs %q", g1.FilterComplex, g2.FilterComplex)
	}
	if g1.FilterComplex == g2.FilterComplex {
		t.Error("expected different chaining for different z-order")
	}
	if g1.FinalLabel != g2.FinalLabel {
		t.Errorf("final label should depend only on stage count: %s vs %s", g1.FinalLabel, g2.FinalLabel)
	}
}

func TestCompileSkipsUnknownType(t *testing.T) {
	c, _ := newTestCompiler(t)

	overlays := []models.Overlay{
		{Type: "hologram", Content: "??", X: 0, Y: 0, StartTime: 0, EndTime: 1},
		textOverlay("kept", 0.5, 0.5, 0, 1),
	}

	g, err := c.Compile(overlays)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Count(g.FilterComplex, "drawtext=") != 1 {
		t.Errorf("expected the unknown type skipped, got %q", g.FilterComplex)
	}
	if g.FinalLabel != "[v0]" {
		t.Errorf("expected label numbering unaffected by skipped overlay, got %s", g.FinalLabel)
	}
}

func TestCompileOnlyUnknownTypes(t *testing.T) {
	c, _ := newTestCompiler(t)

	g, err := c.Compile([]models.Overlay{
		{Type: "hologram", Content: "??", X: 0, Y: 0, StartTime: 0, EndTime: 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !g.Empty() {
		t.Errorf("expected empty graph when every overlay is skipped, got %q", g.FilterComplex)
	}
}
