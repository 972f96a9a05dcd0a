package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nabeel-w/ButterCut-Assignment/internal/pkg/errors"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestResolveAbsolutePath(t *testing.T) {
	tmp := t.TempDir()
	asset := filepath.Join(tmp, "logo.png")
	writeFile(t, asset)

	r := NewAssetResolver(filepath.Join(tmp, "assets"))

	got, err := r.Resolve(asset)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != asset {
		t.Errorf("expected %s, got %s", asset, got)
	}
}

func TestResolveUnderAssetsRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "sticker.png"))

	r := NewAssetResolver(root)

	got, err := r.Resolve("sticker.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != filepath.Join(root, "sticker.png") {
		t.Errorf("expected root join, got %s", got)
	}
}

func TestResolveMissingAsset(t *testing.T) {
	root := t.TempDir()
	r := NewAssetResolver(root)

	_, err := r.Resolve("nope.png")
	if !errors.IsAssetNotFound(err) {
		t.Fatalf("expected ASSET_NOT_FOUND, got %v", err)
	}
	if !strings.Contains(err.Error(), filepath.Join(root, "nope.png")) {
		t.Errorf("expected tried path in message, got: %s", err.Error())
	}
}

func TestResolveAbsoluteMissingFallsBackToRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "present.png"))

	// An absolute reference that does not exist should not short-circuit
	// the assets-root lookup.
	missingAbs := filepath.Join(t.TempDir(), "present.png")

	r := NewAssetResolver(root)
	_, err := r.Resolve(missingAbs)
	if !errors.IsAssetNotFound(err) {
		t.Fatalf("expected ASSET_NOT_FOUND, got %v", err)
	}
}

func TestResolveChecksFreshlyEachCall(t *testing.T) {
	root := t.TempDir()
	r := NewAssetResolver(root)

	if _, err := r.Resolve("late.png"); err == nil {
		t.Fatal("expected failure before the asset exists")
	}

	writeFile(t, filepath.Join(root, "late.png"))

	if _, err := r.Resolve("late.png"); err != nil {
		t.Fatalf("expected success after the asset appears, got %v", err)
	}
}
