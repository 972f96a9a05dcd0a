package archive

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalFSRoundTrip(t *testing.T) {
	fs := NewLocalFS(t.TempDir())
	ctx := context.Background()

	out, err := fs.Put(ctx, PutInput{
		Key:    "renders/j1/output.mp4",
		Reader: bytes.NewReader([]byte("video bytes")),
	})
	if err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if out.Key != "renders/j1/output.mp4" || out.Size != int64(len("video bytes")) {
		t.Errorf("unexpected put output: %+v", out)
	}

	rc, contentType, size, err := fs.Get(ctx, "renders/j1/output.mp4")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	defer rc.Close()

	data, _ := io.ReadAll(rc)
	if string(data) != "video bytes" {
		t.Errorf("unexpected content: %q", data)
	}
	if size != int64(len("video bytes")) {
		t.Errorf("unexpected size: %d", size)
	}
	if !strings.HasPrefix(contentType, "video/") {
		t.Errorf("expected video content type for .mp4, got %s", contentType)
	}
}

func TestLocalFSPutRequiresKey(t *testing.T) {
	fs := NewLocalFS(t.TempDir())
	if _, err := fs.Put(context.Background(), PutInput{Reader: bytes.NewReader(nil)}); err == nil {
		t.Error("expected error for empty key")
	}
}

func TestLocalFSDelete(t *testing.T) {
	root := t.TempDir()
	fs := NewLocalFS(root)
	ctx := context.Background()

	if _, err := fs.Put(ctx, PutInput{Key: "a/b.mp4", Reader: bytes.NewReader([]byte("x"))}); err != nil {
		t.Fatal(err)
	}
	if err := fs.Delete(ctx, "a/b.mp4"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "a", "b.mp4")); !os.IsNotExist(err) {
		t.Error("expected file to be removed")
	}
}

func TestNewProviderLocalFS(t *testing.T) {
	p, err := NewProvider("localfs", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if p.Name() != "localfs" {
		t.Errorf("expected localfs, got %s", p.Name())
	}

	p, err = NewProvider("", t.TempDir())
	if err != nil || p.Name() != "localfs" {
		t.Errorf("expected empty provider to default to localfs, got %v/%v", p, err)
	}
}

func TestNewProviderUnknown(t *testing.T) {
	if _, err := NewProvider("s3", ""); err == nil {
		t.Error("expected error for unknown provider")
	}
}
