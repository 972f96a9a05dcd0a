package archive

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
)

// LocalFS archives renders under a root directory on the local filesystem.
type LocalFS struct {
	root string
}

func NewLocalFS(root string) *LocalFS {
	return &LocalFS{root: root}
}

func (l *LocalFS) Name() string { return "localfs" }

func (l *LocalFS) Put(ctx context.Context, in PutInput) (PutOutput, error) {
	if in.Key == "" {
		return PutOutput{}, fmt.Errorf("archive key is required")
	}

	dst := filepath.Join(l.root, filepath.FromSlash(in.Key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return PutOutput{}, err
	}

	f, err := os.Create(dst)
	if err != nil {
		return PutOutput{}, err
	}
	defer f.Close()

	n, err := io.Copy(f, in.Reader)
	if err != nil {
		return PutOutput{}, err
	}

	return PutOutput{Key: in.Key, Size: n}, nil
}

func (l *LocalFS) Get(ctx context.Context, key string) (io.ReadCloser, string, int64, error) {
	p := filepath.Join(l.root, filepath.FromSlash(key))
	f, err := os.Open(p)
	if err != nil {
		return nil, "", 0, err
	}

	var size int64
	if st, err := f.Stat(); err == nil {
		size = st.Size()
	}

	// Prefer extension-based type. If empty, sniff first bytes.
	contentType := mime.TypeByExtension(filepath.Ext(p))
	if contentType == "" {
		buf := make([]byte, 512)
		n, _ := f.Read(buf)
		_, _ = f.Seek(0, 0)
		contentType = http.DetectContentType(buf[:n])
	}

	return f, contentType, size, nil
}

func (l *LocalFS) Delete(ctx context.Context, key string) error {
	return os.Remove(filepath.Join(l.root, filepath.FromSlash(key)))
}
