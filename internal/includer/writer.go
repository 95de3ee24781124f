package includer

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/cubahno/oasdocs/internal/files"
)

// Writer persists generated pages.
type Writer interface {
	Write(ctx context.Context, path string, data []byte) error
}

// DirWriter saves pages under a root directory.
type DirWriter struct {
	Root string
}

// NewDirWriter creates a DirWriter.
func NewDirWriter(root string) *DirWriter {
	return &DirWriter{Root: root}
}

// Write implements Writer.
func (w *DirWriter) Write(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	filePath, err := files.Within(w.Root, path)
	if err != nil {
		return err
	}
	return files.Save(filePath, data)
}

// MemoryWriter keeps pages in memory.
// It is safe for concurrent use.
type MemoryWriter struct {
	mu    sync.RWMutex
	pages map[string][]byte
}

// NewMemoryWriter creates an empty MemoryWriter.
func NewMemoryWriter() *MemoryWriter {
	return &MemoryWriter{
		pages: make(map[string][]byte),
	}
}

// Write implements Writer.
func (w *MemoryWriter) Write(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.pages[path] = append([]byte(nil), data...)
	return nil
}

// Get returns the page stored under the path.
func (w *MemoryWriter) Get(path string) ([]byte, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	data, ok := w.pages[path]
	return data, ok
}

// Paths returns the stored paths in alphabetical order.
func (w *MemoryWriter) Paths() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	res := make([]string, 0, len(w.pages))
	for path := range w.pages {
		res = append(res, path)
	}
	sort.Strings(res)
	return res
}

// Emit writes all pages.
func Emit(ctx context.Context, pages []*Page, w Writer) error {
	for _, page := range pages {
		if err := w.Write(ctx, page.Path, page.Content); err != nil {
			return fmt.Errorf("%s: %w", page.Path, err)
		}
		slog.Debug("page written", "path", page.Path)
	}

	slog.Info("pages written", "count", len(pages))
	return nil
}
