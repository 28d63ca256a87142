// Package transcript writes duplication transcripts to files on local disk.
package transcript

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/neomorfeo/siteclone/internal/domain"
)

// Compile-time checks.
var (
	_ domain.TranscriptOpener = (*FileOpener)(nil)
	_ domain.Transcript       = (*File)(nil)
)

// FileOpener creates transcript files. Files under root are published
// below baseURL; files elsewhere get no URL.
type FileOpener struct {
	root    string
	baseURL string
	level   slog.Level
}

// NewFileOpener creates an opener. Either root or baseURL may be empty, in
// which case transcripts are written but never published.
func NewFileOpener(root, baseURL string) *FileOpener {
	return &FileOpener{root: root, baseURL: baseURL, level: slog.LevelDebug}
}

// Open creates the parent directory if needed and opens path for appending.
func (o *FileOpener) Open(_ context.Context, path string) (domain.Transcript, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating transcript directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640) //nolint:gosec // path is validated before opening
	if err != nil {
		return nil, fmt.Errorf("opening transcript: %w", err)
	}

	w := bufio.NewWriter(f)
	return &File{
		file:   f,
		w:      w,
		logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: o.level})),
		url:    o.publicURL(path),
	}, nil
}

func (o *FileOpener) publicURL(path string) string {
	if o.root == "" || o.baseURL == "" {
		return ""
	}
	rel, err := filepath.Rel(filepath.Clean(o.root), filepath.Clean(path))
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ""
	}
	u, err := url.JoinPath(o.baseURL, strings.Split(filepath.ToSlash(rel), "/")...)
	if err != nil {
		return ""
	}
	return u
}

// File is an open transcript backed by a buffered file.
type File struct {
	file   *os.File
	w      *bufio.Writer
	logger *slog.Logger
	url    string
}

func (t *File) Logger() *slog.Logger { return t.logger }

func (t *File) URL() string { return t.url }

// Close flushes buffered records and closes the file.
func (t *File) Close() error {
	return errors.Join(t.w.Flush(), t.file.Close())
}
