package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"codegen_server/internal/types"
)

// ErrUnsafePath is returned for file names that are absolute or climb out of
// the project root.
var ErrUnsafePath = errors.New("unsafe file path")

// Archiver collects generated files into some output.
type Archiver interface {
	// AddFile adds one file under the given slash-separated relative name.
	AddFile(ctx context.Context, name string, data io.Reader) error
	// Close finalizes the output.
	Close() error
	// Extension is the suffix of the produced artifact, empty for directories.
	Extension() string
}

// CleanName normalizes a generated file name to a clean relative path.
func CleanName(name string) (string, error) {
	n := strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	if n == "" || strings.HasPrefix(n, "/") {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}
	n = path.Clean(n)
	if n == "." || n == ".." || strings.HasPrefix(n, "../") {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}
	return n, nil
}

// Dedupe resolves duplicate names: the last content wins while the entry
// keeps the position of its first appearance.
func Dedupe(files []types.GeneratedFile) []types.GeneratedFile {
	index := make(map[string]int, len(files))
	out := make([]types.GeneratedFile, 0, len(files))
	for _, f := range files {
		if i, ok := index[f.Name]; ok {
			out[i].Content = f.Content
			continue
		}
		index[f.Name] = len(out)
		out = append(out, f)
	}
	return out
}

// Write validates every name, resolves duplicates and adds the files to a.
// It does not close a.
func Write(ctx context.Context, a Archiver, files []types.GeneratedFile) (int, error) {
	cleaned := make([]types.GeneratedFile, 0, len(files))
	for _, f := range files {
		name, err := CleanName(f.Name)
		if err != nil {
			return 0, err
		}
		cleaned = append(cleaned, types.GeneratedFile{Name: name, Content: f.Content})
	}

	written := 0
	for _, f := range Dedupe(cleaned) {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		if err := a.AddFile(ctx, f.Name, strings.NewReader(f.Content)); err != nil {
			return written, fmt.Errorf("adding %s: %w", f.Name, err)
		}
		written++
	}
	return written, nil
}
