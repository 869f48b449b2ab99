package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"fortio.org/log"
)

// DirArchiver writes files below a root directory, creating parents as
// needed.
type DirArchiver struct {
	root  string
	saved int
}

// NewDirArchiver creates root if it does not exist.
func NewDirArchiver(root string) (*DirArchiver, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &DirArchiver{root: root}, nil
}

func (d *DirArchiver) AddFile(_ context.Context, name string, data io.Reader) error {
	target := filepath.Join(d.root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", name, err)
	}
	content, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	if err := os.WriteFile(target, content, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	log.LogVf("File saved: %s", target)
	d.saved++
	return nil
}

func (d *DirArchiver) Close() error {
	log.Infof("Wrote %d files to %s", d.saved, d.root)
	return nil
}

func (d *DirArchiver) Extension() string { return "" }
