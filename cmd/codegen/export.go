package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"fortio.org/log"
	cli "github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"codegen_server/internal/archive"
	"codegen_server/internal/types"
	"codegen_server/internal/utils"
)

type listing struct {
	Name  string `yaml:"name"`
	Type  string `yaml:"type"`
	Bytes int    `yaml:"bytes"`
}

// emit writes files wherever the output flags point. With no flag set the
// file list is printed.
func emit(ctx context.Context, cmd *cli.Command, stdout io.Writer, files []types.GeneratedFile) error {
	out, zipPath, list := cmd.String("out"), cmd.String("zip"), cmd.Bool("list")
	if out != "" {
		if err := exportDir(ctx, out, files); err != nil {
			return err
		}
	}
	if zipPath != "" {
		if err := exportZip(ctx, zipPath, files); err != nil {
			return err
		}
	}
	if list || (out == "" && zipPath == "") {
		return writeListing(stdout, files)
	}
	return nil
}

func writeListing(w io.Writer, files []types.GeneratedFile) error {
	entries := make([]listing, 0, len(files))
	for _, f := range files {
		entries = append(entries, listing{Name: f.Name, Type: utils.DetermineFileType(f.Name), Bytes: len(f.Content)})
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(entries); err != nil {
		return err
	}
	return enc.Close()
}

func exportDir(ctx context.Context, root string, files []types.GeneratedFile) error {
	d, err := archive.NewDirArchiver(root)
	if err != nil {
		return err
	}
	if _, err := archive.Write(ctx, d, files); err != nil {
		return err
	}
	return d.Close()
}

func exportZip(ctx context.Context, path string, files []types.GeneratedFile) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	z := archive.NewZipArchiver(f, time.Now())
	n, err := archive.Write(ctx, z, files)
	if err != nil {
		return err
	}
	if err := z.Close(); err != nil {
		return err
	}
	log.Infof("Wrote %d files to %s", n, path)
	return nil
}
