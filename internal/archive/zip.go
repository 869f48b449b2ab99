package archive

import (
	"archive/zip"
	"context"
	"io"
	"time"
)

// ZipArchiver streams files into a zip archive written to an io.Writer.
type ZipArchiver struct {
	zw      *zip.Writer
	modTime time.Time
}

// NewZipArchiver returns an archiver writing to w. Entries are stamped with
// modTime so repeated downloads of the same files are byte-identical.
func NewZipArchiver(w io.Writer, modTime time.Time) *ZipArchiver {
	return &ZipArchiver{zw: zip.NewWriter(w), modTime: modTime}
}

func (z *ZipArchiver) AddFile(_ context.Context, name string, data io.Reader) error {
	hdr := &zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: z.modTime,
	}
	hdr.SetMode(0644)
	fw, err := z.zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = io.Copy(fw, data)
	return err
}

func (z *ZipArchiver) Close() error { return z.zw.Close() }

func (z *ZipArchiver) Extension() string { return ".zip" }
