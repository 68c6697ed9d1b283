package output

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// Writer persists frames into a single directory.
type Writer struct {
	Dir     string
	Format  Format
	Quality int
}

func NewWriter(dir string, format Format, quality int) *Writer {
	return &Writer{Dir: dir, Format: format, Quality: quality}
}

// Prepare creates the directory and checks that files can be created in it.
func (w *Writer) Prepare() error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.CreateTemp(w.Dir, ".framegen-check-*")
	if err != nil {
		return fmt.Errorf("output dir not writable: %w", err)
	}
	name := f.Name()
	f.Close()
	if err := os.Remove(name); err != nil {
		return fmt.Errorf("remove check file: %w", err)
	}
	return nil
}

// WriteImage encodes img into Dir/name and returns the final path.
func (w *Writer) WriteImage(name string, img image.Image) (string, error) {
	var opts []imaging.EncodeOption
	if w.Format == JPEG && w.Quality > 0 {
		opts = append(opts, imaging.JPEGQuality(w.Quality))
	}
	return w.write(name, func(out io.Writer) error {
		return imaging.Encode(out, img, w.Format.imaging(), opts...)
	})
}

// WriteJSON stores v as indented JSON in Dir/name.
func (w *Writer) WriteJSON(name string, v interface{}) (string, error) {
	return w.write(name, func(out io.Writer) error {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}

// write goes through a temp file in the same directory so a file either
// appears complete or not at all.
func (w *Writer) write(name string, encode func(io.Writer) error) (string, error) {
	final := filepath.Join(w.Dir, name)
	tmp, err := os.CreateTemp(w.Dir, ".framegen-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := encode(tmp); err != nil {
		tmp.Close()
		return "", fmt.Errorf("encode %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return "", fmt.Errorf("chmod %s: %w", name, err)
	}
	if err := os.Rename(tmpName, final); err != nil {
		return "", fmt.Errorf("rename %s: %w", name, err)
	}
	return final, nil
}

// Archive zips the given files into dest, storing each under its base name.
func Archive(paths []string, dest string) error {
	zipFile, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create zip file: %w", err)
	}
	defer zipFile.Close()

	zw := zip.NewWriter(zipFile)
	for _, p := range paths {
		if err := addFileToZip(zw, p); err != nil {
			zw.Close()
			return fmt.Errorf("add %s to zip: %w", p, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize zip: %w", err)
	}
	return zipFile.Close()
}

func addFileToZip(zw *zip.Writer, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = filepath.Base(filename)
	header.Method = zip.Deflate

	writer, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(writer, file)
	return err
}
