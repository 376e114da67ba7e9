// Package archive bundles a book's TWL files into reproducible .tar.xz
// archives for hand-off between translators.
package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ulikunitz/xz"
)

// epoch is the fixed timestamp written into archive headers so that the
// same inputs always produce byte-identical archives.
var epoch = time.Unix(0, 0).UTC()

// File is one named member of a bundle.
type File struct {
	Name string
	Data []byte
}

// Write writes the files as a .tar.xz stream, sorted by name with
// normalized timestamps and modes for reproducibility.
func Write(w io.Writer, files []File) error {
	sorted := make([]File, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	xw, err := xz.NewWriter(w)
	if err != nil {
		return fmt.Errorf("creating xz writer: %w", err)
	}
	tw := tar.NewWriter(xw)

	for _, f := range sorted {
		hdr := &tar.Header{
			Name:    filepath.ToSlash(f.Name),
			Mode:    0644,
			Size:    int64(len(f.Data)),
			ModTime: epoch,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return fmt.Errorf("writing header for %s: %w", f.Name, err)
		}
		if _, err := tw.Write(f.Data); err != nil {
			return fmt.Errorf("writing %s: %w", f.Name, err)
		}
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("closing tar: %w", err)
	}
	if err := xw.Close(); err != nil {
		return fmt.Errorf("closing xz: %w", err)
	}
	return nil
}

// WriteFile writes the files as a .tar.xz archive at path, creating
// parent directories as needed.
func WriteFile(path string, files []File) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating archive directory: %w", err)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating archive file: %w", err)
	}
	defer out.Close()
	return Write(out, files)
}

// Read reads every member of a .tar.xz stream.
func Read(r io.Reader) ([]File, error) {
	xr, err := xz.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("creating xz reader: %w", err)
	}
	tr := tar.NewReader(xr)

	var files []File
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading tar: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		// Reject traversal attempts from untrusted archives.
		name := filepath.ToSlash(hdr.Name)
		if strings.Contains(name, "..") || strings.HasPrefix(name, "/") {
			return nil, fmt.Errorf("unsafe member name %q", hdr.Name)
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", hdr.Name, err)
		}
		files = append(files, File{Name: name, Data: data})
	}
	return files, nil
}

// ReadFile reads every member of a .tar.xz archive at path.
func ReadFile(path string) ([]File, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive file: %w", err)
	}
	defer in.Close()
	return Read(in)
}
