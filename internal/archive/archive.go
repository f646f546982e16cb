package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gostjobs/internal/fileutil"
)

// ErrDuplicate is returned by Add when the entry name already exists.
var ErrDuplicate = errors.New("archive entry already exists")

// Archive is an ordered set of uniquely named zip entries backed by a file.
type Archive struct {
	path  string
	src   *os.File
	zr    *zip.Reader
	names []string
	index map[string]struct{}

	tmp    *os.File
	zw     *zip.Writer
	added  int
	failed error
	closed bool
}

// Open loads the archive at path. A missing or zero-length file yields an
// empty archive.
func Open(path string) (*Archive, error) {
	a := &Archive{path: path, index: make(map[string]struct{})}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return a, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat archive: %w", err)
	}
	if info.Size() == 0 {
		_ = f.Close()
		return a, nil
	}

	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("read archive %s: %w", path, err)
	}
	a.src = f
	a.zr = zr
	for _, file := range zr.File {
		if _, dup := a.index[file.Name]; dup {
			continue
		}
		a.index[file.Name] = struct{}{}
		a.names = append(a.names, file.Name)
	}
	return a, nil
}

// Has reports whether an entry named name exists.
func (a *Archive) Has(name string) bool {
	_, ok := a.index[name]
	return ok
}

// Names returns entry names in archive order.
func (a *Archive) Names() []string {
	return append([]string(nil), a.names...)
}

// Len returns the number of entries.
func (a *Archive) Len() int {
	return len(a.names)
}

// Modified reports whether Close will rewrite the archive file.
func (a *Archive) Modified() bool {
	return a.added > 0
}

// Add appends an entry named name with the contents of src. The name must
// already be normalized.
func (a *Archive) Add(name string, src io.Reader, modTime time.Time) error {
	if a.closed {
		return errors.New("archive is closed")
	}
	if a.failed != nil {
		return fmt.Errorf("archive unusable after failed write: %w", a.failed)
	}
	normalized, err := NormalizeName(name)
	if err != nil {
		return fmt.Errorf("%w: %q", err, name)
	}
	if normalized != name {
		return fmt.Errorf("%w: %q is not normalized", ErrInvalidName, name)
	}
	if a.Has(name) {
		return fmt.Errorf("%w: %s", ErrDuplicate, name)
	}
	if err := a.ensureWriter(); err != nil {
		a.failed = err
		return err
	}

	header := &zip.FileHeader{Name: name, Method: zip.Deflate, Modified: modTime}
	w, err := a.zw.CreateHeader(header)
	if err != nil {
		a.failed = err
		return fmt.Errorf("create entry %s: %w", name, err)
	}
	if _, err := io.Copy(w, src); err != nil {
		a.failed = err
		return fmt.Errorf("write entry %s: %w", name, err)
	}

	a.index[name] = struct{}{}
	a.names = append(a.names, name)
	a.added++
	return nil
}

func (a *Archive) ensureWriter() error {
	if a.zw != nil {
		return nil
	}
	tmp, err := os.CreateTemp(filepath.Dir(a.path), "."+filepath.Base(a.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create staging archive: %w", err)
	}
	zw := zip.NewWriter(tmp)
	if a.zr != nil {
		for _, file := range a.zr.File {
			if err := zw.Copy(file); err != nil {
				_ = tmp.Close()
				_ = os.Remove(tmp.Name())
				return fmt.Errorf("copy existing entry %s: %w", file.Name, err)
			}
		}
		if a.zr.Comment != "" {
			if err := zw.SetComment(a.zr.Comment); err != nil {
				_ = tmp.Close()
				_ = os.Remove(tmp.Name())
				return fmt.Errorf("copy archive comment: %w", err)
			}
		}
	}
	a.tmp = tmp
	a.zw = zw
	return nil
}

// Close finalizes the archive. When entries were added the staged file
// replaces the original; otherwise the original is left untouched. A failed
// entry write discards every staged change.
func (a *Archive) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true

	var srcErr error
	if a.src != nil {
		srcErr = a.src.Close()
	}
	if a.zw == nil {
		return srcErr
	}

	tmpPath := a.tmp.Name()
	if a.failed != nil {
		_ = a.tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("discarded archive changes: %w", a.failed)
	}
	if err := a.zw.Close(); err != nil {
		_ = a.tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("finalize archive: %w", err)
	}
	if err := a.tmp.Sync(); err != nil {
		_ = a.tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("sync archive: %w", err)
	}
	if err := a.tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close archive: %w", err)
	}
	if err := fileutil.ReplaceFile(tmpPath, a.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("commit archive: %w", err)
	}
	return srcErr
}
