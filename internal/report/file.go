package report

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	domainerrors "github.com/gencat/gencat/internal/errors"
)

// writeFile writes to a temp file next to path and renames it into place, so
// a failed export never leaves a truncated file behind.
func writeFile(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return domainerrors.Wrapf(err, domainerrors.CodeIO, "create %s", dir)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return domainerrors.Wrapf(err, domainerrors.CodeIO, "create temp file for %s", path)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	bw := bufio.NewWriter(tmp)
	if err := write(bw); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = tmp.Close()
		return domainerrors.Wrapf(err, domainerrors.CodeIO, "write %s", path)
	}
	if err := tmp.Close(); err != nil {
		return domainerrors.Wrapf(err, domainerrors.CodeIO, "close %s", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return domainerrors.Wrapf(err, domainerrors.CodeIO, "rename into %s", path)
	}
	return nil
}
