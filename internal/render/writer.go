package render

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var ErrIO = errors.New("output io error")

// WriteText writes content to path as UTF-8. With overwrite false an
// existing file is left untouched and written is false. The file is
// flushed and closed on every return path.
func WriteText(path, content string, overwrite bool) (written bool, err error) {
	if !overwrite {
		if _, statErr := os.Stat(path); statErr == nil {
			return false, nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("%w: failed to create output directory: %v", ErrIO, err)
	}

	file, err := os.Create(path)
	if err != nil {
		return false, fmt.Errorf("%w: failed to create %s: %v", ErrIO, path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			written = false
			err = fmt.Errorf("%w: failed to close %s: %v", ErrIO, path, cerr)
		}
	}()

	w := bufio.NewWriter(file)
	if _, err := w.WriteString(content); err != nil {
		return false, fmt.Errorf("%w: failed to write %s: %v", ErrIO, path, err)
	}
	if err := w.Flush(); err != nil {
		return false, fmt.Errorf("%w: failed to flush %s: %v", ErrIO, path, err)
	}

	return true, nil
}
