package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/bmatcuk/doublestar/v4"
)

// TempFilePrefix names the files a key write stages before the rename.
const TempFilePrefix = "quill-tmp-"

// WriteError reports the key whose write failed and the step that failed.
type WriteError struct {
	Key string
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write key %q: %s: %v", e.Key, e.Op, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// writeKey replaces dir/name, the file of key, with value. The value is on
// disk before the rename and the rename is on disk before writeKey returns:
// after a crash the file holds either the old or the new value.
func writeKey(dir, key, name string, value []byte, perm os.FileMode) error {
	fail := func(op string, err error) error {
		return &WriteError{Key: key, Op: op, Err: err}
	}

	tmp, err := os.CreateTemp(dir, TempFilePrefix+key+"-*")
	if err != nil {
		return fail("create temp", err)
	}
	defer os.Remove(tmp.Name()) // no-op once renamed

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fail("write temp", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fail("sync temp", err)
	}
	if err := tmp.Close(); err != nil {
		return fail("close temp", err)
	}
	if err := os.Chmod(tmp.Name(), perm); err != nil {
		return fail("chmod temp", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dir, name)); err != nil {
		return fail("rename", err)
	}
	if err := syncDir(dir); err != nil {
		return fail("sync dir", err)
	}
	return nil
}

// syncDir flushes the directory entry of a rename.
// Windows cannot fsync directories; NTFS journals the rename itself.
func syncDir(dir string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}

// removeStaleTemps deletes staged files left behind by interrupted writes.
func removeStaleTemps(dir string) (int, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), TempFilePrefix+"*")
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, m := range matches {
		if err := os.Remove(filepath.Join(dir, m)); err != nil && !os.IsNotExist(err) {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
