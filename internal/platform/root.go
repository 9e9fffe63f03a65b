package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/quill/pkg/adapters/fs"
	"github.com/aretw0/quill/pkg/core"
)

// SystemDir marks the root of an fs vault.
const SystemDir = ".quill"

// ConfigFile is the optional per-vault configuration file.
const ConfigFile = "quill.yaml"

// ErrNoVault is returned when no directory up to the filesystem root is a vault.
var ErrNoVault = errors.New("no quill vault found")

// indicators mark a vault root, checked in this order in each directory.
// A vault written by an older session may hold only its notes file.
var indicators = []struct {
	name string
	dir  bool
}{
	{SystemDir, true},
	{ConfigFile, false},
	{core.NotesKey + fs.DefaultExtension, false},
}

// FindRoot walks up from startDir and returns the absolute path of the
// nearest vault root. Nested vaults shadow their parents.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for dir := abs; ; {
		if _, ok := rootMarker(dir); ok {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w from %s", ErrNoVault, abs)
		}
		dir = parent
	}
}

// rootMarker returns the first indicator present in dir.
func rootMarker(dir string) (string, bool) {
	for _, ind := range indicators {
		info, err := os.Stat(filepath.Join(dir, ind.name))
		if err != nil || info.IsDir() != ind.dir {
			continue
		}
		return ind.name, true
	}
	return "", false
}
