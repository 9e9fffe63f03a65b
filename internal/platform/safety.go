package platform

import (
	"os"
	"path/filepath"
	"strings"
)

// DevDir is the temp namespace vaults are re-rooted into during dev runs.
const DevDir = "quill-dev"

// IsDevRun checks if the current process is running via `go run` or `go test`.
// Both build their binaries in temporary directories.
func IsDevRun() bool {
	exe, err := os.Executable()
	if err != nil {
		return false
	}

	if strings.HasPrefix(strings.ToLower(exe), strings.ToLower(os.TempDir())) {
		return true
	}

	return strings.HasSuffix(exe, ".test") || strings.HasSuffix(exe, ".test.exe")
}

// ResolveVaultPath re-roots userPath into a temporary directory when
// forceTemp is set, so dev runs never write into the host workspace.
// Paths already inside the system temp directory are kept.
func ResolveVaultPath(userPath string, forceTemp bool) string {
	if !forceTemp {
		if userPath == "" {
			return "."
		}
		return userPath
	}

	clean := filepath.Clean(userPath)
	tempRoot := os.TempDir()

	if filepath.IsAbs(clean) {
		rel, err := filepath.Rel(tempRoot, clean)
		if err == nil && !strings.HasPrefix(rel, "..") {
			return clean
		}
	}

	name := filepath.Base(clean)
	if userPath == "" || name == "." || name == string(os.PathSeparator) {
		name = "default"
	}

	return filepath.Join(tempRoot, DevDir, name)
}
