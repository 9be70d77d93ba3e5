package fileutil

import (
	"io"
	"os"
	"path/filepath"
)

// Exists reports whether path exists at all (file or directory).
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// DirExists reports whether path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// EnsureDir creates the directory (and parents) if it does not exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

// CopyFile streams src to dst with default permissions (0o644), creating
// parent directories as needed.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// CopyFileIfMissing copies src to dst unless dst already exists. It reports
// whether a copy was performed, which lets callers log skipped work on
// repeated runs.
func CopyFileIfMissing(src, dst string) (bool, error) {
	if Exists(dst) {
		return false, nil
	}
	if err := CopyFile(src, dst); err != nil {
		return false, err
	}
	return true, nil
}
