package files

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Save saves a file to the specified path.
// If the destination directory doesn't exist, it will be created.
func Save(filePath string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(filePath), os.ModePerm); err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0o644)
}

// Within joins a slash separated relative path to root.
// Paths leading outside of root are rejected.
func Within(root, rel string) (string, error) {
	full := filepath.Join(root, filepath.FromSlash(rel))

	res, err := filepath.Rel(root, full)
	if err != nil {
		return "", err
	}
	if res == ".." || strings.HasPrefix(res, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, rel)
	}

	return full, nil
}
