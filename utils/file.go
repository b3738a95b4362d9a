package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultImageName builds a unique base name like
// "screenshot-20060102150405-1a2b3c4d".
func DefaultImageName(prefix string) string {
	timestamp := time.Now().Format("20060102150405")
	return fmt.Sprintf("%s-%s-%s", prefix, timestamp, uuid.NewString()[:8])
}

// SaveImageFile writes data to dir/<name>.<ext> and returns the absolute path.
// name is reduced to its base element and a trailing extension is replaced,
// so callers cannot escape dir.
func SaveImageFile(dir, name, ext string, data []byte) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("file name is required")
	}

	base := filepath.Base(filepath.Clean(name))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "", fmt.Errorf("invalid file name '%s'", name)
	}

	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("error creating output directory: %w", err)
	}

	finalPath, err := filepath.Abs(filepath.Join(dir, base+"."+ext))
	if err != nil {
		return "", fmt.Errorf("invalid output path: %w", err)
	}

	if err := os.WriteFile(finalPath, data, 0o600); err != nil {
		return "", fmt.Errorf("error writing file: %w", err)
	}

	return finalPath, nil
}
