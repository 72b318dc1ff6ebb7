package scaffold

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dyluth/nodebuild/internal/config"
)

// CheckExisting returns an error if dir already has a nodebuild.yml
func CheckExisting(dir string) error {
	if _, err := os.Stat(filepath.Join(dir, config.DefaultPath)); err == nil {
		return fmt.Errorf("project already initialized\n\nFound existing: %s\n\nUse 'nodebuild init --force' to overwrite it", config.DefaultPath)
	}
	return nil
}
