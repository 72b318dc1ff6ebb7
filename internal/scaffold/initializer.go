package scaffold

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dyluth/nodebuild/internal/config"
)

//go:embed templates/*
var templatesFS embed.FS

// Initialize writes a commented nodebuild.yml into dir.
// If force is true an existing file is overwritten.
func Initialize(dir string, force bool) (string, error) {
	path := filepath.Join(dir, config.DefaultPath)

	if !force {
		if err := CheckExisting(dir); err != nil {
			return "", err
		}
	}

	content, err := templatesFS.ReadFile("templates/nodebuild.yml.tmpl")
	if err != nil {
		return "", fmt.Errorf("failed to read nodebuild.yml template: %w", err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	// The template must load cleanly, otherwise the next build would fail
	if _, err := config.Load(path); err != nil {
		return "", fmt.Errorf("created %s is invalid: %w", config.DefaultPath, err)
	}

	return path, nil
}
