package commands

import (
	"context"
	"fmt"

	"github.com/dyluth/nodebuild/internal/config"
	"github.com/dyluth/nodebuild/internal/printer"
	"github.com/dyluth/nodebuild/pkg/registry"
)

var configPath string

func loadConfig() (*config.FileConfig, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, printer.Error(
			fmt.Sprintf("%s is invalid", configPath),
			err.Error(),
			[]string{
				"Fix the file and retry",
				fmt.Sprintf("Remove %s to use the defaults", configPath),
			},
		)
	}
	return cfg, nil
}

// openRegistry dials the configured registry; it returns (nil, nil) when none is configured
func openRegistry(ctx context.Context, cfg *config.FileConfig) (*registry.Client, error) {
	url := cfg.RegistryURL()
	if url == "" {
		return nil, nil
	}
	return registry.Dial(ctx, url, cfg.RegistryNamespace())
}
