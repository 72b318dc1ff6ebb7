package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/dyluth/nodebuild/internal/buildid"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultPath is the optional per-checkout configuration file
	DefaultPath = "nodebuild.yml"

	// DefaultObjectDirectory holds the Release objects produced by make
	DefaultObjectDirectory = "out/Release"

	// RegistryURLEnv overrides registry.url from the config file
	RegistryURLEnv = "NODEBUILD_REDIS_URL"

	// DefaultRegistryNamespace scopes registry keys when none is configured
	DefaultRegistryNamespace = "default"

	// BuildContainerFlag requests rebuilding the node-build image before the build
	BuildContainerFlag = "--build-container"
)

// DefaultLibraries are the libraries whose symbols are archived
var DefaultLibraries = []string{"node"}

// HostPlatform selects between the containerized and the native build
type HostPlatform int

const (
	PlatformOther HostPlatform = iota
	PlatformLinux
)

func (p HostPlatform) String() string {
	if p == PlatformLinux {
		return "linux"
	}
	return "other"
}

// HostPlatformFor maps a GOOS value onto a HostPlatform
func HostPlatformFor(goos string) HostPlatform {
	if goos == "linux" {
		return PlatformLinux
	}
	return PlatformOther
}

// BuildConfig is derived once per invocation and is read-only afterwards
type BuildConfig struct {
	HostPlatform HostPlatform
	UseContainer bool
	Parallelism  int
	WorkDir      string // absolute path of the node checkout
}

// Detect builds the BuildConfig from host introspection and invocation args.
// The container flag is presence based: any argument containing it enables it.
func Detect(args []string, workDir string) BuildConfig {
	return BuildConfig{
		HostPlatform: HostPlatformFor(runtime.GOOS),
		UseContainer: HasBuildContainerFlag(args),
		Parallelism:  runtime.NumCPU(),
		WorkDir:      workDir,
	}
}

// HasBuildContainerFlag reports whether any argument mentions --build-container
func HasBuildContainerFlag(args []string) bool {
	for _, arg := range args {
		if strings.Contains(arg, BuildContainerFlag) {
			return true
		}
	}
	return false
}

// Validate checks the derived configuration
func (c BuildConfig) Validate() error {
	if c.Parallelism < 1 {
		return fmt.Errorf("parallelism must be >= 1, got %d", c.Parallelism)
	}
	if c.HostPlatform == PlatformLinux && c.WorkDir == "" {
		return fmt.Errorf("working directory is required for the container build")
	}
	return nil
}

// FileConfig represents the optional nodebuild.yml
type FileConfig struct {
	Version         string          `yaml:"version"`
	Platform        string          `yaml:"platform,omitempty"`         // Overrides the detected platform tag
	SourceFile      string          `yaml:"source_file,omitempty"`      // Default: src/node_build_id.cc
	ObjectDirectory string          `yaml:"object_directory,omitempty"` // Default: out/Release
	Libraries       []string        `yaml:"libraries,omitempty"`        // Default: [node]
	Archiver        *ArchiverConfig `yaml:"archiver,omitempty"`
	Registry        *RegistryConfig `yaml:"registry,omitempty"`
}

// ArchiverConfig specifies the external symbol archiver
type ArchiverConfig struct {
	Command  []string `yaml:"command"` // Invoked as <command...> <build-id> <object-dir> <lib...>
	Disabled bool     `yaml:"disabled,omitempty"`
}

// RegistryConfig specifies where finished builds are recorded
type RegistryConfig struct {
	URL       string `yaml:"url"`                 // redis://host:port/db
	Namespace string `yaml:"namespace,omitempty"` // Default: "default"
}

// Default returns the configuration used when no nodebuild.yml exists
func Default() *FileConfig {
	cfg := &FileConfig{Version: "1.0"}
	// Validate only applies defaults here
	_ = cfg.Validate()
	return cfg
}

// Validate performs strict validation and applies defaults
func (c *FileConfig) Validate() error {
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	if c.SourceFile == "" {
		c.SourceFile = buildid.DefaultSourceFile
	}
	if c.ObjectDirectory == "" {
		c.ObjectDirectory = DefaultObjectDirectory
	}
	if len(c.Libraries) == 0 {
		c.Libraries = append([]string(nil), DefaultLibraries...)
	}

	for i, lib := range c.Libraries {
		if strings.TrimSpace(lib) == "" {
			return fmt.Errorf("libraries[%d]: library name cannot be empty", i)
		}
	}

	if c.Platform != "" && strings.ContainsAny(c.Platform, " \t\"") {
		return fmt.Errorf("invalid platform override: %q (must not contain whitespace or quotes)", c.Platform)
	}

	if c.Archiver != nil && !c.Archiver.Disabled && len(c.Archiver.Command) == 0 {
		return fmt.Errorf("archiver.command is required unless archiver.disabled is set")
	}

	if c.Registry != nil && c.Registry.Namespace == "" {
		c.Registry.Namespace = DefaultRegistryNamespace
	}

	if c.Registry != nil && c.Registry.URL != "" && !strings.HasPrefix(c.Registry.URL, "redis://") && !strings.HasPrefix(c.Registry.URL, "rediss://") {
		return fmt.Errorf("registry.url must be a redis:// or rediss:// URL, got %s", c.Registry.URL)
	}

	return nil
}

// RegistryURL returns the registry URL, preferring the environment override
func (c *FileConfig) RegistryURL() string {
	if url := os.Getenv(RegistryURLEnv); url != "" {
		return url
	}
	if c.Registry != nil {
		return c.Registry.URL
	}
	return ""
}

// RegistryNamespace returns the configured registry namespace
func (c *FileConfig) RegistryNamespace() string {
	if c.Registry != nil && c.Registry.Namespace != "" {
		return c.Registry.Namespace
	}
	return DefaultRegistryNamespace
}

// ArchiverEnabled reports whether a symbol archiver is configured
func (c *FileConfig) ArchiverEnabled() bool {
	return c.Archiver != nil && !c.Archiver.Disabled && len(c.Archiver.Command) > 0
}

// Load reads and validates nodebuild.yml from the specified path
func Load(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config FileConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// LoadOrDefault is Load, except a missing file yields the defaults
func LoadOrDefault(path string) (*FileConfig, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}
