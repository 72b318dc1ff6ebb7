package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nodebuild.yml")

	validConfig := `version: "1.0"
platform: "linux-x64"
libraries: ["node", "libnode"]
archiver:
  command: ["node", "../backend/scripts/build-symbols.js"]
registry:
  url: "redis://localhost:6379/0"
`
	require.NoError(t, os.WriteFile(configPath, []byte(validConfig), 0644))

	config, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "1.0", config.Version)
	assert.Equal(t, "linux-x64", config.Platform)
	assert.Equal(t, []string{"node", "libnode"}, config.Libraries)
	assert.Equal(t, []string{"node", "../backend/scripts/build-symbols.js"}, config.Archiver.Command)
	assert.True(t, config.ArchiverEnabled())

	// Defaults applied for omitted fields
	assert.Equal(t, "src/node_build_id.cc", config.SourceFile)
	assert.Equal(t, "out/Release", config.ObjectDirectory)
	assert.Equal(t, "default", config.RegistryNamespace())
}

func TestLoad_FileNotFound(t *testing.T) {
	config, err := Load("/nonexistent/nodebuild.yml")
	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nodebuild.yml")

	invalidYAML := `version: "1.0"
libraries:
  - node
    broken: [
`
	require.NoError(t, os.WriteFile(configPath, []byte(invalidYAML), 0644))

	config, err := Load(configPath)
	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadOrDefault(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		config, err := LoadOrDefault(filepath.Join(t.TempDir(), "nodebuild.yml"))
		require.NoError(t, err)
		assert.Equal(t, "src/node_build_id.cc", config.SourceFile)
		assert.Equal(t, "out/Release", config.ObjectDirectory)
		assert.Equal(t, []string{"node"}, config.Libraries)
		assert.False(t, config.ArchiverEnabled())
	})

	t.Run("invalid file is still an error", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "nodebuild.yml")
		require.NoError(t, os.WriteFile(configPath, []byte(`version: "2.0"`), 0644))

		_, err := LoadOrDefault(configPath)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported version: 2.0")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  FileConfig
		wantErr string
	}{
		{
			name:    "unsupported version",
			config:  FileConfig{Version: "2.0"},
			wantErr: "unsupported version",
		},
		{
			name:    "empty library name",
			config:  FileConfig{Version: "1.0", Libraries: []string{"node", " "}},
			wantErr: "libraries[1]",
		},
		{
			name:    "platform with whitespace",
			config:  FileConfig{Version: "1.0", Platform: "linux x64"},
			wantErr: "invalid platform override",
		},
		{
			name:    "archiver without command",
			config:  FileConfig{Version: "1.0", Archiver: &ArchiverConfig{}},
			wantErr: "archiver.command is required",
		},
		{
			name:   "disabled archiver without command",
			config: FileConfig{Version: "1.0", Archiver: &ArchiverConfig{Disabled: true}},
		},
		{
			name:    "non redis registry",
			config:  FileConfig{Version: "1.0", Registry: &RegistryConfig{URL: "http://localhost"}},
			wantErr: "registry.url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRegistryURL_EnvOverride(t *testing.T) {
	config := &FileConfig{Version: "1.0", Registry: &RegistryConfig{URL: "redis://file:6379"}}

	t.Setenv(RegistryURLEnv, "")
	assert.Equal(t, "redis://file:6379", config.RegistryURL())

	t.Setenv(RegistryURLEnv, "redis://env:6379")
	assert.Equal(t, "redis://env:6379", config.RegistryURL())
}

func TestHasBuildContainerFlag(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want bool
	}{
		{"no args", nil, false},
		{"unrelated args", []string{"--verbose", "build"}, false},
		{"exact flag", []string{"--build-container"}, true},
		{"flag with value", []string{"--build-container=true"}, true},
		{"flag among others", []string{"-x", "--build-container", "y"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasBuildContainerFlag(tt.args))
		})
	}
}

func TestDetect(t *testing.T) {
	cfg := Detect([]string{"--build-container"}, "/src/node")

	assert.Equal(t, HostPlatformFor(runtime.GOOS), cfg.HostPlatform)
	assert.True(t, cfg.UseContainer)
	assert.Equal(t, runtime.NumCPU(), cfg.Parallelism)
	assert.Equal(t, "/src/node", cfg.WorkDir)
	assert.NoError(t, cfg.Validate())
}

func TestBuildConfigValidate(t *testing.T) {
	t.Run("zero parallelism", func(t *testing.T) {
		err := BuildConfig{HostPlatform: PlatformOther, Parallelism: 0}.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parallelism must be >= 1")
	})

	t.Run("linux without work dir", func(t *testing.T) {
		err := BuildConfig{HostPlatform: PlatformLinux, Parallelism: 4}.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "working directory is required")
	})
}

func TestHostPlatformFor(t *testing.T) {
	assert.Equal(t, PlatformLinux, HostPlatformFor("linux"))
	assert.Equal(t, PlatformOther, HostPlatformFor("darwin"))
	assert.Equal(t, PlatformOther, HostPlatformFor("windows"))
	assert.Equal(t, "linux", PlatformLinux.String())
	assert.Equal(t, "other", PlatformOther.String())
}
