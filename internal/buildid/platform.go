package buildid

import "runtime"

// CurrentPlatform returns the host platform tag, e.g. "linux-x64" or "macOS-arm64"
func CurrentPlatform() string {
	return PlatformTag(runtime.GOOS, runtime.GOARCH)
}

// PlatformTag maps Go's GOOS/GOARCH names onto the tags used in build ids
func PlatformTag(goos, goarch string) string {
	osTag := goos
	switch goos {
	case "darwin":
		osTag = "macOS"
	case "windows":
		osTag = "win"
	}

	arch := goarch
	switch goarch {
	case "amd64":
		arch = "x64"
	case "386":
		arch = "x86"
	}

	return osTag + "-" + arch
}
