package docker

import (
	"context"
	"fmt"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/client"
)

// ImageInspector is the subset of the Docker API the preflight needs
type ImageInspector interface {
	ImageInspectWithRaw(ctx context.Context, imageID string) (types.ImageInspect, []byte, error)
}

// ImageStatus describes a locally available image
type ImageStatus struct {
	Exists  bool
	ID      string
	Created string
}

// InspectImage reports whether tag exists in the local image store.
// A missing image is not an error.
func InspectImage(ctx context.Context, api ImageInspector, tag string) (ImageStatus, error) {
	inspect, _, err := api.ImageInspectWithRaw(ctx, tag)
	if err != nil {
		if client.IsErrNotFound(err) {
			return ImageStatus{Exists: false}, nil
		}
		return ImageStatus{}, fmt.Errorf("failed to inspect image '%s': %w", tag, err)
	}

	return ImageStatus{
		Exists:  true,
		ID:      inspect.ID,
		Created: inspect.Created,
	}, nil
}

// ShortID trims the sha256: prefix and truncates an image ID for display
func ShortID(id string) string {
	const prefix = "sha256:"
	if len(id) > len(prefix) && id[:len(prefix)] == prefix {
		id = id[len(prefix):]
	}
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
