package registry

import "fmt"

// BuildKey returns the Redis key for a build record.
// Pattern: nodebuild:{namespace}:build:{build_id}
func BuildKey(namespace, buildID string) string {
	return fmt.Sprintf("nodebuild:%s:build:%s", namespace, buildID)
}

// BuildIndexKey returns the Redis key of the time-ordered build index.
// Pattern: nodebuild:{namespace}:builds
func BuildIndexKey(namespace string) string {
	return fmt.Sprintf("nodebuild:%s:builds", namespace)
}

// BuildEventsChannel returns the Pub/Sub channel for build events.
// Pattern: nodebuild:{namespace}:build_events
func BuildEventsChannel(namespace string) string {
	return fmt.Sprintf("nodebuild:%s:build_events", namespace)
}
