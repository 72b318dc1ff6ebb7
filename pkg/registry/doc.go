// Package registry records finished node builds in Redis so their
// debug-symbol archives can be looked up by build identifier later.
//
// # Data Model
//
// Each build is stored as a hash keyed by its build identifier and indexed
// in a sorted set scored by creation time. A JSON copy of every saved
// record is published on the namespace's build events channel.
//
// Key patterns:
//
//	nodebuild:{namespace}:build:{build_id}   hash
//	nodebuild:{namespace}:builds             zset (score = created_at_ms)
//	nodebuild:{namespace}:build_events       pub/sub channel
//
// # Usage Example
//
//	opts, _ := redis.ParseURL("redis://localhost:6379/0")
//	client, err := registry.NewClient(opts, "default")
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	record, err := client.Get(ctx, "linux-x64-node-20240307-123456789")
//	if registry.IsNotFound(err) {
//		// never recorded
//	}
package registry
