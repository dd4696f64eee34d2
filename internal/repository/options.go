// ABOUTME: Write options for repository mutations.
// ABOUTME: Offline queues against the local cache; Merge selects set-merge.
package repository

type writeConfig struct {
	offline bool
	merge   bool
}

// WriteOption configures a single mutating operation.
type WriteOption func(*writeConfig)

// WithOffline queues the write against the local durable cache and
// returns without waiting for server confirmation. The write is not
// durable remotely until a later flush.
func WithOffline() WriteOption {
	return func(c *writeConfig) { c.offline = true }
}

// WithMerge makes Update perform a recursive merge instead of a
// top-level field replace: absent fields stay untouched, present fields
// (including nested object fields) are replaced, and the target document
// is created when missing.
func WithMerge() WriteOption {
	return func(c *writeConfig) { c.merge = true }
}

func applyOptions(opts []WriteOption) writeConfig {
	var c writeConfig
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
