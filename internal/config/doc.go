// Package config loads git-context's own settings.
//
// Settings are not stored in a workspace; they shape how every workspace is
// handled:
//
//	git: git                 # binary used to create backends
//	storage_prefix: .git-    # storage directory is <prefix><context>
//	lock_timeout: 10s        # how long mutating commands wait for the lock
//
// They are read with koanf from ~/.config/git-context/config.yaml (or the
// file given with --config) and can be overridden per invocation with
// GIT_CONTEXT_GIT, GIT_CONTEXT_STORAGE_PREFIX and GIT_CONTEXT_LOCK_TIMEOUT.
package config
