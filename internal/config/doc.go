// Package config loads, validates and watches the editor configuration.
//
// Configuration is a TOML file layered under INKWELL_* environment
// overrides. Loading never fails hard on content: a missing file yields the
// defaults, and out-of-range values are clamped back into their valid
// ranges so a bad edit degrades the session instead of breaking it. The
// Watcher reloads the file on change, debounced, and only hands loadable
// configurations to its handlers.
package config
