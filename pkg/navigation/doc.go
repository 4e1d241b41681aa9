// Package navigation holds the console's page definitions used by the
// routes source, plus an optional TOML file of extra pages that can be
// hot-reloaded while the server runs.
package navigation
