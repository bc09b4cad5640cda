// Package constants provides shared constants used across the application
// to avoid circular dependencies between packages.
package constants

import "time"

// AppName is used for the data directory and the config directory.
const AppName = "pve-cli"

// Timeout constants used across the application
const (
	// DefaultAPITimeout is the timeout for a single Proxmox VE API request
	DefaultAPITimeout = 60 * time.Second
	// DefaultSchemaTimeout is the timeout for downloading the API schema document
	DefaultSchemaTimeout = 120 * time.Second
	// DefaultTaskPoll is the interval between task status checks with --wait
	DefaultTaskPoll = 1 * time.Second
	// DefaultTaskTimeout bounds the total time spent waiting for a task
	DefaultTaskTimeout = 30 * time.Second
)

// Application defaults
const (
	DefaultPort = 8006

	// HistoryLimit is the number of lines kept in the history file
	HistoryLimit = 100

	// MaxAliasDepth bounds nested alias expansion
	MaxAliasDepth = 16
)

// File names inside the data directory
const (
	AliasFileName   = "alias.txt"
	HistoryFileName = "history.txt"
	TokenFileName   = "token"
	CachePrefix     = "api-cache_"
)
