package core

import "time"

// Defaults for the Delicious v1 API.
const (
	DefaultEndpoint    = "https://api.del.icio.us/v1"
	DefaultHTTPTimeout = 60 * time.Second
)

// Local storage defaults
const (
	DefaultDatabase = "bookmarks.db"
	// CheckpointFile is created in the user's home directory.
	CheckpointFile = ".deliciousbackup"
	// AppName scopes the per-user config directory.
	AppName = "deliciousbackup"
)

// HTTP client configuration
const (
	UserAgent = "deliciousbackup/0.1"
)
