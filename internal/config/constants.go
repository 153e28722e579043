package config

// Default paths
const (
	// DefaultDatabasePath is the default path for the library database
	DefaultDatabasePath = "./libris.db"

	// DefaultCoversDir is the default directory for materialized cover files
	DefaultCoversDir = "./covers"
)
