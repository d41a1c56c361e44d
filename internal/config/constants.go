package config

// DefaultDatabasePath is the default path for the import-run audit database.
const DefaultDatabasePath = "./partbridge.db"
