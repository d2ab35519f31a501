package web

import "github.com/mr30303/taxiDriver/internal/store"

// Config represents the web server configuration
type Config struct {
	Host       string
	Port       int
	Collection string
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Host:       "localhost",
		Port:       8080,
		Collection: store.DefaultCollection,
	}
}
