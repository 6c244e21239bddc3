// Package env provides raw environment lookups for the few spots that run
// before config loading, such as logger bootstrap.
package env

import "os"

// Get returns the named environment variable, or fallback when unset or empty.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
