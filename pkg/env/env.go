package env

import "os"

// Prefix namespaces every service environment variable.
const Prefix = "CREDEAT_"

// Get resolves an environment variable, preferring the service-prefixed name
// over the bare one, and falls back when neither is set. Callers pass the
// bare key: Get("LOG_FORMAT", ...) reads CREDEAT_LOG_FORMAT first.
func Get(key, fallback string) string {
	if val := os.Getenv(Prefix + key); val != "" {
		return val
	}
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
