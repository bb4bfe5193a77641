package env

import (
	"os"
	"strings"
)

// Prefix namespaces homeplate variables, matching the envconfig prefix in pkg/config.
const Prefix = "HOMEPLATE_"

// Get returns HOMEPLATE_<key>, then the bare key, then fallback.
// Used for settings read before the config package loads, such as the log format.
func Get(key, fallback string) string {
	key = strings.TrimPrefix(key, Prefix)
	if val := strings.TrimSpace(os.Getenv(Prefix + key)); val != "" {
		return val
	}
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}
