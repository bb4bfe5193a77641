package instance

import (
	"os"
	"strings"
)

// GetID returns the replica identifier used in logs. INSTANCE_ID wins, then the platform
// dyno name, then the host name.
func GetID() string {
	for _, key := range []string{"INSTANCE_ID", "DYNO"} {
		if id := strings.TrimSpace(os.Getenv(key)); id != "" {
			return id
		}
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "api-0"
}
