package version

import "strings"

// These values are injected at build time via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String returns compact human-readable version info.
func String() string {
	parts := make([]string, 0, 3)
	for _, pair := range [][2]string{{"", Version}, {"commit=", Commit}, {"date=", Date}} {
		if value := strings.TrimSpace(pair[1]); value != "" {
			parts = append(parts, pair[0]+value)
		}
	}
	return strings.Join(parts, " ")
}
