package db

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/vvka-141/sparkify-dwh/pkg/dwh"
)

// BuildConnectionString renders the libpq keyword/value connection string.
//
// The five cluster values always come first and in this order:
//
//	host=... dbname=... user=... password=... port=...
//
// followed by sslmode, application_name and connect_timeout when set.
func BuildConnectionString(config *dwh.ClusterConfig) string {
	pairs := []struct{ key, value string }{
		{"host", config.Host},
		{"dbname", config.DBName},
		{"user", config.User},
		{"password", config.Password},
		{"port", strconv.Itoa(config.Port)},
	}

	if config.SSLMode != "" {
		pairs = append(pairs, struct{ key, value string }{"sslmode", config.SSLMode})
	}
	if config.AppName != "" {
		pairs = append(pairs, struct{ key, value string }{"application_name", config.AppName})
	}
	if config.ConnectTimeout > 0 {
		pairs = append(pairs, struct{ key, value string }{"connect_timeout", strconv.Itoa(timeoutSeconds(config.ConnectTimeout))})
	}

	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, p.key+"="+quoteValue(p.value))
	}
	return strings.Join(parts, " ")
}

// RedactedConnectionString is BuildConnectionString with the password masked,
// for logs.
func RedactedConnectionString(config *dwh.ClusterConfig) string {
	masked := *config
	if masked.Password != "" {
		masked.Password = "xxxxxxx"
	}
	return BuildConnectionString(&masked)
}

// timeoutSeconds rounds d up to whole seconds. connect_timeout=0 means no
// timeout, so a positive duration never renders as 0.
func timeoutSeconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}

// quoteValue applies libpq quoting: empty values and values containing
// spaces, quotes or backslashes are wrapped in single quotes with ' and \ escaped.
func quoteValue(v string) string {
	if v != "" && !strings.ContainsAny(v, " '\\\t\n") {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}
