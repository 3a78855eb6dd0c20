// Package identity derives a stable client-side identifier for upstream
// records. The backend is inconsistent about which field carries the primary
// key, and some shapes carry none at all.
package identity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Identity is a resolved identifier tagged with its origin, so the
// synthesized fallback path stays visible and testable.
type Identity struct {
	Value       string
	Synthesized bool
}

// Resolve picks an identifier from a raw record with fixed precedence:
// explicit client id, then a backend primary key alias, then a freshly
// synthesized value. Synthesis is a last resort for records the backend
// cannot identify.
func Resolve(raw map[string]any) Identity {
	for _, key := range []string{"clientId", "_id", "id", "companyId"} {
		if v, ok := stringField(raw, key); ok {
			return Identity{Value: v}
		}
	}
	return Identity{Value: Synthesize(), Synthesized: true}
}

// Synthesize returns an identifier unique for the lifetime of the session:
// a nanosecond timestamp plus a random uuid fragment. There is no handling
// for a later backend-issued id colliding with it; the next full refetch
// replaces synthesized records wholesale.
func Synthesize() string {
	return fmt.Sprintf("local-%d-%s", time.Now().UnixNano(), uuid.NewString()[:8])
}

// IsSynthesized reports whether id came from Synthesize.
func IsSynthesized(id string) bool {
	return strings.HasPrefix(id, "local-")
}

func stringField(raw map[string]any, key string) (string, bool) {
	v, ok := raw[key]
	if !ok {
		return "", false
	}
	switch t := v.(type) {
	case string:
		if strings.TrimSpace(t) == "" {
			return "", false
		}
		return t, true
	case float64:
		return fmt.Sprintf("%.0f", t), true
	case int:
		return fmt.Sprintf("%d", t), true
	case int64:
		return fmt.Sprintf("%d", t), true
	default:
		return "", false
	}
}
