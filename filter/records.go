package filter

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/s0up4200/meetbot/meetbot"
)

// Env is the evaluation environment for one record: its fields plus
// record-bound helper functions. Name identifies the record in errors.
type Env struct {
	Name   string
	Fields map[string]any
	Funcs  map[string]any
}

// APIKeyEnv exposes an API key to expressions.
//
// Fields: id, name, userId, isActive, permissions, createdAt, expiresAt,
// lastUsedAt, hasExpiry, expired, used. Helpers: hasPermission(p).
func APIKeyEnv(key meetbot.APIKey, now time.Time) Env {
	return Env{
		Name: fmt.Sprintf("API key %s", key.ID),
		Fields: map[string]any{
			"id":          key.ID,
			"name":        key.Name,
			"userId":      key.UserID,
			"isActive":    key.IsActive,
			"permissions": key.Permissions,
			"createdAt":   key.CreatedAt,
			"expiresAt":   derefTime(key.ExpiresAt),
			"lastUsedAt":  derefTime(key.LastUsedAt),
			"hasExpiry":   key.ExpiresAt != nil,
			"expired":     key.IsExpired(now),
			"used":        key.LastUsedAt != nil,
		},
		Funcs: map[string]any{
			"hasPermission": hasPermissionFunc(key.Permissions),
		},
	}
}

// SegmentEnv exposes a transcript segment to expressions.
//
// Fields: id, speaker, text, startMs, endMs, durationMs. Helpers: spokenBy(name), says(text).
func SegmentEnv(segment meetbot.TranscriptSegment) Env {
	return Env{
		Name: fmt.Sprintf("segment %s", segment.ID),
		Fields: map[string]any{
			"id":         segment.ID,
			"speaker":    segment.Speaker,
			"text":       segment.Text,
			"startMs":    segment.StartMs,
			"endMs":      segment.EndMs,
			"durationMs": segment.Duration().Milliseconds(),
		},
		Funcs: map[string]any{
			"spokenBy": func(name string) bool {
				return strings.EqualFold(segment.Speaker, name)
			},
			"says": func(phrase string) bool {
				return strings.Contains(strings.ToLower(segment.Text), strings.ToLower(phrase))
			},
		},
	}
}

func hasPermissionFunc(permissions []string) func(string) bool {
	lower := make([]string, len(permissions))
	for i, p := range permissions {
		lower[i] = strings.ToLower(p)
	}
	return func(permission string) bool {
		return slices.Contains(lower, strings.ToLower(permission))
	}
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
