package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/s0up4200/meetbot/filter"
	"github.com/s0up4200/meetbot/meetbot"
)

// parseTimeFlag accepts RFC 3339, a plain date, or a duration from now such as 72h
func parseTimeFlag(name, value string, now time.Time) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, value, time.Local); err == nil {
		return &t, nil
	}
	if d, err := time.ParseDuration(value); err == nil {
		t := now.Add(d)
		return &t, nil
	}

	return nil, fmt.Errorf("invalid --%s %q: use RFC 3339 (2024-05-01T10:00:00Z), a date (2024-05-01) or a duration (90m)", name, value)
}

// parseMetadata turns key=value pairs into bot metadata. Values that are valid
// JSON (numbers, booleans, objects) keep their type, anything else is a string.
func parseMetadata(pairs []string) (meetbot.Metadata, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	metadata := make(meetbot.Metadata, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --metadata %q: expected key=value", pair)
		}

		var decoded any
		if err := json.Unmarshal([]byte(value), &decoded); err == nil {
			metadata[key] = decoded
			continue
		}
		metadata[key] = value
	}
	return metadata, nil
}

// compileFilter resolves @name references and compiles the expression.
// An empty expression yields a nil filter, which matches everything.
func compileFilter(expression string) (*filter.Filter, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, nil
	}

	resolved, err := cfg.ResolveFilter(expression)
	if err != nil {
		return nil, err
	}

	f, err := filter.NewCompiler().Compile(resolved)
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}

	logger.Debug().Str("filter", f.Expression()).Msg("Filter compiled")
	return f, nil
}
