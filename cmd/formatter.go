package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/s0up4200/meetbot/meetbot"
)

// formatter writes command results as text or JSON
type formatter struct {
	out  io.Writer
	json bool
	now  func() time.Time
}

func newFormatter(out io.Writer, mode string) *formatter {
	return &formatter{out: out, json: mode == "json", now: time.Now}
}

func (f *formatter) writeJSON(v any) error {
	enc := json.NewEncoder(f.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return formatTime(*t)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// User prints a registered user
func (f *formatter) User(u *meetbot.User) error {
	if f.json {
		return f.writeJSON(u)
	}
	fmt.Fprintf(f.out, "✓ User created\n")
	fmt.Fprintf(f.out, "  ID:    %s\n", u.ID)
	fmt.Fprintf(f.out, "  Email: %s\n", u.Email)
	fmt.Fprintf(f.out, "  Name:  %s\n", u.Name)
	return nil
}

// CreatedAPIKey prints a new key including its one-time secret
func (f *formatter) CreatedAPIKey(k *meetbot.CreatedAPIKey) error {
	if f.json {
		return f.writeJSON(k)
	}
	fmt.Fprintf(f.out, "✓ API key created\n")
	fmt.Fprintf(f.out, "  ID:      %s\n", k.ID)
	fmt.Fprintf(f.out, "  Name:    %s\n", k.Name)
	fmt.Fprintf(f.out, "  Key:     %s\n", k.Key)
	fmt.Fprintf(f.out, "  Expires: %s\n", formatTimePtr(k.ExpiresAt))
	if len(k.Permissions) > 0 {
		fmt.Fprintf(f.out, "  Permissions: %s\n", strings.Join(k.Permissions, ", "))
	}
	fmt.Fprintf(f.out, "\nStore the key now, it is not shown again.\n")
	return nil
}

// APIKeys prints a key listing as a table
func (f *formatter) APIKeys(keys []meetbot.APIKey) error {
	if f.json {
		if keys == nil {
			keys = []meetbot.APIKey{}
		}
		return f.writeJSON(keys)
	}
	if len(keys) == 0 {
		fmt.Fprintln(f.out, "No API keys found")
		return nil
	}

	now := f.now()
	fmt.Fprintf(f.out, "Found %s:\n\n", plural(len(keys), "API key"))
	fmt.Fprintln(f.out, strings.Repeat("━", 85))
	fmt.Fprintf(f.out, "%-24s %-24s %-9s %-16s %s\n", "ID", "NAME", "STATUS", "LAST USED", "EXPIRES")
	fmt.Fprintln(f.out, strings.Repeat("━", 85))

	for _, k := range keys {
		status := "active"
		switch {
		case k.IsExpired(now):
			status = "expired"
		case !k.IsActive:
			status = "revoked"
		}

		name := k.Name
		if len(name) > 22 {
			name = name[:19] + "..."
		}
		fmt.Fprintf(f.out, "%-24s %-24s %-9s %-16s %s\n", k.ID, name, status, formatTimePtr(k.LastUsedAt), formatTimePtr(k.ExpiresAt))
	}
	return nil
}

// Acknowledgement prints the outcome of a delete-style call
func (f *formatter) Acknowledgement(what string, ack *meetbot.Acknowledgement) error {
	if f.json {
		return f.writeJSON(ack)
	}
	message := ack.Message
	if message == "" {
		message = what
	}
	fmt.Fprintf(f.out, "✓ %s\n", message)
	return nil
}

// Bot prints a single bot record
func (f *formatter) Bot(b *meetbot.Bot) error {
	if f.json {
		return f.writeJSON(b)
	}
	f.writeBot(b, "╰")
	return nil
}

func (f *formatter) writeBot(b *meetbot.Bot, prefix string) {
	fmt.Fprintf(f.out, "%s── %s [%s]\n", prefix, b.Name, b.Status)

	indent := "│   "
	if prefix == "╰" {
		indent = "    "
	}
	fmt.Fprintf(f.out, "%sID:       %s\n", indent, b.ID)
	fmt.Fprintf(f.out, "%sMeeting:  %s\n", indent, b.MeetingURL)
	if b.Platform != "" {
		fmt.Fprintf(f.out, "%sPlatform: %s\n", indent, b.Platform)
	}
	if b.RecordingMode != "" {
		fmt.Fprintf(f.out, "%sMode:     %s\n", indent, b.RecordingMode)
	}
	if b.JoinAt != nil {
		fmt.Fprintf(f.out, "%sJoins:    %s\n", indent, formatTime(*b.JoinAt))
	}
	fmt.Fprintf(f.out, "%sCreated:  %s\n", indent, formatTime(b.CreatedAt))
}

// Bots prints a batch retrieve result
func (f *formatter) Bots(result *meetbot.RetrieveBotsResult) error {
	if f.json {
		return f.writeJSON(struct {
			Bots   []*meetbot.Bot  `json:"bots"`
			Failed []failureOutput `json:"failed,omitempty"`
		}{Bots: nonNil(result.Bots), Failed: failures(result.Failed)})
	}

	fmt.Fprintf(f.out, "\n%s (%d requested):\n\n", plural(len(result.Bots), "bot"), result.Requested)
	for i, b := range result.Bots {
		prefix := "├"
		if i == len(result.Bots)-1 {
			prefix = "╰"
		}
		f.writeBot(b, prefix)
	}
	f.writeFailures(result.Failed)
	return nil
}

// RemovedBots prints a batch remove result
func (f *formatter) RemovedBots(result *meetbot.RemoveBotsResult) error {
	if f.json {
		return f.writeJSON(struct {
			Removed []string        `json:"removed"`
			Failed  []failureOutput `json:"failed,omitempty"`
		}{Removed: nonNil(result.Removed), Failed: failures(result.Failed)})
	}

	fmt.Fprintf(f.out, "✓ Removed %s of %d\n", plural(len(result.Removed), "bot"), result.Requested)
	f.writeFailures(result.Failed)
	return nil
}

func (f *formatter) writeFailures(failed []meetbot.BatchError) {
	if len(failed) == 0 {
		return
	}
	fmt.Fprintf(f.out, "\n✗ %s failed:\n", plural(len(failed), "bot"))
	for _, e := range failed {
		fmt.Fprintf(f.out, "  • %s: %v\n", e.ID, e.Err)
	}
}

type failureOutput struct {
	ID    string `json:"id"`
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func failures(failed []meetbot.BatchError) []failureOutput {
	out := make([]failureOutput, 0, len(failed))
	for _, e := range failed {
		fo := failureOutput{ID: e.ID, Error: e.Err.Error()}
		var apiErr *meetbot.Error
		if errors.As(e.Err, &apiErr) {
			fo.Kind = string(apiErr.Kind)
		}
		out = append(out, fo)
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Transcript prints one page of a transcript. segments may be a filtered subset.
func (f *formatter) Transcript(t *meetbot.Transcript, segments []meetbot.TranscriptSegment) error {
	if f.json {
		page := *t
		page.Segments = nonNil(segments)
		return f.writeJSON(page)
	}

	fmt.Fprintf(f.out, "Transcript %s, page %d (%s of %d)\n", t.ID, t.Page, plural(len(segments), "segment"), t.Total)
	fmt.Fprintln(f.out, strings.Repeat("─", 60))
	for _, s := range segments {
		speaker := s.Speaker
		if speaker == "" {
			speaker = "unknown"
		}
		fmt.Fprintf(f.out, "[%s] %s: %s\n", formatOffset(s.StartMs), speaker, s.Text)
	}
	if t.HasMore {
		fmt.Fprintf(f.out, "\nMore segments available: use --page %d\n", t.Page+1)
	}
	return nil
}

// formatOffset renders milliseconds from meeting start as HH:MM:SS
func formatOffset(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	return fmt.Sprintf("%02d:%02d:%02d", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
}
