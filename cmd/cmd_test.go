package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/meetbot/meetbot"
)

// resetFlags restores every flag to its default so runs do not leak state
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}

// runCLI executes the command tree with args and returns stdout
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MEETBOT_LOGGING_LEVEL", "error")

	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestBotGetCommand(t *testing.T) {
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "cli-key", r.Header.Get("X-API-Key"))
		assert.True(t, strings.HasPrefix(r.Header.Get("User-Agent"), "meetbot-cli/"))

		id := strings.TrimPrefix(r.URL.Path, "/api/v1/bots/")
		w.Header().Set("Content-Type", "application/json")
		if id == "missing" {
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"message":"Bot not found"}`)
			return
		}
		io.WriteString(w, `{"id":"`+id+`","name":"Notetaker","status":"STARTED","meetingUrl":"https://meet.example/abc"}`)
	})

	t.Run("single bot as json", func(t *testing.T) {
		out, err := runCLI(t, "bot", "get", "bot-1", "--base-url", server.URL, "--api-key", "cli-key", "-o", "json")
		require.NoError(t, err)

		var bot meetbot.Bot
		require.NoError(t, json.Unmarshal([]byte(out), &bot))
		assert.Equal(t, "bot-1", bot.ID)
		assert.Equal(t, meetbot.BotStatusStarted, bot.Status)
	})

	t.Run("several bots with a failure", func(t *testing.T) {
		out, err := runCLI(t, "bot", "get", "bot-1", "missing", "bot-2", "--base-url", server.URL, "--api-key", "cli-key")
		require.Error(t, err)
		assert.Equal(t, "1 of 3 bots could not be retrieved", err.Error())

		assert.Contains(t, out, "2 bots (3 requested)")
		assert.Contains(t, out, "ID:       bot-1")
		assert.Contains(t, out, "ID:       bot-2")
		assert.Contains(t, out, "✗ 1 bot failed")
		assert.Contains(t, out, "missing: meetbot: retrieve bot: status 404: Bot not found")
	})
}

func TestBotCreateCommand(t *testing.T) {
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Notetaker", body["name"])
		assert.Equal(t, "AUDIO_ONLY", body["recordingMode"])
		assert.Equal(t, "2030-01-02T10:00:00Z", body["joinAt"])
		assert.Equal(t, map[string]any{"team": "sales", "priority": float64(2)}, body["metadata"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id":"bot-9","name":"Notetaker","status":"PENDING","meetingUrl":"https://zoom.us/j/1"}`)
	})

	out, err := runCLI(t, "bot", "create",
		"--base-url", server.URL, "--api-key", "cli-key",
		"--name", "Notetaker",
		"--meeting-url", "https://zoom.us/j/1",
		"--recording-mode", "audio_only",
		"--join-at", "2030-01-02T10:00:00Z",
		"--metadata", "team=sales",
		"--metadata", "priority=2",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Notetaker [PENDING]")
	assert.Contains(t, out, "ID:       bot-9")
}

func TestBotCommandsRequireAPIKey(t *testing.T) {
	var hits atomic.Int32
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	})

	_, err := runCLI(t, "bot", "remove", "bot-1", "--base-url", server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "an API key is required")
	assert.Equal(t, int32(0), hits.Load())
}

func TestValidationFailsBeforeRequest(t *testing.T) {
	var hits atomic.Int32
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	})

	_, err := runCLI(t, "bot", "create", "--base-url", server.URL, "--api-key", "k",
		"--name", "B", "--meeting-url", "not-a-url")
	require.Error(t, err)
	assert.True(t, meetbot.IsValidation(err))
	assert.Contains(t, err.Error(), "invalid URL format")
	assert.Equal(t, int32(0), hits.Load())
}

func TestAPIKeyListCommand(t *testing.T) {
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/api-keys/list", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[
			{"id":"key-1","name":"ci","userId":"u1","isActive":true,"permissions":["bots:write"]},
			{"id":"key-2","name":"old","userId":"u1","isActive":false}
		]`)
	})

	out, err := runCLI(t, "apikey", "list", "--user-id", "u1", "--base-url", server.URL,
		"--filter", `isActive and hasPermission("bots:write")`)
	require.NoError(t, err)
	assert.Contains(t, out, "Found 1 API key:")
	assert.Contains(t, out, "key-1")
	assert.NotContains(t, out, "key-2")
}

func TestAPIKeyListRejectsBadFilter(t *testing.T) {
	var hits atomic.Int32
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	})

	_, err := runCLI(t, "apikey", "list", "--user-id", "u1", "--base-url", server.URL, "--filter", `isActive and (`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter expression")
	assert.Equal(t, int32(0), hits.Load())
}

func TestTranscriptGetCommand(t *testing.T) {
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/transcripts/rec-1", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "3", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"id": "rec-1",
			"segments": [
				{"id":"s1","speaker":"Alice","startMs":61000,"endMs":62000,"text":"Hello"},
				{"id":"s2","speaker":"Bob","startMs":62000,"endMs":64000,"text":"Hi"},
				{"id":"s3","speaker":"Alice","startMs":64000,"endMs":65000,"text":"Budget?"}
			],
			"total": 9, "page": 2, "limit": 3, "hasMore": true
		}`)
	})

	out, err := runCLI(t, "transcript", "get", "rec-1", "--page", "2", "--limit", "3",
		"--base-url", server.URL, "--api-key", "k", "--filter", `spokenBy("alice")`)
	require.NoError(t, err)

	assert.Contains(t, out, "Transcript rec-1, page 2 (2 segments of 9)")
	assert.Contains(t, out, "[00:01:01] Alice: Hello")
	assert.Contains(t, out, "[00:01:04] Alice: Budget?")
	assert.NotContains(t, out, "Bob")
	assert.Contains(t, out, "use --page 3")
}

func TestMissingServiceURL(t *testing.T) {
	_, err := runCLI(t, "bot", "get", "bot-1", "--api-key", "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service.url is required")
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "meetbot dev (built unknown"))
}

func TestParseTimeFlag(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	got, err := parseTimeFlag("join-at", "2024-05-01T12:30:00Z", now)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)))

	got, err = parseTimeFlag("join-at", "90m", now)
	require.NoError(t, err)
	assert.True(t, got.Equal(now.Add(90*time.Minute)))

	got, err = parseTimeFlag("join-at", "2024-06-01", now)
	require.NoError(t, err)
	assert.Equal(t, 2024, got.Year())
	assert.Equal(t, time.June, got.Month())

	got, err = parseTimeFlag("join-at", "", now)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = parseTimeFlag("join-at", "tomorrow", now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --join-at")
}

func TestParseMetadata(t *testing.T) {
	metadata, err := parseMetadata([]string{"team=sales", "priority=2", "urgent=true", "note=a=b"})
	require.NoError(t, err)
	assert.Equal(t, meetbot.Metadata{
		"team":     "sales",
		"priority": float64(2),
		"urgent":   true,
		"note":     "a=b",
	}, metadata)

	metadata, err = parseMetadata(nil)
	require.NoError(t, err)
	assert.Nil(t, metadata)

	_, err = parseMetadata([]string{"novalue"})
	require.Error(t, err)
	_, err = parseMetadata([]string{"=x"})
	require.Error(t, err)
}

func TestFormatter(t *testing.T) {
	t.Run("api key table", func(t *testing.T) {
		now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
		past := now.Add(-time.Hour)

		var buf bytes.Buffer
		f := newFormatter(&buf, "text")
		f.now = func() time.Time { return now }

		require.NoError(t, f.APIKeys([]meetbot.APIKey{
			{ID: "k1", Name: "ci", IsActive: true},
			{ID: "k2", Name: "revoked", IsActive: false},
			{ID: "k3", Name: "a very long key name that does not fit", IsActive: true, ExpiresAt: &past},
		}))

		out := buf.String()
		assert.Contains(t, out, "Found 3 API keys:")
		assert.Regexp(t, `k1\s+ci\s+active\s+never`, out)
		assert.Regexp(t, `k2\s+revoked\s+revoked`, out)
		assert.Regexp(t, `k3\s+a very long key nam\.\.\.\s+expired`, out)
	})

	t.Run("empty key list as json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, newFormatter(&buf, "json").APIKeys(nil))
		assert.JSONEq(t, `[]`, buf.String())
	})

	t.Run("batch remove as json", func(t *testing.T) {
		var buf bytes.Buffer
		err := newFormatter(&buf, "json").RemovedBots(&meetbot.RemoveBotsResult{
			Requested: 2,
			Removed:   []string{"b1"},
			Failed: []meetbot.BatchError{{
				ID:  "b2",
				Err: &meetbot.Error{Kind: meetbot.KindNotFound, StatusCode: 404, Message: "gone", Op: "remove bot"},
			}},
		})
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"removed": ["b1"],
			"failed": [{"id": "b2", "error": "meetbot: remove bot: status 404: gone", "kind": "NOT_FOUND"}]
		}`, buf.String())
	})

	t.Run("acknowledgement falls back to default message", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, newFormatter(&buf, "text").Acknowledgement("Bot removed", &meetbot.Acknowledgement{}))
		assert.Equal(t, "✓ Bot removed\n", buf.String())
	})
}

func TestFormatOffset(t *testing.T) {
	assert.Equal(t, "00:00:00", formatOffset(0))
	assert.Equal(t, "00:01:01", formatOffset(61_500))
	assert.Equal(t, "02:00:05", formatOffset(7_205_000))
}

func TestParseVersion(t *testing.T) {
	v, err := parseVersion("v1.4.2")
	require.NoError(t, err)
	assert.Equal(t, "1.4.2", v.String())

	_, err = parseVersion("dev")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "development build")
}
