package meetbot

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationHappensBeforeNetwork(t *testing.T) {
	ctx := context.Background()
	joinAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	leaveAt := joinAt.Add(-time.Minute)

	tests := []struct {
		name   string
		call   func(c *Client) error
		field  string
		errMsg string
	}{
		{
			name: "create user without email",
			call: func(c *Client) error {
				_, err := c.CreateUser(ctx, CreateUserRequest{Name: "Ada"})
				return err
			},
			field:  "email",
			errMsg: "email is required",
		},
		{
			name: "create user with malformed email",
			call: func(c *Client) error {
				_, err := c.CreateUser(ctx, CreateUserRequest{Email: "ada.example.com", Name: "Ada"})
				return err
			},
			field:  "email",
			errMsg: "valid email address",
		},
		{
			name: "create user without name",
			call: func(c *Client) error {
				_, err := c.CreateUser(ctx, CreateUserRequest{Email: "ada@example.com", Name: "  "})
				return err
			},
			field:  "name",
			errMsg: "name is required",
		},
		{
			name: "create API key without user",
			call: func(c *Client) error {
				_, err := c.CreateAPIKey(ctx, CreateAPIKeyRequest{Name: "ci"})
				return err
			},
			field:  "userId",
			errMsg: "userId is required",
		},
		{
			name: "create API key without name",
			call: func(c *Client) error {
				_, err := c.CreateAPIKey(ctx, CreateAPIKeyRequest{UserID: "u1"})
				return err
			},
			field:  "name",
			errMsg: "name is required",
		},
		{
			name: "create API key with long name",
			call: func(c *Client) error {
				_, err := c.CreateAPIKey(ctx, CreateAPIKeyRequest{UserID: "u1", Name: strings.Repeat("a", 101)})
				return err
			},
			field:  "name",
			errMsg: "100 characters",
		},
		{
			name: "list API keys without user",
			call: func(c *Client) error {
				_, err := c.ListAPIKeys(ctx, "")
				return err
			},
			field:  "userId",
			errMsg: "userId is required",
		},
		{
			name: "revoke API key without id",
			call: func(c *Client) error {
				_, err := c.RevokeAPIKey(ctx, " ")
				return err
			},
			field:  "keyId",
			errMsg: "keyId is required",
		},
		{
			name: "create bot without credential",
			call: func(c *Client) error {
				_, err := c.CreateBot(ctx, "", CreateBotRequest{Name: "B", MeetingURL: "https://meet.example/abc"})
				return err
			},
			field:  "apiKey",
			errMsg: "apiKey is required",
		},
		{
			name: "create bot with whitespace credential",
			call: func(c *Client) error {
				_, err := c.CreateBot(ctx, " \t ", CreateBotRequest{Name: "B", MeetingURL: "https://meet.example/abc"})
				return err
			},
			field:  "apiKey",
			errMsg: "must not be blank",
		},
		{
			name: "create bot without name",
			call: func(c *Client) error {
				_, err := c.CreateBot(ctx, testAPIKey, CreateBotRequest{MeetingURL: "https://meet.example/abc"})
				return err
			},
			field:  "name",
			errMsg: "name is required",
		},
		{
			name: "create bot without meeting URL",
			call: func(c *Client) error {
				_, err := c.CreateBot(ctx, testAPIKey, CreateBotRequest{Name: "B"})
				return err
			},
			field:  "meetingUrl",
			errMsg: "meetingUrl is required",
		},
		{
			name: "create bot with malformed meeting URL",
			call: func(c *Client) error {
				_, err := c.CreateBot(ctx, testAPIKey, CreateBotRequest{Name: "B", MeetingURL: "not-a-url"})
				return err
			},
			field:  "meetingUrl",
			errMsg: "invalid URL format",
		},
		{
			name: "create bot with unknown recording mode",
			call: func(c *Client) error {
				_, err := c.CreateBot(ctx, testAPIKey, CreateBotRequest{
					Name:          "B",
					MeetingURL:    "https://meet.example/abc",
					RecordingMode: "FULL_HD",
				})
				return err
			},
			field:  "recordingMode",
			errMsg: "SPEAKER_VIEW, GALLERY_VIEW, AUDIO_ONLY",
		},
		{
			name: "create bot leaving before joining",
			call: func(c *Client) error {
				_, err := c.CreateBot(ctx, testAPIKey, CreateBotRequest{
					Name:       "B",
					MeetingURL: "https://meet.example/abc",
					JoinAt:     &joinAt,
					LeaveAt:    &leaveAt,
				})
				return err
			},
			field:  "leaveAt",
			errMsg: "leaveAt must be after joinAt",
		},
		{
			name: "retrieve bot without id",
			call: func(c *Client) error {
				_, err := c.RetrieveBot(ctx, testAPIKey, "")
				return err
			},
			field:  "botId",
			errMsg: "botId is required",
		},
		{
			name: "retrieve bot without credential",
			call: func(c *Client) error {
				_, err := c.RetrieveBot(ctx, "", "bot-1")
				return err
			},
			field:  "apiKey",
			errMsg: "apiKey is required",
		},
		{
			name: "remove bot without id",
			call: func(c *Client) error {
				_, err := c.RemoveBot(ctx, testAPIKey, "")
				return err
			},
			field:  "botId",
			errMsg: "botId is required",
		},
		{
			name: "retrieve transcript without id",
			call: func(c *Client) error {
				_, err := c.RetrieveTranscript(ctx, testAPIKey, "", TranscriptOptions{})
				return err
			},
			field:  "id",
			errMsg: "id is required",
		},
		{
			name: "retrieve transcript with negative page",
			call: func(c *Client) error {
				_, err := c.RetrieveTranscript(ctx, testAPIKey, "rec-1", TranscriptOptions{Page: -1})
				return err
			},
			field:  "page",
			errMsg: "page must be a positive integer",
		},
		{
			name: "retrieve transcript with negative limit",
			call: func(c *Client) error {
				_, err := c.RetrieveTranscript(ctx, testAPIKey, "rec-1", TranscriptOptions{Limit: -5})
				return err
			},
			field:  "limit",
			errMsg: "limit must be a positive integer",
		},
		{
			name: "batch retrieve with blank id",
			call: func(c *Client) error {
				_, err := c.RetrieveBots(ctx, testAPIKey, []string{"bot-1", ""})
				return err
			},
			field:  "botIds[1]",
			errMsg: "botIds[1] is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, spy := newSpyClient(t)

			err := tt.call(client)
			require.Error(t, err)

			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, KindValidation, apiErr.Kind)
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
			assert.Equal(t, tt.field, apiErr.Details["field"])
			assert.Contains(t, apiErr.Message, tt.errMsg)
			assert.True(t, errors.Is(err, ErrValidation))

			assert.Equal(t, int32(0), spy.calls.Load(), "no request may be sent for invalid input")
		})
	}
}

func TestValidInputReachesNetwork(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		call func(c *Client) error
	}{
		{
			name: "API key name at the limit",
			call: func(c *Client) error {
				_, err := c.CreateAPIKey(ctx, CreateAPIKeyRequest{UserID: "u1", Name: strings.Repeat("a", MaxAPIKeyNameLength)})
				return err
			},
		},
		{
			name: "multibyte API key name counted in characters",
			call: func(c *Client) error {
				_, err := c.CreateAPIKey(ctx, CreateAPIKeyRequest{UserID: "u1", Name: strings.Repeat("é", MaxAPIKeyNameLength)})
				return err
			},
		},
		{
			name: "bot with recording mode",
			call: func(c *Client) error {
				_, err := c.CreateBot(ctx, testAPIKey, CreateBotRequest{
					Name:          "B",
					MeetingURL:    "https://zoom.us/j/123456",
					RecordingMode: RecordingModeAudioOnly,
				})
				return err
			},
		},
		{
			name: "user on a single-label domain",
			call: func(c *Client) error {
				_, err := c.CreateUser(ctx, CreateUserRequest{Email: "user@localhost", Name: "Ada"})
				return err
			},
		},
		{
			name: "shortest email",
			call: func(c *Client) error {
				_, err := c.CreateUser(ctx, CreateUserRequest{Email: "a@b", Name: "Ada"})
				return err
			},
		},
		{
			name: "transcript with default pagination",
			call: func(c *Client) error {
				_, err := c.RetrieveTranscript(ctx, testAPIKey, "rec-1", TranscriptOptions{})
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, spy := newSpyClient(t)

			err := tt.call(client)
			require.Error(t, err, "spy transport fails every request")
			assert.False(t, IsValidation(err))
			assert.Equal(t, int32(1), spy.calls.Load())
		})
	}
}

func TestLooksLikeEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"ada@example.com", true},
		{"user@localhost", true},
		{"user@intranet", true},
		{"a@b", true},
		{"first.last+tag@sub.example.co.uk", true},
		{"ada.example.com", false},
		{"@example.com", false},
		{"ada@", false},
		{"ada@b@c", false},
		{"ada lovelace@example.com", false},
		{"ada@example.com\n", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, looksLikeEmail(tt.email))
		})
	}
}

func TestIsAbsoluteURL(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"https://meet.google.com/abc-defg-hij", true},
		{"https://teams.microsoft.com/l/meetup-join/19%3ameeting", true},
		{"http://localhost:8080/room", true},
		{"not-a-url", false},
		{"meet.google.com/abc", false},
		{"https://", false},
		{"://missing-scheme", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, isAbsoluteURL(tt.raw))
		})
	}
}
