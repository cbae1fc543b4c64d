package meetbot

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// BotStatus represents the lifecycle status of a bot
type BotStatus string

const (
	// BotStatusPending indicates the bot is queued and has not joined yet
	BotStatusPending BotStatus = "PENDING"
	// BotStatusStarted indicates the bot is in the meeting
	BotStatusStarted BotStatus = "STARTED"
	// BotStatusCompleted indicates the bot left and the recording finished
	BotStatusCompleted BotStatus = "COMPLETED"
	// BotStatusFailed indicates the bot could not complete its task
	BotStatusFailed BotStatus = "FAILED"
	// BotStatusStopped indicates the bot was removed before completion
	BotStatusStopped BotStatus = "STOPPED"
)

// IsValid checks if the status is one of the known values
func (s BotStatus) IsValid() bool {
	switch s {
	case BotStatusPending, BotStatusStarted, BotStatusCompleted, BotStatusFailed, BotStatusStopped:
		return true
	default:
		return false
	}
}

// IsTerminal checks if the bot will not change status again
func (s BotStatus) IsTerminal() bool {
	return s == BotStatusCompleted || s == BotStatusFailed || s == BotStatusStopped
}

// RecordingMode selects what the bot records
type RecordingMode string

const (
	// RecordingModeSpeakerView records the active speaker
	RecordingModeSpeakerView RecordingMode = "SPEAKER_VIEW"
	// RecordingModeGalleryView records all participants
	RecordingModeGalleryView RecordingMode = "GALLERY_VIEW"
	// RecordingModeAudioOnly records audio without video
	RecordingModeAudioOnly RecordingMode = "AUDIO_ONLY"
)

// RecordingModes lists every accepted recording mode
var RecordingModes = []RecordingMode{
	RecordingModeSpeakerView,
	RecordingModeGalleryView,
	RecordingModeAudioOnly,
}

// IsValid checks if the recording mode is one of the known values
func (m RecordingMode) IsValid() bool {
	for _, known := range RecordingModes {
		if m == known {
			return true
		}
	}
	return false
}

// ParseRecordingMode parses a recording mode case-insensitively
func ParseRecordingMode(s string) (RecordingMode, error) {
	m := RecordingMode(strings.ToUpper(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", fmt.Errorf("unknown recording mode %q", s)
	}
	return m, nil
}

// Metadata is an opaque JSON object passed through to the service.
// Values must be JSON-encodable; the client never interprets them.
type Metadata map[string]any

// CreateUserRequest holds the fields for registering a user
type CreateUserRequest struct {
	Email string `json:"email" validate:"required,looseemail"`
	Name  string `json:"name" validate:"required"`
}

// User represents a registered user
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Raw is the exact body the service returned for this record
	Raw json.RawMessage `json:"-"`
}

// CreateAPIKeyRequest holds the fields for issuing an API key
type CreateAPIKeyRequest struct {
	UserID      string     `json:"userId" validate:"required"`
	Name        string     `json:"name" validate:"required,max=100"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	Permissions []string   `json:"permissions,omitempty"`
}

// CreatedAPIKey is returned once on creation and is the only place the secret appears
type CreatedAPIKey struct {
	ID          string     `json:"id"`
	Key         string     `json:"key"`
	Name        string     `json:"name"`
	UserID      string     `json:"userId"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	Permissions []string   `json:"permissions,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`

	// Raw is the exact body the service returned for this record
	Raw json.RawMessage `json:"-"`
}

// APIKey is an API key as returned by the list endpoint, without its secret
type APIKey struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	UserID      string     `json:"userId"`
	IsActive    bool       `json:"isActive"`
	LastUsedAt  *time.Time `json:"lastUsedAt,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	Permissions []string   `json:"permissions,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`

	// Raw is the exact body the service returned for this record
	Raw json.RawMessage `json:"-"`
}

// IsExpired checks if the key has an expiry in the past relative to now
func (k *APIKey) IsExpired(now time.Time) bool {
	return k.ExpiresAt != nil && !k.ExpiresAt.After(now)
}

// listAPIKeysRequest is the body of the list endpoint
type listAPIKeysRequest struct {
	UserID string `json:"userId"`
}

// CreateBotRequest holds the fields for sending a bot into a meeting
type CreateBotRequest struct {
	Name          string        `json:"name" validate:"required"`
	MeetingURL    string        `json:"meetingUrl" validate:"required,meetingurl"`
	Title         string        `json:"title,omitempty"`
	RecordingMode RecordingMode `json:"recordingMode,omitempty" validate:"omitempty,recordingmode"`
	JoinAt        *time.Time    `json:"joinAt,omitempty"`
	LeaveAt       *time.Time    `json:"leaveAt,omitempty"`
	Metadata      Metadata      `json:"metadata,omitempty"`
}

// Bot represents a meeting bot
type Bot struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	MeetingURL    string        `json:"meetingUrl"`
	Title         string        `json:"title,omitempty"`
	RecordingMode RecordingMode `json:"recordingMode,omitempty"`
	Platform      string        `json:"platform"`
	APIKeyID      string        `json:"apiKeyId"`
	Status        BotStatus     `json:"status"`
	TaskID        string        `json:"taskId,omitempty"`
	RetryCount    int           `json:"retryCount"`
	JoinAt        *time.Time    `json:"joinAt,omitempty"`
	LeaveAt       *time.Time    `json:"leaveAt,omitempty"`
	Metadata      Metadata      `json:"metadata,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`

	// Raw is the exact body the service returned for this record
	Raw json.RawMessage `json:"-"`
}

// Acknowledgement is the body returned by revoke and remove calls
type Acknowledgement struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`

	// Raw is the exact body the service returned for this record
	Raw json.RawMessage `json:"-"`
}

// Default pagination values for transcript retrieval
const (
	DefaultTranscriptPage  = 1
	DefaultTranscriptLimit = 10
)

// TranscriptOptions controls transcript pagination. Zero values take the defaults.
type TranscriptOptions struct {
	Page  int
	Limit int
}

// withDefaults returns a copy with zero fields replaced by defaults
func (o TranscriptOptions) withDefaults() TranscriptOptions {
	if o.Page == 0 {
		o.Page = DefaultTranscriptPage
	}
	if o.Limit == 0 {
		o.Limit = DefaultTranscriptLimit
	}
	return o
}

// TranscriptSegment is one utterance in a transcript
type TranscriptSegment struct {
	ID      string `json:"id"`
	Speaker string `json:"speaker"`
	StartMs int64  `json:"startMs"`
	EndMs   int64  `json:"endMs"`
	Text    string `json:"text"`
}

// Duration returns the length of the segment
func (s TranscriptSegment) Duration() time.Duration {
	if s.EndMs <= s.StartMs {
		return 0
	}
	return time.Duration(s.EndMs-s.StartMs) * time.Millisecond
}

// Transcript is one page of a recording's transcript
type Transcript struct {
	ID       string              `json:"id"`
	Segments []TranscriptSegment `json:"segments"`
	Total    int                 `json:"total"`
	Page     int                 `json:"page"`
	Limit    int                 `json:"limit"`
	HasMore  bool                `json:"hasMore"`

	// Raw is the exact body the service returned for this record
	Raw json.RawMessage `json:"-"`
}

// Text renders the page as "speaker: text" lines
func (t *Transcript) Text() string {
	var sb strings.Builder
	for i, seg := range t.Segments {
		if i > 0 {
			sb.WriteByte('\n')
		}
		if seg.Speaker != "" {
			sb.WriteString(seg.Speaker)
			sb.WriteString(": ")
		}
		sb.WriteString(seg.Text)
	}
	return sb.String()
}

// Speakers returns the distinct speakers in order of first appearance
func (t *Transcript) Speakers() []string {
	seen := make(map[string]bool)
	var speakers []string
	for _, seg := range t.Segments {
		if seg.Speaker == "" || seen[seg.Speaker] {
			continue
		}
		seen[seg.Speaker] = true
		speakers = append(speakers, seg.Speaker)
	}
	return speakers
}
