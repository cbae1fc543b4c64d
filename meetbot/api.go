package meetbot

import (
	"context"
)

// API defines the interface for meeting bot operations
type API interface {
	// CreateUser registers a user
	CreateUser(ctx context.Context, req CreateUserRequest) (*User, error)

	// CreateAPIKey issues an API key and returns its one-time secret
	CreateAPIKey(ctx context.Context, req CreateAPIKeyRequest) (*CreatedAPIKey, error)

	// ListAPIKeys lists a user's API keys without secrets
	ListAPIKeys(ctx context.Context, userID string) ([]APIKey, error)

	// RevokeAPIKey deactivates an API key
	RevokeAPIKey(ctx context.Context, keyID string) (*Acknowledgement, error)

	// CreateBot sends a bot into a meeting
	CreateBot(ctx context.Context, apiKey string, req CreateBotRequest) (*Bot, error)

	// RetrieveBot fetches a bot by ID
	RetrieveBot(ctx context.Context, apiKey, botID string) (*Bot, error)

	// RemoveBot makes a bot leave its meeting
	RemoveBot(ctx context.Context, apiKey, botID string) (*Acknowledgement, error)

	// RetrieveTranscript fetches one page of a transcript
	RetrieveTranscript(ctx context.Context, apiKey, transcriptID string, opts TranscriptOptions) (*Transcript, error)
}

// BatchAPI fans single-bot operations out over several IDs
type BatchAPI interface {
	// RetrieveBots fetches several bots concurrently
	RetrieveBots(ctx context.Context, apiKey string, botIDs []string) (*RetrieveBotsResult, error)

	// RemoveBots removes several bots concurrently
	RemoveBots(ctx context.Context, apiKey string, botIDs []string) (*RemoveBotsResult, error)
}
