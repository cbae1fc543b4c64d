// Package meetbot provides a client for interacting with the meeting bot REST API.
//
// The meeting bot service joins video meetings on behalf of a user, records them and
// produces transcripts. This package is a thin typed wrapper: every method validates
// its arguments locally and then maps to exactly one HTTP call.
//
// # Architecture
//
// The package is organized into several components:
//
//   - Client: configuration (base URL, timeout) and the request dispatcher
//   - Types: request and response records (users, API keys, bots, transcripts)
//   - Validation: pre-flight checks that run before any network I/O
//   - Errors: a single Error type with a machine-readable Kind
//
// # Usage
//
// Create a client with the service URL. The /api/v1 prefix is appended for you:
//
//	logger := zerolog.New(os.Stdout)
//	client, err := meetbot.NewClient(meetbot.Config{
//		BaseURL: "https://bots.example.com",
//		Timeout: 10 * time.Second,
//	}, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	bot, err := client.CreateBot(ctx, apiKey, meetbot.CreateBotRequest{
//		Name:       "Notetaker",
//		MeetingURL: "https://meet.google.com/abc-defg-hij",
//	})
//
// # Error Handling
//
// Every method returns *Error on failure. Its Kind is one of:
//
//   - KindValidation: invalid input, caught locally (no request sent) or reported as 400/422
//   - KindAuthentication: 401 or 403
//   - KindNotFound: 404
//   - KindRateLimit: 429, with RetryAfter set from the Retry-After header
//   - KindAPI: anything else, including network failures (StatusCode 0)
//
// Match a kind with errors.Is against the sentinel values, or inspect the error directly:
//
//	if errors.Is(err, meetbot.ErrNotFound) {
//		// Handle missing bot
//	}
//
//	var apiErr *meetbot.Error
//	if errors.As(err, &apiErr) && apiErr.IsRateLimited() {
//		time.Sleep(apiErr.RetryAfter)
//	}
//
// Nothing is retried by the client.
package meetbot
