package meetbot

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// DefaultBatchConcurrency limits in-flight requests for batch operations
const DefaultBatchConcurrency = 5

var _ BatchAPI = (*Client)(nil)

// BatchError contains information about a failed item in a batch operation
type BatchError struct {
	ID  string
	Err error
}

// Error implements the error interface
func (e BatchError) Error() string {
	return fmt.Sprintf("bot %s: %v", e.ID, e.Err)
}

// Unwrap returns the per-item error
func (e BatchError) Unwrap() error {
	return e.Err
}

// RetrieveBotsResult contains the results of a batch retrieve, in input order
type RetrieveBotsResult struct {
	Requested int
	Bots      []*Bot
	Failed    []BatchError
}

// RemoveBotsResult contains the results of a batch remove, in input order
type RemoveBotsResult struct {
	Requested int
	Removed   []string
	Failed    []BatchError
}

// validateBatch checks the credential and every ID before any request is made
func validateBatch(op, apiKey string, botIDs []string) error {
	if err := validateAPIKey(op, apiKey); err != nil {
		return err
	}
	for i, id := range botIDs {
		if err := requireNonBlank(op, fmt.Sprintf("botIds[%d]", i), id); err != nil {
			return err
		}
	}
	return nil
}

// RetrieveBots fetches bots concurrently. Individual failures are collected in
// the result; the returned error is only set for invalid input.
func (c *Client) RetrieveBots(ctx context.Context, apiKey string, botIDs []string) (*RetrieveBotsResult, error) {
	if err := validateBatch("retrieve bots", apiKey, botIDs); err != nil {
		return nil, err
	}

	result := &RetrieveBotsResult{Requested: len(botIDs)}
	if len(botIDs) == 0 {
		return result, nil
	}

	bots := make([]*Bot, len(botIDs))
	errs := make([]error, len(botIDs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(DefaultBatchConcurrency)

	for i, id := range botIDs {
		g.Go(func() error {
			bots[i], errs[i] = c.RetrieveBot(ctx, apiKey, id)
			return nil // Don't stop on individual errors
		})
	}
	_ = g.Wait()

	for i, id := range botIDs {
		if errs[i] != nil {
			result.Failed = append(result.Failed, BatchError{ID: id, Err: errs[i]})
			continue
		}
		result.Bots = append(result.Bots, bots[i])
	}

	c.logger.Debug().
		Int("requested", result.Requested).
		Int("failed", len(result.Failed)).
		Msg("Retrieved bots")

	return result, nil
}

// RemoveBots removes bots concurrently. Individual failures are collected in
// the result; the returned error is only set for invalid input.
func (c *Client) RemoveBots(ctx context.Context, apiKey string, botIDs []string) (*RemoveBotsResult, error) {
	if err := validateBatch("remove bots", apiKey, botIDs); err != nil {
		return nil, err
	}

	result := &RemoveBotsResult{Requested: len(botIDs)}
	if len(botIDs) == 0 {
		return result, nil
	}

	errs := make([]error, len(botIDs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(DefaultBatchConcurrency)

	for i, id := range botIDs {
		g.Go(func() error {
			_, errs[i] = c.RemoveBot(ctx, apiKey, id)
			return nil
		})
	}
	_ = g.Wait()

	for i, id := range botIDs {
		if errs[i] != nil {
			result.Failed = append(result.Failed, BatchError{ID: id, Err: errs[i]})
			continue
		}
		result.Removed = append(result.Removed, id)
	}

	c.logger.Debug().
		Int("requested", result.Requested).
		Int("removed", len(result.Removed)).
		Int("failed", len(result.Failed)).
		Msg("Removed bots")

	return result, nil
}
