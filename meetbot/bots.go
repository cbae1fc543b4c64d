package meetbot

import (
	"context"
	"net/http"
)

// CreateBot sends a bot into the meeting at req.MeetingURL
func (c *Client) CreateBot(ctx context.Context, apiKey string, req CreateBotRequest) (*Bot, error) {
	const op = "create bot"
	if err := validateCreateBot(apiKey, req); err != nil {
		return nil, err
	}

	var bot Bot
	err := c.do(ctx, request{
		op:     op,
		method: http.MethodPost,
		path:   "/bots",
		body:   req,
		apiKey: apiKey,
	}, &bot)
	if err != nil {
		return nil, normalizeError(op, err)
	}

	return &bot, nil
}

// RetrieveBot fetches a bot by ID
func (c *Client) RetrieveBot(ctx context.Context, apiKey, botID string) (*Bot, error) {
	const op = "retrieve bot"
	if err := validateAPIKey(op, apiKey); err != nil {
		return nil, err
	}
	if err := requireNonBlank(op, "botId", botID); err != nil {
		return nil, err
	}

	var bot Bot
	err := c.do(ctx, request{
		op:     op,
		method: http.MethodGet,
		path:   escapePath("bots", botID),
		apiKey: apiKey,
	}, &bot)
	if err != nil {
		return nil, normalizeError(op, err)
	}

	return &bot, nil
}

// RemoveBot makes a bot leave its meeting
func (c *Client) RemoveBot(ctx context.Context, apiKey, botID string) (*Acknowledgement, error) {
	const op = "remove bot"
	if err := validateAPIKey(op, apiKey); err != nil {
		return nil, err
	}
	if err := requireNonBlank(op, "botId", botID); err != nil {
		return nil, err
	}

	var ack Acknowledgement
	err := c.do(ctx, request{
		op:     op,
		method: http.MethodDelete,
		path:   escapePath("bots", botID),
		apiKey: apiKey,
	}, &ack)
	if err != nil {
		return nil, normalizeError(op, err)
	}

	return &ack, nil
}
