package meetbot

import (
	"context"
	"encoding/json"
	"net/http"
)

// CreateAPIKey issues a new API key for a user. The returned Key field is the
// only time the secret is visible.
func (c *Client) CreateAPIKey(ctx context.Context, req CreateAPIKeyRequest) (*CreatedAPIKey, error) {
	const op = "create API key"
	if err := validateCreateAPIKey(req); err != nil {
		return nil, err
	}

	var key CreatedAPIKey
	err := c.do(ctx, request{
		op:     op,
		method: http.MethodPost,
		path:   "/api-keys",
		body:   req,
	}, &key)
	if err != nil {
		return nil, normalizeError(op, err)
	}

	return &key, nil
}

// ListAPIKeys lists the API keys of a user, without their secrets
func (c *Client) ListAPIKeys(ctx context.Context, userID string) ([]APIKey, error) {
	const op = "list API keys"
	if err := requireNonBlank(op, "userId", userID); err != nil {
		return nil, err
	}

	var items []json.RawMessage
	err := c.do(ctx, request{
		op:     op,
		method: http.MethodPost,
		path:   "/api-keys/list",
		body:   listAPIKeysRequest{UserID: userID},
	}, &items)
	if err != nil {
		return nil, normalizeError(op, err)
	}

	keys := make([]APIKey, len(items))
	for i, item := range items {
		if err := decodeBody(item, &keys[i]); err != nil {
			return nil, normalizeError(op, err)
		}
	}
	return keys, nil
}

// RevokeAPIKey deactivates an API key. The service keeps the record.
func (c *Client) RevokeAPIKey(ctx context.Context, keyID string) (*Acknowledgement, error) {
	const op = "revoke API key"
	if err := requireNonBlank(op, "keyId", keyID); err != nil {
		return nil, err
	}

	var ack Acknowledgement
	err := c.do(ctx, request{
		op:     op,
		method: http.MethodDelete,
		path:   escapePath("api-keys", keyID),
	}, &ack)
	if err != nil {
		return nil, normalizeError(op, err)
	}

	return &ack, nil
}
