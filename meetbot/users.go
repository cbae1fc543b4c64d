package meetbot

import (
	"context"
	"net/http"
)

// CreateUser registers a new user
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	const op = "create user"
	if err := validateCreateUser(req); err != nil {
		return nil, err
	}

	var user User
	err := c.do(ctx, request{
		op:     op,
		method: http.MethodPost,
		path:   "/auth/register",
		body:   req,
	}, &user)
	if err != nil {
		return nil, normalizeError(op, err)
	}

	return &user, nil
}
