package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/lborres/agromart/core"
)

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*core.AuthResult, error) {
	var out core.AuthResult
	req := c.request(ctx, "").SetJSON(loginBody{Email: email, Password: password})
	if err := c.do(req, http.MethodPost, "auth/login", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, input core.RegisterInput) (*core.AuthResult, error) {
	var out core.AuthResult
	req := c.request(ctx, "").SetJSON(input)
	if err := c.do(req, http.MethodPost, "auth/register", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Me(ctx context.Context, token string) (*core.User, error) {
	var out core.User
	if err := c.do(c.request(ctx, token), http.MethodGet, "auth/me", &out); err != nil {
		return nil, err
	}
	if out.ID == 0 {
		return nil, &core.TransportError{Op: "GET auth/me", Err: errors.New("profile without id")}
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(c.request(ctx, token), http.MethodPost, "auth/logout", nil)
}
