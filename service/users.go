package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"ktx-reserve-cli/model"
)

// Login exchanges credentials for the user id that serves as the session credential.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (int64, error) {
	if strings.TrimSpace(creds.Username) == "" || creds.Password == "" {
		return 0, errors.New("username and password are required")
	}
	endpoint := fmt.Sprintf("%s/api/v1/users/login", c.endpoints.User)

	var userID int64
	if err := c.do(ctx, http.MethodPost, endpoint, creds, &userID); err != nil {
		return 0, err
	}
	if userID == 0 {
		return 0, errors.New("login response did not include a user id")
	}
	return userID, nil
}

// SignUp registers a new account. It does not log the user in.
func (c *Client) SignUp(ctx context.Context, req model.SignUpRequest) error {
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return errors.New("username and password are required")
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
		return errors.New("name and email are required")
	}
	endpoint := fmt.Sprintf("%s/api/v1/users/sign-up", c.endpoints.User)
	return c.do(ctx, http.MethodPost, endpoint, req, nil)
}

// GetProfile fetches the profile of the session's user.
func (c *Client) GetProfile(ctx context.Context) (model.User, error) {
	if !c.session.LoggedIn() {
		return model.User{}, ErrLoginRequired
	}
	endpoint := fmt.Sprintf("%s/api/v1/users/%d", c.endpoints.User, c.session.UserId)

	var user model.User
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &user); err != nil {
		return model.User{}, err
	}
	return user, nil
}
