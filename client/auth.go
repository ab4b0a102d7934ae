package client

import (
	"context"
	"fmt"
	"net/http"

	"medbook/models"
	"medbook/validation"
)

// Register creates a patient account. Invalid forms fail with
// validation.FieldErrors before any request is sent.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	var u models.User
	if _, err := c.do(ctx, request{method: http.MethodPost, path: "/users/register", body: req}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login signs in and stores the session in the slot of the requested role.
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	var res models.LoginResponse
	if _, err := c.do(ctx, request{method: http.MethodPost, path: "/users/login", body: req}, &res); err != nil {
		return nil, err
	}
	if res.Token == "" {
		return nil, &APIError{StatusCode: http.StatusOK, Message: DefaultErrorMessage}
	}

	exp, err := tokenExpiry(res.Token)
	if err != nil {
		return nil, err
	}
	role := res.Role
	if role == "" {
		role, _ = models.RoleFromID(req.RoleID)
	}
	s := Session{
		Role:      role,
		Token:     res.Token,
		UserID:    res.User.ID,
		Fullname:  res.User.Fullname,
		Email:     res.User.Email,
		ExpiresAt: exp,
	}
	if err := c.sessions.Save(s); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return &res, nil
}

// Logout revokes the role's token on the server and removes its slot.
// The slot is removed even when the server call fails.
func (c *Client) Logout(ctx context.Context, role string) error {
	if _, err := c.Session(role); isNoSession(err) {
		return nil
	}
	_, callErr := c.do(ctx, request{method: http.MethodPost, path: "/users/logout", role: role}, nil)
	if err := c.sessions.Delete(role); err != nil {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return callErr
}

// Me returns the account behind the role's session.
func (c *Client) Me(ctx context.Context, role string) (*models.Profile, error) {
	var p models.Profile
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/users/details", role: role}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProfile edits the patient's own profile.
func (c *Client) UpdateProfile(ctx context.Context, req models.ProfileUpdateRequest) (*models.User, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	var u models.User
	if _, err := c.do(ctx, request{method: http.MethodPut, path: "/users/details", role: models.RolePatient, body: req}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
