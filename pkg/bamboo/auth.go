package bamboo

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
)

// AdminLogin authenticates an administrator by username and password.
func (c *Client) AdminLogin(ctx context.Context, req AdminLoginRequest) (*AdminLoginResponse, error) {
	var resp AdminLoginResponse
	if err := c.post(ctx, "/api/admin/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AdminLogout revokes the admin token carried by ctx.
func (c *Client) AdminLogout(ctx context.Context) error {
	return c.post(ctx, "/api/admin/logout", struct{}{}, nil)
}

// AdminProfile returns the admin owning the token in ctx.
func (c *Client) AdminProfile(ctx context.Context) (*AdminUser, error) {
	var user AdminUser
	if err := c.get(ctx, "/api/admin/profile", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ValidateAdminToken checks the admin token carried by ctx.
func (c *Client) ValidateAdminToken(ctx context.Context) (bool, error) {
	var v TokenValidity
	if err := c.get(ctx, "/api/admin/validate-token", nil, &v); err != nil {
		return false, err
	}
	return v.Valid, nil
}

// Register creates a customer account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegistrationResponse, error) {
	var resp RegistrationResponse
	if err := c.post(ctx, "/api/auth/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UserLogin authenticates a customer by email or phone.
func (c *Client) UserLogin(ctx context.Context, req UserLoginRequest) (*UserLoginResponse, error) {
	var resp UserLoginResponse
	if err := c.post(ctx, "/api/auth/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Verify confirms a registration code and returns a logged in customer.
func (c *Client) Verify(ctx context.Context, req VerificationRequest) (*UserLoginResponse, error) {
	var resp UserLoginResponse
	if err := c.post(ctx, "/api/auth/verify", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ResendVerification sends a new verification code.
func (c *Client) ResendVerification(ctx context.Context, req ContactRequest) error {
	return c.post(ctx, "/api/auth/resend-verification", req, nil)
}

// UserLogout revokes the customer token carried by ctx.
func (c *Client) UserLogout(ctx context.Context) error {
	return c.post(ctx, "/api/auth/logout", struct{}{}, nil)
}

// ValidateUserToken checks the customer token carried by ctx.
func (c *Client) ValidateUserToken(ctx context.Context) (bool, error) {
	var v TokenValidity
	if err := c.get(ctx, "/api/auth/validate-token", nil, &v); err != nil {
		return false, err
	}
	return v.Valid, nil
}

// GetProfile returns the current customer.
func (c *Client) GetProfile(ctx context.Context) (*User, error) {
	var user User
	if err := c.get(ctx, "/api/auth/profile", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile applies a partial profile update.
func (c *Client) UpdateProfile(ctx context.Context, fields map[string]any) (*User, error) {
	var user User
	if err := c.put(ctx, "/api/auth/profile", fields, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ChangePassword changes the current customer's password.
func (c *Client) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	return c.post(ctx, "/api/auth/change-password", req, nil)
}

// RequestPasswordReset sends a reset code.
func (c *Client) RequestPasswordReset(ctx context.Context, req ContactRequest) error {
	return c.post(ctx, "/api/auth/reset-password", req, nil)
}

// ConfirmPasswordReset sets a new password with a reset code.
func (c *Client) ConfirmPasswordReset(ctx context.Context, req PasswordResetConfirmRequest) error {
	return c.post(ctx, "/api/auth/reset-password/confirm", req, nil)
}

// GetDashboard returns the current customer's dashboard.
func (c *Client) GetDashboard(ctx context.Context) (*UserDashboard, error) {
	var d UserDashboard
	if err := c.get(ctx, "/api/auth/dashboard", nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// GetUserSimulations lists the current customer's simulations.
func (c *Client) GetUserSimulations(ctx context.Context) ([]UserSimulation, error) {
	var sims []UserSimulation
	if err := c.get(ctx, "/api/auth/simulations", nil, &sims); err != nil {
		return nil, err
	}
	return sims, nil
}

// SaveSimulation bookmarks a simulation.
func (c *Client) SaveSimulation(ctx context.Context, req SaveSimulationRequest) error {
	return c.post(ctx, "/api/auth/simulations/save", req, nil)
}

// GetUserApplications lists the current customer's applications.
func (c *Client) GetUserApplications(ctx context.Context) ([]UserApplication, error) {
	var apps []UserApplication
	if err := c.get(ctx, "/api/auth/applications", nil, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// CreateApplication submits an application of the given kind.
func (c *Client) CreateApplication(ctx context.Context, kind ProductKind, body json.RawMessage) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.post(ctx, "/api/auth/applications/"+string(kind), body, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// GetNotifications lists customer notifications.
func (c *Client) GetNotifications(ctx context.Context, unreadOnly bool, limit int) ([]UserNotification, error) {
	q := url.Values{}
	q.Set("unread_only", strconv.FormatBool(unreadOnly))
	q.Set("limit", strconv.Itoa(limit))
	var items []UserNotification
	if err := c.get(ctx, "/api/auth/notifications", q, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// MarkNotificationsRead flags notifications as read.
func (c *Client) MarkNotificationsRead(ctx context.Context, ids []string) error {
	body := struct {
		NotificationIDs []string `json:"notification_ids"`
	}{NotificationIDs: ids}
	return c.post(ctx, "/api/auth/notifications/mark-read", body, nil)
}
