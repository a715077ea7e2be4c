package bamboo

import (
	"context"
	"net/url"
	"strconv"
)

const managementPath = "/api/admin/management"

// ListAdmins returns a filtered page of admin accounts.
func (c *Client) ListAdmins(ctx context.Context, params AdminListParams) (*AdminListResponse, error) {
	q := pageQuery(params.Skip, params.Limit)
	if params.Search != "" {
		q.Set("search", params.Search)
	}
	if params.Role != "" {
		q.Set("role", params.Role)
	}
	if params.InstitutionType != "" {
		q.Set("institution_type", params.InstitutionType)
	}
	if params.IsActive != nil {
		q.Set("is_active", strconv.FormatBool(*params.IsActive))
	}
	var resp AdminListResponse
	if err := c.get(ctx, managementPath+"/admins", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetAdmin returns one admin account.
func (c *Client) GetAdmin(ctx context.Context, id string) (*AdminUser, error) {
	var user AdminUser
	if err := c.get(ctx, managementPath+"/admins/"+url.PathEscape(id), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateAdmin creates an admin account.
func (c *Client) CreateAdmin(ctx context.Context, req AdminCreateRequest) (*AdminUser, error) {
	var user AdminUser
	if err := c.post(ctx, managementPath+"/admins", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateAdmin applies a partial update to an admin account.
func (c *Client) UpdateAdmin(ctx context.Context, id string, req AdminUpdateRequest) (*AdminUser, error) {
	var user AdminUser
	if err := c.put(ctx, managementPath+"/admins/"+url.PathEscape(id), req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteAdmin removes an admin account.
func (c *Client) DeleteAdmin(ctx context.Context, id string) error {
	return c.delete(ctx, managementPath+"/admins/"+url.PathEscape(id), nil)
}

// ToggleAdminStatus activates or deactivates an admin account.
func (c *Client) ToggleAdminStatus(ctx context.Context, id string) (*AdminUser, error) {
	var user AdminUser
	if err := c.patch(ctx, managementPath+"/admins/"+url.PathEscape(id)+"/toggle-status", struct{}{}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetInstitutions lists banks and insurance companies.
func (c *Client) GetInstitutions(ctx context.Context) (*InstitutionsResponse, error) {
	var resp InstitutionsResponse
	if err := c.get(ctx, managementPath+"/institutions", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetAdminStats summarises admin accounts.
func (c *Client) GetAdminStats(ctx context.Context) (*AdminStats, error) {
	var stats AdminStats
	if err := c.get(ctx, managementPath+"/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ValidateUsername checks whether a username is free.
func (c *Client) ValidateUsername(ctx context.Context, username string) (bool, error) {
	q := url.Values{}
	q.Set("username", username)
	var a Availability
	if err := c.get(ctx, managementPath+"/validate-username", q, &a); err != nil {
		return false, err
	}
	return a.Available, nil
}

// ValidateEmail checks whether an email is free, ignoring excludeAdminID.
func (c *Client) ValidateEmail(ctx context.Context, email, excludeAdminID string) (bool, error) {
	q := url.Values{}
	q.Set("email", email)
	if excludeAdminID != "" {
		q.Set("exclude_admin_id", excludeAdminID)
	}
	var a Availability
	if err := c.get(ctx, managementPath+"/validate-email", q, &a); err != nil {
		return false, err
	}
	return a.Available, nil
}
