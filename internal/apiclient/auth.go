package apiclient

import (
	"context"
	"net/http"

	"farsha/internal/models"
)

// AuthResponse covers the login, register and verify-otp answers. A
// register or verify-otp answer without Access asks for a separate
// verification step.
type AuthResponse struct {
	Access      string       `json:"access"`
	Refresh     string       `json:"refresh"`
	User        *models.User `json:"user"`
	Message     string       `json:"message"`
	PhoneNumber string       `json:"phone_number"`
}

// MessageResponse is the generic {"message": ...} acknowledgement.
type MessageResponse struct {
	Message   string `json:"message"`
	ExpiresIn int    `json:"expires_in,omitempty"`
}

type logoutRequest struct {
	Refresh string `json:"refresh,omitempty"`
}

func (c *Client) Login(ctx context.Context, creds models.Credentials) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.doJSON(ctx, NamespaceCustomer, http.MethodPost, "/auth/login/", creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.doJSON(ctx, NamespaceCustomer, http.MethodPost, "/auth/register/", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Logout(ctx context.Context, refresh string) error {
	return c.doJSON(ctx, NamespaceCustomer, http.MethodPost, "/auth/logout/", logoutRequest{Refresh: refresh}, nil)
}

func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.doGet(ctx, NamespaceCustomer, "/auth/me/", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.User, error) {
	var user models.User
	if err := c.doJSON(ctx, NamespaceCustomer, http.MethodPut, "/auth/profile/", upd, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) (*MessageResponse, error) {
	var resp MessageResponse
	if err := c.doJSON(ctx, NamespaceCustomer, http.MethodPost, "/auth/change-password/", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) SendOTP(ctx context.Context, phone string) (*MessageResponse, error) {
	var resp MessageResponse
	if err := c.doJSON(ctx, NamespaceCustomer, http.MethodPost, "/auth/send-otp/", models.OTPRequest{PhoneNumber: phone}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) VerifyOTP(ctx context.Context, req models.OTPRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.doJSON(ctx, NamespaceCustomer, http.MethodPost, "/auth/verify-otp/", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ForgotPassword(ctx context.Context, phone string) (*MessageResponse, error) {
	var resp MessageResponse
	if err := c.doJSON(ctx, NamespaceCustomer, http.MethodPost, "/auth/forgot-password/", models.OTPRequest{PhoneNumber: phone}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) (*MessageResponse, error) {
	var resp MessageResponse
	if err := c.doJSON(ctx, NamespaceCustomer, http.MethodPost, "/auth/reset-password/", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
