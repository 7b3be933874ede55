package apiclient

import (
	"context"
	"net/http"

	"farsha/internal/models"
)

// PartnerAuthResponse is the answer of partner login, register and me.
// Me carries no tokens.
type PartnerAuthResponse struct {
	Access      string           `json:"access"`
	Refresh     string           `json:"refresh"`
	Partner     *models.Partner  `json:"partner"`
	User        *models.Partner  `json:"user"`
	Business    *models.Business `json:"business"`
	Message     string           `json:"message"`
	PhoneNumber string           `json:"phone_number"`
}

// Principal returns the partner, accepting the "user" key as well.
func (r *PartnerAuthResponse) Principal() *models.Partner {
	if r.Partner != nil {
		return r.Partner
	}
	return r.User
}

func (c *Client) PartnerLogin(ctx context.Context, creds models.Credentials) (*PartnerAuthResponse, error) {
	var resp PartnerAuthResponse
	if err := c.doJSON(ctx, NamespacePartner, http.MethodPost, "/partner/auth/login/", creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) PartnerRegister(ctx context.Context, req models.PartnerRegisterRequest) (*PartnerAuthResponse, error) {
	var resp PartnerAuthResponse
	if err := c.doJSON(ctx, NamespacePartner, http.MethodPost, "/partner/auth/register/", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) PartnerLogout(ctx context.Context, refresh string) error {
	return c.doJSON(ctx, NamespacePartner, http.MethodPost, "/partner/auth/logout/", logoutRequest{Refresh: refresh}, nil)
}

func (c *Client) CurrentPartner(ctx context.Context) (*PartnerAuthResponse, error) {
	var resp PartnerAuthResponse
	if err := c.doGet(ctx, NamespacePartner, "/partner/auth/me/", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) UpdateBusiness(ctx context.Context, upd models.BusinessUpdate) (*models.Business, error) {
	var business models.Business
	if err := c.doJSON(ctx, NamespacePartner, http.MethodPut, "/partner/auth/business/", upd, &business); err != nil {
		return nil, err
	}
	return &business, nil
}
