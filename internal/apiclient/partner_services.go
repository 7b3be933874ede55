package apiclient

import (
	"context"
	"net/http"

	"farsha/internal/models"
)

func (c *Client) PartnerServices(ctx context.Context) ([]models.Service, error) {
	var list models.List[models.Service]
	if err := c.doGet(ctx, NamespacePartner, "/partner/services/", nil, &list); err != nil {
		return nil, err
	}
	return list.Items(), nil
}

func (c *Client) CreateService(ctx context.Context, in models.ServiceInput) (*models.Service, error) {
	var s models.Service
	if err := c.doJSON(ctx, NamespacePartner, http.MethodPost, "/partner/services/", in, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) UpdateService(ctx context.Context, id int64, in models.ServiceInput) (*models.Service, error) {
	var s models.Service
	if err := c.doJSON(ctx, NamespacePartner, http.MethodPut, idPath("/partner/services/%d/", id), in, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) DeleteService(ctx context.Context, id int64) error {
	return c.doJSON(ctx, NamespacePartner, http.MethodDelete, idPath("/partner/services/%d/", id), nil, nil)
}

func (c *Client) ToggleServiceStatus(ctx context.Context, id int64) error {
	return c.doJSON(ctx, NamespacePartner, http.MethodPost, idPath("/partner/services/%d/toggle-status/", id), nil, nil)
}
