package apiclient

import (
	"context"
	"net/url"

	"farsha/internal/models"
)

func (c *Client) PartnerCustomers(ctx context.Context, search string) ([]models.Customer, error) {
	var q url.Values
	if search != "" {
		q = url.Values{"search": {search}}
	}
	var list models.List[models.Customer]
	if err := c.doGet(ctx, NamespacePartner, "/partner/customers/", q, &list); err != nil {
		return nil, err
	}
	return list.Items(), nil
}

func (c *Client) PartnerCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	var cust models.Customer
	if err := c.doGet(ctx, NamespacePartner, idPath("/partner/customers/%d/", id), nil, &cust); err != nil {
		return nil, err
	}
	return &cust, nil
}

func (c *Client) PartnerCustomerHistory(ctx context.Context, id int64) ([]models.Booking, error) {
	var list models.List[models.Booking]
	if err := c.doGet(ctx, NamespacePartner, idPath("/partner/customers/%d/history/", id), nil, &list); err != nil {
		return nil, err
	}
	return list.Items(), nil
}
