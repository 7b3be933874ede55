package apiclient

import (
	"context"
	"net/url"
	"strconv"

	"farsha/internal/models"
)

func businessPath(id, suffix string) string {
	return "/businesses/" + url.PathEscape(id) + "/" + suffix
}

func searchQuery(s models.BusinessSearch) url.Values {
	q := url.Values{}
	if s.Query != "" {
		q.Set("q", s.Query)
	}
	if s.Category != "" {
		q.Set("category", s.Category)
	}
	if s.City != "" {
		q.Set("city", s.City)
	}
	if s.Sort != "" {
		q.Set("sort", s.Sort)
	}
	if s.Featured {
		q.Set("featured", "true")
	}
	if s.Limit > 0 {
		q.Set("limit", strconv.Itoa(s.Limit))
	}
	return q
}

func (c *Client) SearchBusinesses(ctx context.Context, s models.BusinessSearch) ([]models.Business, error) {
	var list models.List[models.Business]
	if err := c.doGet(ctx, NamespaceCustomer, "/businesses/", searchQuery(s), &list); err != nil {
		return nil, err
	}
	return list.Items(), nil
}

func (c *Client) GetBusiness(ctx context.Context, id string) (*models.Business, error) {
	var b models.Business
	if err := c.doGet(ctx, NamespaceCustomer, businessPath(id, ""), nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *Client) GetBusinessServices(ctx context.Context, id string) ([]models.Service, error) {
	var list models.List[models.Service]
	if err := c.doGet(ctx, NamespaceCustomer, businessPath(id, "services/"), nil, &list); err != nil {
		return nil, err
	}
	return list.Items(), nil
}

func (c *Client) GetBusinessStaff(ctx context.Context, id string) ([]models.Staff, error) {
	var list models.List[models.Staff]
	if err := c.doGet(ctx, NamespaceCustomer, businessPath(id, "staff/"), nil, &list); err != nil {
		return nil, err
	}
	return list.Items(), nil
}

func (c *Client) GetBusinessReviews(ctx context.Context, id string) ([]models.Review, error) {
	var list models.List[models.Review]
	if err := c.doGet(ctx, NamespaceCustomer, businessPath(id, "reviews/"), nil, &list); err != nil {
		return nil, err
	}
	return list.Items(), nil
}

type slotsResponse struct {
	Slots []models.Slot `json:"slots"`
}

// GetAvailableSlots returns the slots of one service on one day. A
// zero staff id asks for any staff member.
func (c *Client) GetAvailableSlots(ctx context.Context, businessID string, q models.SlotQuery) ([]models.Slot, error) {
	params := url.Values{}
	params.Set("service", strconv.FormatInt(q.Service, 10))
	if q.Staff != 0 {
		params.Set("staff", strconv.FormatInt(q.Staff, 10))
	}
	params.Set("date", q.Date)

	var resp slotsResponse
	if err := c.doGet(ctx, NamespaceCustomer, businessPath(businessID, "available-slots/"), params, &resp); err != nil {
		return nil, err
	}
	if resp.Slots == nil {
		return []models.Slot{}, nil
	}
	return resp.Slots, nil
}
