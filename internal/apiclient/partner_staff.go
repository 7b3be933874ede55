package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"farsha/internal/models"
)

func (c *Client) PartnerStaff(ctx context.Context) ([]models.Staff, error) {
	var list models.List[models.Staff]
	if err := c.doGet(ctx, NamespacePartner, "/partner/staff/", nil, &list); err != nil {
		return nil, err
	}
	return list.Items(), nil
}

func (c *Client) CreateStaff(ctx context.Context, in models.StaffInput) (*models.Staff, error) {
	var s models.Staff
	if err := c.doJSON(ctx, NamespacePartner, http.MethodPost, "/partner/staff/", in, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) UpdateStaff(ctx context.Context, id int64, in models.StaffInput) (*models.Staff, error) {
	var s models.Staff
	if err := c.doJSON(ctx, NamespacePartner, http.MethodPut, idPath("/partner/staff/%d/", id), in, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) DeleteStaff(ctx context.Context, id int64) error {
	return c.doJSON(ctx, NamespacePartner, http.MethodDelete, idPath("/partner/staff/%d/", id), nil, nil)
}

// StaffSchedule reads the weekly schedule. week may be empty.
func (c *Client) StaffSchedule(ctx context.Context, id int64, week string) ([]models.StaffSchedule, error) {
	var q url.Values
	if week != "" {
		q = url.Values{"week": {week}}
	}
	var list models.List[models.StaffSchedule]
	if err := c.doGet(ctx, NamespacePartner, idPath("/partner/staff/%d/schedule/", id), q, &list); err != nil {
		return nil, err
	}
	return list.Items(), nil
}

func (c *Client) UpdateStaffSchedule(ctx context.Context, id int64, schedule []models.StaffSchedule) error {
	body := struct {
		Schedules []models.StaffSchedule `json:"schedules"`
	}{Schedules: schedule}
	return c.doJSON(ctx, NamespacePartner, http.MethodPost, idPath("/partner/staff/%d/schedule/", id), body, nil)
}
