package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"farsha/internal/models"
)

type statusUpdate struct {
	Status string `json:"status"`
}

type calendarResponse struct {
	Events []models.CalendarEvent `json:"events"`
}

// PartnerBookings lists the business bookings, filtered by status when
// non-empty.
func (c *Client) PartnerBookings(ctx context.Context, status string) ([]models.Booking, error) {
	var q url.Values
	if status != "" {
		q = url.Values{"status": {status}}
	}
	var list models.List[models.Booking]
	if err := c.doGet(ctx, NamespacePartner, "/partner/bookings/", q, &list); err != nil {
		return nil, err
	}
	return list.Items(), nil
}

func (c *Client) PartnerBooking(ctx context.Context, id int64) (*models.Booking, error) {
	var b models.Booking
	if err := c.doGet(ctx, NamespacePartner, idPath("/partner/bookings/%d/", id), nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *Client) UpdateBookingStatus(ctx context.Context, id int64, status string) error {
	return c.doJSON(ctx, NamespacePartner, http.MethodPatch, idPath("/partner/bookings/%d/", id), statusUpdate{Status: status}, nil)
}

// CalendarEvents returns the bookings between start and end inclusive,
// both YYYY-MM-DD.
func (c *Client) CalendarEvents(ctx context.Context, start, end string) ([]models.CalendarEvent, error) {
	q := url.Values{"start": {start}, "end": {end}}
	var resp calendarResponse
	if err := c.doGet(ctx, NamespacePartner, "/partner/calendar/", q, &resp); err != nil {
		return nil, err
	}
	if resp.Events == nil {
		return []models.CalendarEvent{}, nil
	}
	return resp.Events, nil
}
