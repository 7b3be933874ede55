package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"farsha/internal/models"
)

func (c *Client) CreateBooking(ctx context.Context, req models.BookingRequest) (*models.Booking, error) {
	var b models.Booking
	if err := c.doJSON(ctx, NamespaceCustomer, http.MethodPost, "/bookings/", req, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// MyBookings lists the customer's bookings. status is a comma separated
// filter; empty lists everything.
func (c *Client) MyBookings(ctx context.Context, status string) ([]models.Booking, error) {
	var q url.Values
	if status != "" {
		q = url.Values{"status": {status}}
	}
	var list models.List[models.Booking]
	if err := c.doGet(ctx, NamespaceCustomer, "/bookings/my-bookings/", q, &list); err != nil {
		return nil, err
	}
	return list.Items(), nil
}

func (c *Client) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	var b models.Booking
	if err := c.doGet(ctx, NamespaceCustomer, idPath("/bookings/%d/", id), nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *Client) CancelBooking(ctx context.Context, id int64, reason string) error {
	return c.doJSON(ctx, NamespaceCustomer, http.MethodPost, idPath("/bookings/%d/cancel/", id), models.CancelRequest{Reason: reason}, nil)
}

func (c *Client) RescheduleBooking(ctx context.Context, id int64, req models.RescheduleRequest) error {
	return c.doJSON(ctx, NamespaceCustomer, http.MethodPost, idPath("/bookings/%d/reschedule/", id), req, nil)
}

func (c *Client) RateBooking(ctx context.Context, id int64, req models.RateRequest) error {
	return c.doJSON(ctx, NamespaceCustomer, http.MethodPost, idPath("/bookings/%d/rate/", id), req, nil)
}
