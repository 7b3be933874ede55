package customer

import (
	"context"
	"strings"

	"farsha/internal/apiclient"
	"farsha/internal/events"
	"farsha/internal/models"
)

// BookingItem is one row of "my bookings" with its actions resolved.
type BookingItem struct {
	models.Booking
	StatusLabel   string `json:"status_label"`
	CanReschedule bool   `json:"can_reschedule"`
	CanRate       bool   `json:"can_rate"`
	CanRebook     bool   `json:"can_rebook"`
}

// MyBookingsView is the customer's bookings for one tab.
type MyBookingsView struct {
	Tab      string        `json:"tab"`
	Bookings []BookingItem `json:"bookings"`
}

// NormalizeTab maps anything but "past" to "upcoming".
func NormalizeTab(tab string) string {
	if tab == models.TabPast {
		return models.TabPast
	}
	return models.TabUpcoming
}

func tabStatuses(tab string) string {
	if tab == models.TabPast {
		return models.PastStatuses
	}
	return models.UpcomingStatuses
}

func (s *Service) MyBookings(ctx context.Context, tab string) (*MyBookingsView, error) {
	tab = NormalizeTab(tab)
	list, err := s.api.MyBookings(ctx, tabStatuses(tab))
	if err != nil {
		return nil, apiclient.Fail(err, msgBookingsLoadFailed)
	}
	items := make([]BookingItem, 0, len(list))
	for _, b := range list {
		items = append(items, BookingItem{
			Booking:       b,
			StatusLabel:   models.StatusLabel(b.Status),
			CanReschedule: b.Status == models.StatusConfirmed,
			CanRate:       b.Status == models.StatusCompleted && !b.HasReview,
			CanRebook:     b.Status == models.StatusCancelled,
		})
	}
	return &MyBookingsView{Tab: tab, Bookings: items}, nil
}

// CancelBooking cancels and reloads the tab.
func (s *Service) CancelBooking(ctx context.Context, visitor string, id int64, reason, tab string) (*MyBookingsView, string, error) {
	if err := s.api.CancelBooking(ctx, id, strings.TrimSpace(reason)); err != nil {
		return nil, "", apiclient.Fail(err, msgCancelFailed, cancelFields...)
	}
	s.publish(events.EventBookingCanceled, events.BookingEventPayload{
		BookingID: id, Visitor: visitor, Namespace: "customer", Status: models.StatusCancelled,
	})
	v, err := s.MyBookings(ctx, tab)
	return v, msgCancelled, err
}

func (s *Service) RescheduleBooking(ctx context.Context, visitor string, id int64, req models.RescheduleRequest, tab string) (*MyBookingsView, string, error) {
	if req.Date == "" || req.Time == "" {
		return nil, "", apiclient.Invalid(msgRescheduleRequired)
	}
	if err := s.api.RescheduleBooking(ctx, id, req); err != nil {
		return nil, "", apiclient.Fail(err, msgRescheduleFailed, rescheduleFields...)
	}
	s.publish(events.EventBookingRescheduled, events.BookingEventPayload{
		BookingID: id, Visitor: visitor, Namespace: "customer", Date: req.Date, Time: req.Time,
	})
	v, err := s.MyBookings(ctx, tab)
	return v, msgRescheduled, err
}

// RateBooking posts a review. Sub-scores are optional; set ones must be
// 1 to 5 like the overall rating.
func (s *Service) RateBooking(ctx context.Context, id int64, req models.RateRequest, tab string) (*MyBookingsView, string, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, "", apiclient.Invalid(msgInvalidRating)
	}
	for _, sub := range []int{req.ServiceQuality, req.Cleanliness, req.StaffBehavior, req.ValueForMoney} {
		if sub < 0 || sub > 5 {
			return nil, "", apiclient.Invalid(msgInvalidRating)
		}
	}
	if err := s.api.RateBooking(ctx, id, req); err != nil {
		return nil, "", apiclient.Fail(err, msgRateFailed, rateFields...)
	}
	v, err := s.MyBookings(ctx, tab)
	return v, msgRated, err
}

func (s *Service) publish(event string, payload events.BookingEventPayload) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishJSON(event, payload); err != nil {
		s.logger.Warn().Err(err).Str("event", event).Msg("failed to publish booking event")
	}
}
