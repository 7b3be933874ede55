package partner

import (
	"context"
	"strings"
	"time"

	"farsha/internal/apiclient"
	"farsha/internal/events"
	"farsha/internal/models"
)

var tabLabels = map[string]string{
	models.TabAll:       "همه",
	models.TabPending:   "در انتظار",
	models.TabConfirmed: "تایید شده",
	models.TabCompleted: "انجام شده",
	models.TabCancelled: "لغو شده",
}

// TabCount is one tab header of the bookings screen.
type TabCount struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// BookingRow is a booking with its display fields resolved.
type BookingRow struct {
	models.Booking
	CustomerLabel string `json:"customer_label"`
	PhoneLabel    string `json:"phone_label"`
	ServiceLabel  string `json:"service_label"`
	StaffLabel    string `json:"staff_label,omitempty"`
	StatusLabel   string `json:"status_label"`
}

// BookingsView is the bookings screen model.
type BookingsView struct {
	Tab      string       `json:"tab"`
	Query    string       `json:"query"`
	Tabs     []TabCount   `json:"tabs"`
	Bookings []BookingRow `json:"bookings"`
	Total    int          `json:"total"`
}

// NormalizeTab maps unknown tabs to "all".
func NormalizeTab(tab string) string {
	if _, ok := tabLabels[tab]; ok {
		return tab
	}
	return models.TabAll
}

// Bookings loads one tab and applies the search query to the fetched page.
func (s *Service) Bookings(ctx context.Context, tab, query string) (*BookingsView, error) {
	tab = NormalizeTab(tab)
	list, err := s.fetchBookings(ctx, tab)
	if err != nil {
		return nil, err
	}
	return buildBookingsView(tab, query, list), nil
}

func (s *Service) fetchBookings(ctx context.Context, tab string) ([]models.Booking, error) {
	status := ""
	if tab != models.TabAll {
		status = tab
	}
	list, err := s.api.PartnerBookings(ctx, status)
	if err != nil {
		return nil, apiclient.Fail(err, msgBookingsLoadFailed)
	}
	return list, nil
}

func buildBookingsView(tab, query string, list []models.Booking) *BookingsView {
	filtered := FilterBookings(list, query)
	rows := make([]BookingRow, 0, len(filtered))
	for _, b := range filtered {
		rows = append(rows, toRow(b))
	}
	return &BookingsView{
		Tab:      tab,
		Query:    query,
		Tabs:     countTabs(list),
		Bookings: rows,
		Total:    len(list),
	}
}

func toRow(b models.Booking) BookingRow {
	return BookingRow{
		Booking:       b,
		CustomerLabel: b.CustomerDisplayName(),
		PhoneLabel:    b.CustomerPhoneNumber(),
		ServiceLabel:  b.ServiceName(),
		StaffLabel:    b.StaffName(),
		StatusLabel:   models.StatusLabel(b.Status),
	}
}

// countTabs counts per status over the fetched page only.
func countTabs(list []models.Booking) []TabCount {
	counts := make(map[string]int, len(models.PartnerTabs))
	for _, b := range list {
		counts[b.Status]++
	}
	out := make([]TabCount, 0, len(models.PartnerTabs))
	for _, id := range models.PartnerTabs {
		n := counts[id]
		if id == models.TabAll {
			n = len(list)
		}
		out = append(out, TabCount{ID: id, Label: tabLabels[id], Count: n})
	}
	return out
}

// FilterBookings keeps bookings whose customer name, service name or
// customer phone contains query, ignoring case.
func FilterBookings(list []models.Booking, query string) []models.Booking {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return list
	}
	out := make([]models.Booking, 0, len(list))
	for _, b := range list {
		if strings.Contains(strings.ToLower(b.CustomerDisplayName()), q) ||
			strings.Contains(strings.ToLower(b.ServiceName()), q) ||
			strings.Contains(strings.ToLower(b.CustomerPhoneNumber()), q) {
			out = append(out, b)
		}
	}
	return out
}

// Booking returns one booking for the detail modal.
func (s *Service) Booking(ctx context.Context, id int64) (*BookingRow, error) {
	b, err := s.api.PartnerBooking(ctx, id)
	if err != nil {
		return nil, apiclient.Fail(err, msgBookingsLoadFailed)
	}
	row := toRow(*b)
	return &row, nil
}

// ValidStatusChange reports whether the panel may move a booking to
// status.
func ValidStatusChange(status string) bool {
	switch status {
	case models.StatusConfirmed, models.StatusCancelled, models.StatusCompleted:
		return true
	}
	return false
}

// ChangeStatus patches the booking status and reloads the tab. The list
// is never edited locally.
func (s *Service) ChangeStatus(ctx context.Context, visitor string, id int64, status, tab, query string) (*BookingsView, string, error) {
	if !ValidStatusChange(status) {
		return nil, "", apiclient.Invalid(msgInvalidStatus)
	}
	if err := s.api.UpdateBookingStatus(ctx, id, status); err != nil {
		return nil, "", apiclient.Fail(err, msgStatusChangeFailed)
	}
	s.publish(events.EventBookingStatusChanged, events.BookingEventPayload{
		BookingID: id,
		Visitor:   visitor,
		Namespace: "partner",
		Status:    status,
	})

	view, err := s.Bookings(ctx, tab, query)
	if err != nil {
		return nil, msgStatusChanged, err
	}
	return view, msgStatusChanged, nil
}

// CalendarView is the bookings of one day.
type CalendarView struct {
	Date   string                 `json:"date"`
	Events []models.CalendarEvent `json:"events"`
}

// Calendar lists the bookings of date (YYYY-MM-DD). Empty means today.
func (s *Service) Calendar(ctx context.Context, date string, now time.Time) (*CalendarView, error) {
	if date == "" {
		date = now.Format(models.DateLayout)
	}
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return nil, apiclient.Invalid(msgInvalidDate)
	}
	list, err := s.api.CalendarEvents(ctx, date, date)
	if err != nil {
		return nil, apiclient.Fail(err, msgBookingsLoadFailed)
	}
	return &CalendarView{Date: date, Events: list}, nil
}

func (s *Service) publish(event string, payload events.BookingEventPayload) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishJSON(event, payload); err != nil {
		s.logger.Warn().Err(err).Str("event", event).Msg("failed to publish booking event")
	}
}
