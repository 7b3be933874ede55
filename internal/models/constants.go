package models

const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusNoShow     = "no_show"
)

// Tabs of the partner bookings screen. TabAll sends no status filter.
const (
	TabAll       = "all"
	TabPending   = StatusPending
	TabConfirmed = StatusConfirmed
	TabCompleted = StatusCompleted
	TabCancelled = StatusCancelled
)

// Tabs of the customer "my bookings" screen.
const (
	TabUpcoming = "upcoming"
	TabPast     = "past"

	UpcomingStatuses = StatusConfirmed + "," + StatusPending
	PastStatuses     = StatusCompleted + "," + StatusCancelled
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	// BookingDaysAhead is how many days (today included) the wizard offers.
	BookingDaysAhead = 14

	// FeaturedLimit is the number of featured businesses on the home page.
	FeaturedLimit = 8

	DefaultSearchSort = "popular"
)

// PartnerTabs lists partner booking tabs in display order.
var PartnerTabs = []string{TabAll, TabPending, TabConfirmed, TabCompleted, TabCancelled}

// StatusLabel returns the Persian badge text for a booking status.
// Unknown statuses fall back to the pending label.
func StatusLabel(status string) string {
	switch status {
	case StatusConfirmed:
		return "تایید شده"
	case StatusCompleted:
		return "انجام شده"
	case StatusCancelled:
		return "لغو شده"
	default:
		return "در انتظار تایید"
	}
}
