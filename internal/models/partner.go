package models

type DashboardStats struct {
	TotalBookings     int     `json:"total_bookings"`
	CompletedBookings int     `json:"completed_bookings"`
	CancelledBookings int     `json:"cancelled_bookings"`
	PendingBookings   int     `json:"pending_bookings"`
	TotalRevenue      Amount  `json:"total_revenue"`
	AverageRating     float64 `json:"average_rating"`
	TodayBookings     int     `json:"today_bookings"`
	Period            string  `json:"period"`
}

type RevenuePoint struct {
	Date    string `json:"date"`
	Revenue Amount `json:"revenue"`
	Count   int    `json:"count,omitempty"`
}

type PopularService struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	TotalBookings int    `json:"total_bookings"`
	Revenue       Amount `json:"revenue,omitempty"`
}

// Customer is a partner's view of someone who booked with the business.
type Customer struct {
	ID            int64  `json:"id"`
	FullName      string `json:"full_name"`
	PhoneNumber   string `json:"phone_number"`
	Email         string `json:"email,omitempty"`
	TotalBookings int    `json:"total_bookings"`
	TotalSpent    Amount `json:"total_spent,omitempty"`
	LastBooking   string `json:"last_booking,omitempty"`
}
