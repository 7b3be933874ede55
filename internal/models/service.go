package models

type Service struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Description        string    `json:"description,omitempty"`
	Category           *Category `json:"category,omitempty"`
	Price              Amount    `json:"price"`
	DiscountedPrice    *Amount   `json:"discounted_price,omitempty"`
	FinalPrice         Amount    `json:"final_price,omitempty"`
	DiscountPercentage int       `json:"discount_percentage,omitempty"`
	DurationMinutes    int       `json:"duration_minutes"`
	GenderTarget       string    `json:"gender_target,omitempty"`
	Image              string    `json:"image,omitempty"`
	IsPopular          bool      `json:"is_popular,omitempty"`
	IsActive           bool      `json:"is_active"`
	TotalBookings      int       `json:"total_bookings,omitempty"`
}

// ServiceInput is the create/update payload of the partner services screen.
type ServiceInput struct {
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	Price           Amount  `json:"price"`
	DiscountedPrice *Amount `json:"discounted_price,omitempty"`
	DurationMinutes int     `json:"duration_minutes"`
	GenderTarget    string  `json:"gender_target,omitempty"`
	IsActive        bool    `json:"is_active"`
}

type StaffSchedule struct {
	ID             int64  `json:"id,omitempty"`
	Weekday        int    `json:"weekday"`
	WeekdayDisplay string `json:"weekday_display,omitempty"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	IsAvailable    bool   `json:"is_available"`
}

type Staff struct {
	ID                int64           `json:"id"`
	Name              string          `json:"name"`
	Gender            string          `json:"gender,omitempty"`
	Phone             string          `json:"phone,omitempty"`
	Avatar            string          `json:"avatar,omitempty"`
	Bio               string          `json:"bio,omitempty"`
	Title             string          `json:"title,omitempty"`
	ExperienceYears   int             `json:"experience_years,omitempty"`
	Specialties       []int64         `json:"specialties,omitempty"`
	IsActive          bool            `json:"is_active"`
	CanAcceptBookings bool            `json:"can_accept_bookings,omitempty"`
	Schedules         []StaffSchedule `json:"schedules,omitempty"`
}

type StaffInput struct {
	Name            string  `json:"name"`
	Gender          string  `json:"gender"`
	Phone           string  `json:"phone,omitempty"`
	Bio             string  `json:"bio,omitempty"`
	Title           string  `json:"title,omitempty"`
	ExperienceYears int     `json:"experience_years,omitempty"`
	Specialties     []int64 `json:"specialties,omitempty"`
	IsActive        bool    `json:"is_active"`
}
