package models

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	NameEn      string `json:"name_en,omitempty"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

type City struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	NameEn   string `json:"name_en,omitempty"`
	Slug     string `json:"slug"`
	Province string `json:"province,omitempty"`
}

type Area struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	NameEn string `json:"name_en,omitempty"`
	Slug   string `json:"slug"`
	City   int64  `json:"city,omitempty"`
}

type BusinessImage struct {
	ID      int64  `json:"id"`
	Image   string `json:"image"`
	Caption string `json:"caption,omitempty"`
	Order   int    `json:"order"`
}

// Business is fetched and updated as a unit; updates replace it whole.
type Business struct {
	ID                        int64           `json:"id"`
	Slug                      string          `json:"slug"`
	Name                      string          `json:"name"`
	Description               string          `json:"description,omitempty"`
	Logo                      string          `json:"logo,omitempty"`
	CoverImage                string          `json:"cover_image,omitempty"`
	Category                  *Category       `json:"category,omitempty"`
	City                      *City           `json:"city,omitempty"`
	Area                      *Area           `json:"area,omitempty"`
	Address                   string          `json:"address"`
	Latitude                  *Amount         `json:"latitude,omitempty"`
	Longitude                 *Amount         `json:"longitude,omitempty"`
	Phone                     string          `json:"phone,omitempty"`
	Whatsapp                  string          `json:"whatsapp,omitempty"`
	Instagram                 string          `json:"instagram,omitempty"`
	Telegram                  string          `json:"telegram,omitempty"`
	Website                   string          `json:"website,omitempty"`
	GenderTarget              string          `json:"gender_target,omitempty"`
	OpensAt                   string          `json:"opens_at,omitempty"`
	ClosesAt                  string          `json:"closes_at,omitempty"`
	ClosedDays                []int           `json:"closed_days,omitempty"`
	AverageRating             Amount          `json:"average_rating"`
	TotalReviews              int             `json:"total_reviews"`
	TotalBookings             int             `json:"total_bookings"`
	IsFeatured                bool            `json:"is_featured"`
	AllowOnlineBooking        bool            `json:"allow_online_booking"`
	AutoConfirmBooking        bool            `json:"auto_confirm_booking"`
	BookingAdvanceDays        int             `json:"booking_advance_days,omitempty"`
	CancellationDeadlineHours int             `json:"cancellation_deadline_hours,omitempty"`
	SlotDurationMinutes       int             `json:"slot_duration_minutes,omitempty"`
	Images                    []BusinessImage `json:"images,omitempty"`
	StaffMembers              []Staff         `json:"staff_members,omitempty"`
	CreatedAt                 string          `json:"created_at,omitempty"`
}

// BusinessUpdate is the partner settings payload. Fields left nil are
// not sent.
type BusinessUpdate struct {
	Name                      *string `json:"name,omitempty"`
	Description               *string `json:"description,omitempty"`
	Address                   *string `json:"address,omitempty"`
	Phone                     *string `json:"phone,omitempty"`
	Whatsapp                  *string `json:"whatsapp,omitempty"`
	Instagram                 *string `json:"instagram,omitempty"`
	Website                   *string `json:"website,omitempty"`
	OpensAt                   *string `json:"opens_at,omitempty"`
	ClosesAt                  *string `json:"closes_at,omitempty"`
	ClosedDays                []int   `json:"closed_days,omitempty"`
	SlotDurationMinutes       *int    `json:"slot_duration_minutes,omitempty"`
	BookingAdvanceDays        *int    `json:"booking_advance_days,omitempty"`
	CancellationDeadlineHours *int    `json:"cancellation_deadline_hours,omitempty"`
	AllowOnlineBooking        *bool   `json:"allow_online_booking,omitempty"`
	AutoConfirmBooking        *bool   `json:"auto_confirm_booking,omitempty"`
}

// BusinessSearch holds the public search filters.
type BusinessSearch struct {
	Query    string `json:"q,omitempty"`
	Category string `json:"category,omitempty"`
	City     string `json:"city,omitempty"`
	Sort     string `json:"sort,omitempty"`
	Featured bool   `json:"featured,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

type Reviewer struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
}

type Review struct {
	ID             int64     `json:"id"`
	Customer       *Reviewer `json:"customer,omitempty"`
	Rating         int       `json:"rating"`
	ServiceQuality int       `json:"service_quality,omitempty"`
	Cleanliness    int       `json:"cleanliness,omitempty"`
	StaffBehavior  int       `json:"staff_behavior,omitempty"`
	ValueForMoney  int       `json:"value_for_money,omitempty"`
	Title          string    `json:"title,omitempty"`
	Comment        string    `json:"comment"`
	IsVerified     bool      `json:"is_verified"`
	Response       string    `json:"response,omitempty"`
	CreatedAt      string    `json:"created_at,omitempty"`
}
