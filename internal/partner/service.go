package partner

import (
	"context"

	"farsha/internal/config"
	"farsha/internal/domain"
	"farsha/internal/logging"
	"farsha/internal/models"

	"github.com/rs/zerolog"
)

// API is the partner side of the remote API.
type API interface {
	PartnerBookings(ctx context.Context, status string) ([]models.Booking, error)
	PartnerBooking(ctx context.Context, id int64) (*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id int64, status string) error
	CalendarEvents(ctx context.Context, start, end string) ([]models.CalendarEvent, error)

	PartnerServices(ctx context.Context) ([]models.Service, error)
	CreateService(ctx context.Context, in models.ServiceInput) (*models.Service, error)
	UpdateService(ctx context.Context, id int64, in models.ServiceInput) (*models.Service, error)
	DeleteService(ctx context.Context, id int64) error
	ToggleServiceStatus(ctx context.Context, id int64) error

	PartnerStaff(ctx context.Context) ([]models.Staff, error)
	CreateStaff(ctx context.Context, in models.StaffInput) (*models.Staff, error)
	UpdateStaff(ctx context.Context, id int64, in models.StaffInput) (*models.Staff, error)
	DeleteStaff(ctx context.Context, id int64) error
	StaffSchedule(ctx context.Context, id int64, week string) ([]models.StaffSchedule, error)
	UpdateStaffSchedule(ctx context.Context, id int64, schedule []models.StaffSchedule) error

	PartnerCustomers(ctx context.Context, search string) ([]models.Customer, error)
	PartnerCustomer(ctx context.Context, id int64) (*models.Customer, error)
	PartnerCustomerHistory(ctx context.Context, id int64) ([]models.Booking, error)

	DashboardStats(ctx context.Context, period string) (*models.DashboardStats, error)
	RecentBookings(ctx context.Context) ([]models.Booking, error)
	Revenue(ctx context.Context, period string) ([]models.RevenuePoint, error)
	PopularServices(ctx context.Context) ([]models.PopularService, error)
}

// Service backs the partner panel pages.
type Service struct {
	api    API
	events domain.EventPublisher
	logger *zerolog.Logger
	sheet  string
}

func NewService(api API, publisher domain.EventPublisher, cfg config.ExportConfig, logger *zerolog.Logger) *Service {
	sheet := cfg.SheetName
	if sheet == "" {
		sheet = defaultSheetName
	}
	l := logging.Component(logger, "partner")
	return &Service{api: api, events: publisher, logger: l, sheet: sheet}
}
