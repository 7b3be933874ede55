package partner

import (
	"context"

	"farsha/internal/apiclient"
	"farsha/internal/models"

	"golang.org/x/sync/errgroup"
)

// DashboardView is the partner home screen.
type DashboardView struct {
	Stats           *models.DashboardStats  `json:"stats"`
	RecentBookings  []BookingRow            `json:"recent_bookings"`
	Revenue         []models.RevenuePoint   `json:"revenue"`
	PopularServices []models.PopularService `json:"popular_services"`
}

// Dashboard loads the four dashboard panels concurrently. Any failure
// fails the page.
func (s *Service) Dashboard(ctx context.Context, period string) (*DashboardView, error) {
	var (
		stats   *models.DashboardStats
		recent  []models.Booking
		revenue []models.RevenuePoint
		popular []models.PopularService
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats, err = s.api.DashboardStats(gctx, period)
		return err
	})
	g.Go(func() (err error) {
		recent, err = s.api.RecentBookings(gctx)
		return err
	})
	g.Go(func() (err error) {
		revenue, err = s.api.Revenue(gctx, period)
		return err
	})
	g.Go(func() (err error) {
		popular, err = s.api.PopularServices(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apiclient.Fail(err, msgDashboardLoadFailed)
	}

	rows := make([]BookingRow, 0, len(recent))
	for _, b := range recent {
		rows = append(rows, toRow(b))
	}
	return &DashboardView{
		Stats:           stats,
		RecentBookings:  rows,
		Revenue:         revenue,
		PopularServices: popular,
	}, nil
}

// CustomerView is one customer with the booking history.
type CustomerView struct {
	Customer *models.Customer `json:"customer"`
	History  []BookingRow     `json:"history"`
}

// Customers lists the business customers. search is passed to the server.
func (s *Service) Customers(ctx context.Context, search string) ([]models.Customer, error) {
	list, err := s.api.PartnerCustomers(ctx, search)
	if err != nil {
		return nil, apiclient.Fail(err, msgCustomersLoadFailed)
	}
	return list, nil
}

func (s *Service) Customer(ctx context.Context, id int64) (*CustomerView, error) {
	var (
		customer *models.Customer
		history  []models.Booking
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		customer, err = s.api.PartnerCustomer(gctx, id)
		if err != nil {
			return apiclient.Fail(err, msgCustomersLoadFailed)
		}
		return nil
	})
	g.Go(func() (err error) {
		history, err = s.api.PartnerCustomerHistory(gctx, id)
		if err != nil {
			return apiclient.Fail(err, msgHistoryLoadFailed)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rows := make([]BookingRow, 0, len(history))
	for _, b := range history {
		rows = append(rows, toRow(b))
	}
	return &CustomerView{Customer: customer, History: rows}, nil
}
