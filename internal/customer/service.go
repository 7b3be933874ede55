package customer

import (
	"context"

	"farsha/internal/apiclient"
	"farsha/internal/domain"
	"farsha/internal/logging"
	"farsha/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// API is the customer side of the remote API.
type API interface {
	GetCategories(ctx context.Context) ([]models.Category, error)
	GetCities(ctx context.Context) ([]models.City, error)
	GetAreas(ctx context.Context, cityID int64) ([]models.Area, error)
	SearchBusinesses(ctx context.Context, s models.BusinessSearch) ([]models.Business, error)
	GetBusiness(ctx context.Context, id string) (*models.Business, error)
	GetBusinessServices(ctx context.Context, id string) ([]models.Service, error)
	GetBusinessStaff(ctx context.Context, id string) ([]models.Staff, error)
	GetBusinessReviews(ctx context.Context, id string) ([]models.Review, error)

	MyBookings(ctx context.Context, status string) ([]models.Booking, error)
	CancelBooking(ctx context.Context, id int64, reason string) error
	RescheduleBooking(ctx context.Context, id int64, req models.RescheduleRequest) error
	RateBooking(ctx context.Context, id int64, req models.RateRequest) error

	ChangePassword(ctx context.Context, req models.ChangePasswordRequest) (*apiclient.MessageResponse, error)
	SendOTP(ctx context.Context, phone string) (*apiclient.MessageResponse, error)
	ForgotPassword(ctx context.Context, phone string) (*apiclient.MessageResponse, error)
	ResetPassword(ctx context.Context, req models.ResetPasswordRequest) (*apiclient.MessageResponse, error)
}

// Service backs the public and customer pages.
type Service struct {
	api    API
	events domain.EventPublisher
	logger *zerolog.Logger
}

func NewService(api API, publisher domain.EventPublisher, logger *zerolog.Logger) *Service {
	l := logging.Component(logger, "customer")
	return &Service{api: api, events: publisher, logger: l}
}

// HomeView is the landing page.
type HomeView struct {
	Categories []models.Category `json:"categories"`
	Featured   []models.Business `json:"featured"`
	Cities     []models.City     `json:"cities"`
}

// Home loads categories, featured businesses and cities concurrently.
func (s *Service) Home(ctx context.Context) (*HomeView, error) {
	var v HomeView
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		v.Categories, err = s.api.GetCategories(gctx)
		return err
	})
	g.Go(func() (err error) {
		v.Featured, err = s.api.SearchBusinesses(gctx, models.BusinessSearch{Featured: true, Limit: models.FeaturedLimit})
		return err
	})
	g.Go(func() (err error) {
		v.Cities, err = s.api.GetCities(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apiclient.Fail(err, msgLoadFailed)
	}
	return &v, nil
}

// SearchView is the search page with its filter options.
type SearchView struct {
	Query      models.BusinessSearch `json:"query"`
	Results    []models.Business     `json:"results"`
	Categories []models.Category     `json:"categories"`
	Cities     []models.City         `json:"cities"`
}

// Search runs a business search. The filter lists are best effort; an
// unavailable list is shown empty.
func (s *Service) Search(ctx context.Context, q models.BusinessSearch) (*SearchView, error) {
	if q.Sort == "" {
		q.Sort = models.DefaultSearchSort
	}
	v := SearchView{Query: q, Categories: []models.Category{}, Cities: []models.City{}}

	var g errgroup.Group
	g.Go(func() error {
		list, err := s.api.GetCategories(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("categories unavailable")
			return nil
		}
		v.Categories = list
		return nil
	})
	g.Go(func() error {
		list, err := s.api.GetCities(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("cities unavailable")
			return nil
		}
		v.Cities = list
		return nil
	})
	g.Go(func() (err error) {
		v.Results, err = s.api.SearchBusinesses(ctx, q)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apiclient.Fail(err, msgSearchFailed)
	}
	return &v, nil
}

// BusinessView is the business detail page.
type BusinessView struct {
	Business *models.Business `json:"business"`
	Services []models.Service `json:"services"`
	Staff    []models.Staff   `json:"staff"`
	Reviews  []models.Review  `json:"reviews"`
}

func (s *Service) Business(ctx context.Context, id string) (*BusinessView, error) {
	var v BusinessView
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		v.Business, err = s.api.GetBusiness(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		v.Services, err = s.api.GetBusinessServices(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		v.Staff, err = s.api.GetBusinessStaff(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		v.Reviews, err = s.api.GetBusinessReviews(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apiclient.Fail(err, msgLoadFailed)
	}
	return &v, nil
}

// Areas lists the areas of a city for the location filter.
func (s *Service) Areas(ctx context.Context, cityID int64) ([]models.Area, error) {
	list, err := s.api.GetAreas(ctx, cityID)
	if err != nil {
		return nil, apiclient.Fail(err, msgLoadFailed)
	}
	return list, nil
}
