package booking

import (
	"context"
	"fmt"
	"time"

	"farsha/internal/config"
	"farsha/internal/domain"
	"farsha/internal/events"
	"farsha/internal/logging"
	"farsha/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// API is the part of the remote API the wizard needs.
type API interface {
	GetBusiness(ctx context.Context, id string) (*models.Business, error)
	GetBusinessServices(ctx context.Context, id string) ([]models.Service, error)
	GetBusinessStaff(ctx context.Context, id string) ([]models.Staff, error)
	GetAvailableSlots(ctx context.Context, businessID string, q models.SlotQuery) ([]models.Slot, error)
	CreateBooking(ctx context.Context, req models.BookingRequest) (*models.Booking, error)
}

// Service runs the booking wizards of all visitors.
type Service struct {
	api       API
	events    domain.EventPublisher
	logger    *zerolog.Logger
	daysAhead int
	now       func() time.Time
	wizards   *wizards
}

func NewService(api API, publisher domain.EventPublisher, cfg config.BookingConfig, logger *zerolog.Logger) *Service {
	days := cfg.DaysAhead
	if days <= 0 {
		days = models.BookingDaysAhead
	}
	l := logging.Component(logger, "booking")
	return &Service{
		api:       api,
		events:    publisher,
		logger:    l,
		daysAhead: days,
		now:       time.Now,
		wizards:   newWizards(),
	}
}

// Open starts or resumes the visitor's wizard for businessID. Another
// business replaces the previous wizard. A known preselect service id
// selects it and moves to the time step.
func (s *Service) Open(ctx context.Context, visitor, businessID, preselect string) (*View, error) {
	s.wizards.mu.Lock()
	w := s.wizards.m[visitor]
	if w != nil && w.businessID == businessID {
		w.lastSeen = s.now()
		done := s.preselect(ctx, w, preselect)
		s.wizards.mu.Unlock()
		return s.settle(ctx, visitor, businessID, done)
	}
	s.wizards.mu.Unlock()

	var (
		business *models.Business
		services []models.Service
		staff    []models.Staff
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		business, err = s.api.GetBusiness(gctx, businessID)
		return err
	})
	g.Go(func() (err error) {
		services, err = s.api.GetBusinessServices(gctx, businessID)
		return err
	})
	g.Go(func() (err error) {
		staff, err = s.api.GetBusinessStaff(gctx, businessID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load business %s: %w", businessID, err)
	}

	w = &wizard{
		businessID: businessID,
		business:   business,
		services:   services,
		staff:      staff,
		step:       StepService,
		lastSeen:   s.now(),
	}

	s.wizards.mu.Lock()
	if old := s.wizards.m[visitor]; old != nil {
		old.stopFetch()
	}
	s.wizards.m[visitor] = w
	done := s.preselect(ctx, w, preselect)
	s.wizards.mu.Unlock()

	return s.settle(ctx, visitor, businessID, done)
}

// preselect applies ?service=<id>. Caller holds the lock.
func (s *Service) preselect(ctx context.Context, w *wizard, raw string) <-chan struct{} {
	if raw == "" {
		return nil
	}
	id, ok := parseID(raw)
	if !ok {
		return nil
	}
	svc := w.findService(id)
	if svc == nil {
		return nil
	}
	s.setService(w, svc)
	return s.ensureSlots(ctx, w)
}

func (s *Service) setService(w *wizard, svc *models.Service) {
	if w.service == nil || w.service.ID != svc.ID {
		w.time = ""
	}
	w.service = svc
	w.step = StepTime
}

func (s *Service) SelectService(ctx context.Context, visitor, businessID string, serviceID int64) (*View, error) {
	return s.update(ctx, visitor, businessID, func(w *wizard) error {
		svc := w.findService(serviceID)
		if svc == nil {
			return ErrUnknownService
		}
		s.setService(w, svc)
		return nil
	})
}

// SelectStaff picks a staff member. Zero clears the choice.
func (s *Service) SelectStaff(ctx context.Context, visitor, businessID string, staffID int64) (*View, error) {
	return s.update(ctx, visitor, businessID, func(w *wizard) error {
		var member *models.Staff
		if staffID != 0 {
			member = w.findStaff(staffID)
			if member == nil {
				return ErrUnknownStaff
			}
		}
		prev := int64(0)
		if w.member != nil {
			prev = w.member.ID
		}
		if prev != staffID {
			w.time = ""
		}
		w.member = member
		return nil
	})
}

func (s *Service) SelectDate(ctx context.Context, visitor, businessID, date string) (*View, error) {
	return s.update(ctx, visitor, businessID, func(w *wizard) error {
		if !s.inWindow(date) {
			return ErrDateOutOfRange
		}
		if w.date != date {
			w.time = ""
		}
		w.date = date
		return nil
	})
}

// SelectTime requires a loaded slot with that label marked available.
func (s *Service) SelectTime(ctx context.Context, visitor, businessID, label string) (*View, error) {
	return s.update(ctx, visitor, businessID, func(w *wizard) error {
		key, ok := w.currentKey()
		if !ok || w.fetch != nil || !w.slotsLoaded || w.slotsFor != key || !w.slotAvailable(label) {
			return ErrSlotUnavailable
		}
		w.time = label
		return nil
	})
}

func (s *Service) SetNotes(ctx context.Context, visitor, businessID, notes string) (*View, error) {
	return s.update(ctx, visitor, businessID, func(w *wizard) error {
		w.notes = notes
		return nil
	})
}

// GoTo moves between steps. Going back is always allowed; going forward
// needs the selections of the earlier steps.
func (s *Service) GoTo(ctx context.Context, visitor, businessID string, step Step) (*View, error) {
	return s.update(ctx, visitor, businessID, func(w *wizard) error {
		switch step {
		case StepService:
		case StepTime:
			if w.service == nil {
				return ErrServiceRequired
			}
		case StepConfirm:
			if err := w.validate(); err != nil {
				return err
			}
		default:
			return ErrInvalidStep
		}
		w.step = step
		return nil
	})
}

func (w *wizard) validate() error {
	switch {
	case w.service == nil:
		return ErrServiceRequired
	case w.date == "":
		return ErrDateRequired
	case w.time == "":
		return ErrTimeRequired
	}
	return nil
}

// View returns the current page model of the visitor's wizard.
func (s *Service) View(visitor, businessID string) (*View, error) {
	s.wizards.mu.Lock()
	defer s.wizards.mu.Unlock()
	w := s.wizards.m[visitor]
	if w == nil || w.businessID != businessID {
		return nil, ErrWizardNotStarted
	}
	return w.view(s.days()), nil
}

// Confirm creates the booking. Without a customer session it returns a
// LoginRequiredError and keeps the wizard for the visitor's return.
func (s *Service) Confirm(ctx context.Context, visitor, businessID string, signedIn bool) (*models.Booking, error) {
	if !signedIn {
		return nil, &LoginRequiredError{ReturnPath: ReturnPath(businessID)}
	}

	s.wizards.mu.Lock()
	w := s.wizards.m[visitor]
	if w == nil || w.businessID != businessID {
		s.wizards.mu.Unlock()
		return nil, ErrWizardNotStarted
	}
	if err := w.validate(); err != nil {
		s.wizards.mu.Unlock()
		return nil, err
	}
	req := models.BookingRequest{
		Business: businessID,
		Service:  w.service.ID,
		Date:     w.date,
		Time:     w.time,
		Notes:    w.notes,
	}
	if w.member != nil {
		id := w.member.ID
		req.Staff = &id
	}
	s.wizards.mu.Unlock()

	created, err := s.api.CreateBooking(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.wizards.mu.Lock()
	if s.wizards.m[visitor] == w {
		w.stopFetch()
		delete(s.wizards.m, visitor)
	}
	s.wizards.mu.Unlock()

	payload := events.BookingEventPayload{
		BusinessID: businessID,
		Visitor:    visitor,
		Namespace:  "customer",
		Date:       req.Date,
		Time:       req.Time,
	}
	if created != nil {
		payload.BookingID = created.ID
		payload.Status = created.Status
	}
	if s.events != nil {
		if err := s.events.PublishJSON(events.EventBookingCreated, payload); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish booking event")
		}
	}
	s.logger.Info().Str("visitor", visitor).Str("business", businessID).Str("date", req.Date).Str("time", req.Time).Msg("booking created")
	return created, nil
}

// Reset drops the visitor's wizard.
func (s *Service) Reset(visitor string) {
	s.wizards.mu.Lock()
	defer s.wizards.mu.Unlock()
	if w := s.wizards.m[visitor]; w != nil {
		w.stopFetch()
		delete(s.wizards.m, visitor)
	}
}

// Sweep drops wizards idle longer than idle.
func (s *Service) Sweep(idle time.Duration) int {
	s.wizards.mu.Lock()
	defer s.wizards.mu.Unlock()
	cutoff := s.now().Add(-idle)
	n := 0
	for v, w := range s.wizards.m {
		if w.lastSeen.Before(cutoff) {
			w.stopFetch()
			delete(s.wizards.m, v)
			n++
		}
	}
	return n
}

func (s *Service) update(ctx context.Context, visitor, businessID string, fn func(w *wizard) error) (*View, error) {
	s.wizards.mu.Lock()
	w := s.wizards.m[visitor]
	if w == nil || w.businessID != businessID {
		s.wizards.mu.Unlock()
		return nil, ErrWizardNotStarted
	}
	w.lastSeen = s.now()
	if err := fn(w); err != nil {
		s.wizards.mu.Unlock()
		return nil, err
	}
	done := s.ensureSlots(ctx, w)
	s.wizards.mu.Unlock()

	return s.settle(ctx, visitor, businessID, done)
}

// settle waits for a running slot fetch, bounded by ctx, then renders.
func (s *Service) settle(ctx context.Context, visitor, businessID string, done <-chan struct{}) (*View, error) {
	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
		}
	}
	return s.View(visitor, businessID)
}

// ensureSlots starts a fetch when the selection key changed. Caller
// holds the lock. The returned channel closes when the current fetch
// ends.
func (s *Service) ensureSlots(ctx context.Context, w *wizard) <-chan struct{} {
	key, ok := w.currentKey()
	if !ok {
		w.stopFetch()
		w.slots = nil
		w.slotsError = ""
		w.slotsLoaded = false
		return nil
	}
	if w.fetch != nil && w.fetch.key == key {
		return w.fetch.done
	}
	if w.fetch == nil && w.slotsLoaded && w.slotsFor == key {
		return nil
	}

	w.stopFetch()
	w.slots = nil
	w.slotsError = ""
	w.slotsLoaded = false

	fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	f := &slotFetch{key: key, cancel: cancel, done: make(chan struct{})}
	w.fetch = f
	businessID := w.businessID

	go func() {
		defer close(f.done)
		defer cancel()

		slots, err := s.api.GetAvailableSlots(fctx, businessID, models.SlotQuery{
			Service: key.service,
			Staff:   key.staff,
			Date:    key.date,
		})

		s.wizards.mu.Lock()
		defer s.wizards.mu.Unlock()
		if w.fetch != f {
			// superseded by a newer selection
			return
		}
		w.fetch = nil
		w.slotsFor = key
		w.slotsLoaded = true
		if err != nil {
			s.logger.Warn().Err(err).Str("business", businessID).Str("date", key.date).Msg("slot fetch failed")
			w.slots = nil
			w.slotsError = msgSlotsFailed
			return
		}
		w.slots = slots
		w.slotsError = ""
	}()
	return f.done
}

func (s *Service) inWindow(date string) bool {
	now := s.now()
	day, err := time.ParseInLocation(models.DateLayout, date, now.Location())
	if err != nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return !day.Before(today) && day.Before(today.AddDate(0, 0, s.daysAhead))
}

func (s *Service) days() []Day {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	out := make([]Day, 0, s.daysAhead)
	for i := 0; i < s.daysAhead; i++ {
		d := today.AddDate(0, 0, i)
		out = append(out, Day{Date: d.Format(models.DateLayout), Weekday: weekdayNames[d.Weekday()]})
	}
	return out
}
