package web

import (
	"errors"
	"net/http"

	"farsha/internal/apiclient"
	"farsha/internal/booking"
	"farsha/internal/session"

	"github.com/go-chi/chi/v5"
)

const myBookingsPath = "/my-bookings"

type bookingForm struct {
	Service int64        `json:"service"`
	Staff   int64        `json:"staff"`
	Date    string       `json:"date"`
	Time    string       `json:"time"`
	Notes   string       `json:"notes"`
	Step    booking.Step `json:"step"`
}

// wizardCall runs one wizard operation and renders the resulting view.
func (s *Server) wizardCall(w http.ResponseWriter, r *http.Request, op func(visitor, businessID string, form bookingForm) (*booking.View, error)) {
	var form bookingForm
	if err := decode(r, &form); err != nil {
		badRequest(w)
		return
	}
	v, err := op(session.VisitorFrom(r.Context()), chi.URLParam(r, "businessID"), form)
	if err != nil {
		s.failBooking(w, r, err)
		return
	}
	writeData(w, v)
}

func (s *Server) failBooking(w http.ResponseWriter, r *http.Request, err error) {
	if apiclient.IsUnauthorized(err) || booking.IsValidation(err) {
		s.fail(w, r, customerNS, err)
		return
	}
	s.fail(w, r, customerNS, &apiclient.OpError{Message: booking.ErrorMessage(err), Err: err})
}

func (s *Server) handleBookingOpen(w http.ResponseWriter, r *http.Request) {
	v, err := s.deps.Booking.Open(r.Context(), session.VisitorFrom(r.Context()), chi.URLParam(r, "businessID"), r.URL.Query().Get("service"))
	if err != nil {
		if !apiclient.IsUnauthorized(err) {
			err = &apiclient.OpError{Message: booking.LoadErrorMessage(err), Err: err}
		}
		s.fail(w, r, customerNS, err)
		return
	}
	writeData(w, v)
}

func (s *Server) handleBookingService(w http.ResponseWriter, r *http.Request) {
	s.wizardCall(w, r, func(visitor, businessID string, f bookingForm) (*booking.View, error) {
		return s.deps.Booking.SelectService(r.Context(), visitor, businessID, f.Service)
	})
}

func (s *Server) handleBookingStaff(w http.ResponseWriter, r *http.Request) {
	s.wizardCall(w, r, func(visitor, businessID string, f bookingForm) (*booking.View, error) {
		return s.deps.Booking.SelectStaff(r.Context(), visitor, businessID, f.Staff)
	})
}

func (s *Server) handleBookingDate(w http.ResponseWriter, r *http.Request) {
	s.wizardCall(w, r, func(visitor, businessID string, f bookingForm) (*booking.View, error) {
		return s.deps.Booking.SelectDate(r.Context(), visitor, businessID, f.Date)
	})
}

func (s *Server) handleBookingTime(w http.ResponseWriter, r *http.Request) {
	s.wizardCall(w, r, func(visitor, businessID string, f bookingForm) (*booking.View, error) {
		return s.deps.Booking.SelectTime(r.Context(), visitor, businessID, f.Time)
	})
}

func (s *Server) handleBookingNotes(w http.ResponseWriter, r *http.Request) {
	s.wizardCall(w, r, func(visitor, businessID string, f bookingForm) (*booking.View, error) {
		return s.deps.Booking.SetNotes(r.Context(), visitor, businessID, f.Notes)
	})
}

func (s *Server) handleBookingStep(w http.ResponseWriter, r *http.Request) {
	s.wizardCall(w, r, func(visitor, businessID string, f bookingForm) (*booking.View, error) {
		return s.deps.Booking.GoTo(r.Context(), visitor, businessID, f.Step)
	})
}

// handleBookingConfirm creates the booking. Visitors without a customer
// session are sent to login and come back to the wizard afterwards.
func (s *Server) handleBookingConfirm(w http.ResponseWriter, r *http.Request) {
	visitor := session.VisitorFrom(r.Context())
	businessID := chi.URLParam(r, "businessID")

	ctx, cancel := s.resolveCtx(r)
	signedIn := s.deps.Customers.Resolve(ctx, visitor).Authenticated()
	cancel()

	_, err := s.deps.Booking.Confirm(r.Context(), visitor, businessID, signedIn)
	var loginErr *booking.LoginRequiredError
	switch {
	case errors.As(err, &loginErr):
		redirect(w, loginURL(customerNS.LoginPath, loginErr.ReturnPath), nil)
	case err != nil:
		s.failBooking(w, r, err)
	default:
		redirect(w, myBookingsPath, toast(LevelSuccess, booking.SuccessMessage()))
	}
}

func (s *Server) handleBookingReset(w http.ResponseWriter, r *http.Request) {
	s.deps.Booking.Reset(session.VisitorFrom(r.Context()))
	redirect(w, "/business/"+chi.URLParam(r, "businessID"), nil)
}
