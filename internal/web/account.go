package web

import (
	"net/http"

	"farsha/internal/models"
	"farsha/internal/session"
)

func (s *Server) handleMyBookings(w http.ResponseWriter, r *http.Request) {
	v, err := s.deps.Pages.MyBookings(r.Context(), r.URL.Query().Get("tab"))
	if err != nil {
		s.fail(w, r, customerNS, err)
		return
	}
	writeData(w, v)
}

type cancelForm struct {
	Reason string `json:"reason"`
}

func (s *Server) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	var form cancelForm
	if !ok || decode(r, &form) != nil {
		badRequest(w)
		return
	}
	v, msg, err := s.deps.Pages.CancelBooking(r.Context(), session.VisitorFrom(r.Context()), id, form.Reason, r.URL.Query().Get("tab"))
	s.writeDone(w, r, customerNS, v, msg, err)
}

func (s *Server) handleRescheduleBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	var req models.RescheduleRequest
	if !ok || decode(r, &req) != nil {
		badRequest(w)
		return
	}
	v, msg, err := s.deps.Pages.RescheduleBooking(r.Context(), session.VisitorFrom(r.Context()), id, req, r.URL.Query().Get("tab"))
	s.writeDone(w, r, customerNS, v, msg, err)
}

func (s *Server) handleRateBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	var req models.RateRequest
	if !ok || decode(r, &req) != nil {
		badRequest(w)
		return
	}
	// ratings are given from the past tab
	tab := r.URL.Query().Get("tab")
	if tab == "" {
		tab = models.TabPast
	}
	v, msg, err := s.deps.Pages.RateBooking(r.Context(), id, req, tab)
	s.writeDone(w, r, customerNS, v, msg, err)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	writeData(w, SessionFrom[models.User](r.Context()).Principal)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var upd models.ProfileUpdate
	if err := decode(r, &upd); err != nil {
		badRequest(w)
		return
	}
	visitor := session.VisitorFrom(r.Context())
	res := s.deps.Customers.Update(r.Context(), visitor, upd)
	st := s.deps.Customers.Snapshot(visitor)
	switch {
	case !st.Authenticated():
		s.toLogin(w, r, customerNS)
	case !res.Success:
		sessionResult(w, res, "")
	default:
		writeJSON(w, http.StatusOK, Response{Data: st.Session.Principal, Toast: toast(LevelSuccess, res.Message)})
	}
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req models.ChangePasswordRequest
	if err := decode(r, &req); err != nil {
		badRequest(w)
		return
	}
	msg, err := s.deps.Pages.ChangePassword(r.Context(), req)
	if err != nil {
		s.fail(w, r, customerNS, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Toast: toast(LevelSuccess, msg)})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	res := s.deps.Customers.Logout(r.Context(), session.VisitorFrom(r.Context()))
	s.deps.Booking.Reset(session.VisitorFrom(r.Context()))
	sessionResult(w, res, customerNS.HomePath)
}
