package web

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"farsha/internal/models"
	"farsha/internal/session"

	"github.com/go-chi/chi/v5"
)

var customerNS = session.CustomerNamespace

func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	v, err := s.deps.Pages.Home(r.Context())
	if err != nil {
		s.fail(w, r, customerNS, err)
		return
	}
	writeData(w, v)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	v, err := s.deps.Pages.Search(r.Context(), models.BusinessSearch{
		Query:    strings.TrimSpace(q.Get("q")),
		Category: q.Get("category"),
		City:     q.Get("city"),
		Sort:     q.Get("sort"),
	})
	if err != nil {
		s.fail(w, r, customerNS, err)
		return
	}
	writeData(w, v)
}

func (s *Server) handleAreas(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		badRequest(w)
		return
	}
	list, err := s.deps.Pages.Areas(r.Context(), id)
	if err != nil {
		s.fail(w, r, customerNS, err)
		return
	}
	writeData(w, list)
}

func (s *Server) handleBusiness(w http.ResponseWriter, r *http.Request) {
	v, err := s.deps.Pages.Business(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, customerNS, err)
		return
	}
	writeData(w, v)
}

// stateView is the public shape of one namespace session.
type stateView struct {
	Status    session.Status   `json:"status"`
	Loading   bool             `json:"loading"`
	Principal any              `json:"principal,omitempty"`
	Business  *models.Business `json:"business,omitempty"`
}

func viewOf[P any](st session.State[P]) stateView {
	v := stateView{Status: st.Status, Loading: st.Loading}
	if st.Session != nil {
		v.Principal = st.Session.Principal
		v.Business = st.Session.Business
	}
	return v
}

func (s *Server) resolveCtx(r *http.Request) (context.Context, context.CancelFunc) {
	if wait := s.cfg.GuardWait(); wait > 0 {
		return context.WithTimeout(r.Context(), wait)
	}
	return context.WithCancel(r.Context())
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.resolveCtx(r)
	defer cancel()
	visitor := session.VisitorFrom(r.Context())
	writeData(w, map[string]stateView{
		"customer": viewOf(s.deps.Customers.Resolve(ctx, visitor)),
		"partner":  viewOf(s.deps.Partners.Resolve(ctx, visitor)),
	})
}

type loginForm struct {
	models.Credentials
	Next string `json:"next"`
}

func (f loginForm) next(r *http.Request, fallback string) string {
	if f.Next != "" {
		return safeNext(f.Next, fallback)
	}
	return safeNext(r.URL.Query().Get("next"), fallback)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var form loginForm
	if err := decode(r, &form); err != nil {
		badRequest(w)
		return
	}
	res := s.deps.Customers.Login(r.Context(), session.VisitorFrom(r.Context()), form.Credentials)
	sessionResult(w, res, form.next(r, customerNS.HomePath))
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decode(r, &req); err != nil {
		badRequest(w)
		return
	}
	res := s.deps.Customers.Register(r.Context(), session.VisitorFrom(r.Context()), req)
	location := customerNS.HomePath
	if res.Outcome == session.OutcomeVerificationRequired {
		location = "/verify-otp?phone=" + url.QueryEscape(res.Phone)
	}
	sessionResult(w, res, location)
}

func (s *Server) handleSendOTP(w http.ResponseWriter, r *http.Request) {
	var req models.OTPRequest
	if err := decode(r, &req); err != nil {
		badRequest(w)
		return
	}
	msg, expiresIn, err := s.deps.Pages.SendOTP(r.Context(), req.PhoneNumber)
	if err != nil {
		s.fail(w, r, customerNS, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{
		Data:  map[string]int{"expires_in": expiresIn},
		Toast: toast(LevelSuccess, msg),
	})
}

func (s *Server) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req models.OTPRequest
	if err := decode(r, &req); err != nil {
		badRequest(w)
		return
	}
	res := s.deps.Customers.VerifyOTP(r.Context(), session.VisitorFrom(r.Context()), req)
	location := customerNS.HomePath
	if res.Outcome == session.OutcomeVerified {
		location = customerNS.LoginPath
	}
	sessionResult(w, res, location)
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req models.OTPRequest
	if err := decode(r, &req); err != nil {
		badRequest(w)
		return
	}
	msg, err := s.deps.Pages.ForgotPassword(r.Context(), req.PhoneNumber)
	if err != nil {
		s.fail(w, r, customerNS, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Toast: toast(LevelSuccess, msg)})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if err := decode(r, &req); err != nil {
		badRequest(w)
		return
	}
	msg, err := s.deps.Pages.ResetPassword(r.Context(), req)
	if err != nil {
		s.fail(w, r, customerNS, err)
		return
	}
	redirect(w, customerNS.LoginPath, toast(LevelSuccess, msg))
}
