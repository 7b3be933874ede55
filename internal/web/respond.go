package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"farsha/internal/apiclient"
	"farsha/internal/booking"
	"farsha/internal/customer"
	"farsha/internal/session"
)

const (
	LevelSuccess = "success"
	LevelError   = "error"
	LevelInfo    = "info"

	msgUnexpected  = "خطایی رخ داد. لطفاً دوباره تلاش کنید"
	msgBadRequest  = "اطلاعات ارسال شده نامعتبر است"
	msgTooManyReqs = "تعداد درخواست‌ها بیش از حد مجاز است"
)

// Toast is the one-line outcome message shown by the browser shell.
type Toast struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Response is the envelope of every page and action answer.
type Response struct {
	Data      any               `json:"data,omitempty"`
	Toast     *Toast            `json:"toast,omitempty"`
	Errors    map[string]string `json:"errors,omitempty"`
	Redirect  string            `json:"redirect,omitempty"`
	LoadError string            `json:"load_error,omitempty"`
	Loading   bool              `json:"loading,omitempty"`
}

func toast(level, message string) *Toast {
	if message == "" {
		return nil
	}
	return &Toast{Level: level, Message: message}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Response{Data: data})
}

// writeDone answers a mutation. A reload error after a successful
// mutation keeps the success toast and reports the load failure aside.
func (s *Server) writeDone(w http.ResponseWriter, r *http.Request, ns session.Namespace, data any, msg string, err error) {
	if err != nil && msg == "" {
		s.fail(w, r, ns, err)
		return
	}
	resp := Response{Data: data, Toast: toast(LevelSuccess, msg)}
	if err != nil {
		if apiclient.IsUnauthorized(err) {
			s.toLogin(w, r, ns)
			return
		}
		resp.LoadError = apiclient.Display(err, msgUnexpected)
	}
	writeJSON(w, http.StatusOK, resp)
}

// redirect answers 303 with the target both in Location and the body.
func redirect(w http.ResponseWriter, location string, t *Toast) {
	w.Header().Set("Location", location)
	writeJSON(w, http.StatusSeeOther, Response{Redirect: location, Toast: t})
}

func (s *Server) toLogin(w http.ResponseWriter, r *http.Request, ns session.Namespace) {
	redirect(w, loginURL(ns.LoginPath, r.URL.RequestURI()), nil)
}

// loginURL keeps slashes of next readable; the value decodes the same.
func loginURL(loginPath, next string) string {
	return loginPath + "?next=" + strings.ReplaceAll(url.QueryEscape(next), "%2F", "/")
}

// safeNext keeps only local absolute paths.
func safeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return fallback
	}
	return next
}

// fail maps an operation error to a response. 401 never becomes a
// toast; it sends the visitor to the login of the rejecting namespace.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, ns session.Namespace, err error) {
	var (
		fieldErrs customer.FieldErrors
		apiErr    *apiclient.APIError
	)
	switch {
	case apiclient.IsUnauthorized(err):
		s.toLogin(w, r, ns)
	case errors.As(err, &fieldErrs):
		writeJSON(w, http.StatusBadRequest, Response{
			Errors: fieldErrs,
			Toast:  toast(LevelError, fieldErrs.First()),
		})
	case errors.Is(err, apiclient.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, Response{Toast: toast(LevelError, apiclient.Display(err, msgBadRequest))})
	case booking.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, Response{Toast: toast(LevelError, booking.ErrorMessage(err))})
	case errors.As(err, &apiErr):
		status := http.StatusBadGateway
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			status = apiErr.Status
		}
		writeJSON(w, status, Response{Toast: toast(LevelError, apiclient.Display(err, msgUnexpected))})
	default:
		var op *apiclient.OpError
		if errors.As(err, &op) {
			s.logger.Warn().Err(err).Str("path", r.URL.Path).Msg("backend request failed")
			writeJSON(w, http.StatusBadGateway, Response{Toast: toast(LevelError, op.Message)})
			return
		}
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, Response{Toast: toast(LevelError, msgUnexpected)})
	}
}

func badRequest(w http.ResponseWriter) {
	writeJSON(w, http.StatusBadRequest, Response{Toast: toast(LevelError, msgBadRequest)})
}

// decode reads a JSON body. An empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func sessionResult(w http.ResponseWriter, res session.Result, location string) {
	if !res.Success {
		writeJSON(w, http.StatusBadRequest, Response{Data: res, Toast: toast(LevelError, res.Error)})
		return
	}
	if location == "" {
		writeJSON(w, http.StatusOK, Response{Data: res, Toast: toast(LevelSuccess, res.Message)})
		return
	}
	redirect(w, location, toast(LevelSuccess, res.Message))
}
