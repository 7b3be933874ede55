package web

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"farsha/internal/metrics"
	"farsha/internal/session"
)

// Resolver is the part of a session store a guard needs.
type Resolver[P any] interface {
	Resolve(ctx context.Context, visitor string) session.State[P]
	Namespace() session.Namespace
}

type sessionKey[P any] struct{}

func withSession[P any](ctx context.Context, sess *session.Session[P]) context.Context {
	return context.WithValue(ctx, sessionKey[P]{}, sess)
}

// SessionFrom returns the session a guard admitted the request with.
func SessionFrom[P any](ctx context.Context) *session.Session[P] {
	sess, _ := ctx.Value(sessionKey[P]{}).(*session.Session[P])
	return sess
}

const loadingRetryAfter = time.Second

// Guard admits only visitors with an authenticated session of store.
// The handler never runs while the session is unresolved: with a zero
// timeout the guard waits for resolution, otherwise it answers 202 with
// the loading indicator once timeout passes. Anonymous visitors are
// sent to the namespace login with the requested path as next.
func Guard[P any](store Resolver[P], timeout time.Duration) func(http.Handler) http.Handler {
	ns := store.Namespace()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			st := store.Resolve(ctx, session.VisitorFrom(r.Context()))
			switch {
			case st.Authenticated():
				metrics.IncGuard(string(ns.Name), "allow")
				next.ServeHTTP(w, r.WithContext(withSession(r.Context(), st.Session)))
			case st.Status == session.StatusUnresolved:
				metrics.IncGuard(string(ns.Name), "loading")
				w.Header().Set("Retry-After", strconv.Itoa(int(loadingRetryAfter/time.Second)))
				writeJSON(w, http.StatusAccepted, Response{Loading: true})
			default:
				metrics.IncGuard(string(ns.Name), "redirect")
				redirect(w, loginURL(ns.LoginPath, r.URL.RequestURI()), nil)
			}
		})
	}
}
