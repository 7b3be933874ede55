package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"farsha/internal/config"
	"farsha/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTokens map[Namespace]string

func (s staticTokens) Token(_ context.Context, ns Namespace) (string, error) {
	return s[ns], nil
}

type recorded struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   map[string]any
}

type fakeAPI struct {
	mu       sync.Mutex
	requests []recorded
	handler  func(w http.ResponseWriter, r *http.Request)
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := recorded{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Auth: r.Header.Get("Authorization")}
	if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
		_ = json.Unmarshal(raw, &rec.Body)
	}
	f.mu.Lock()
	f.requests = append(f.requests, rec)
	f.mu.Unlock()
	f.handler(w, r)
}

func (f *fakeAPI) last() recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func (f *fakeAPI) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func newTestClient(t *testing.T, tokens TokenSource, handler func(w http.ResponseWriter, r *http.Request)) (*Client, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{handler: handler}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	c := New(config.BackendConfig{BaseURL: srv.URL + "/api/", TimeoutSeconds: 5}, tokens, nil)
	return c, api
}

func TestClient_AttachesNamespaceToken(t *testing.T) {
	tokens := staticTokens{NamespaceCustomer: "cust-token", NamespacePartner: "partner-token"}
	c, api := newTestClient(t, tokens, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `[]`)
	})
	ctx := context.Background()

	_, err := c.MyBookings(ctx, models.UpcomingStatuses)
	require.NoError(t, err)
	got := api.last()
	assert.Equal(t, "/api/bookings/my-bookings/", got.Path)
	assert.Equal(t, "Bearer cust-token", got.Auth)
	assert.Equal(t, "status=confirmed%2Cpending", got.Query)

	_, err = c.PartnerBookings(ctx, "")
	require.NoError(t, err)
	got = api.last()
	assert.Equal(t, "Bearer partner-token", got.Auth)
	assert.Empty(t, got.Query)
}

func TestClient_NoTokenNoHeader(t *testing.T) {
	c, api := newTestClient(t, staticTokens{}, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{"count":1,"results":[{"id":1,"name":"سالن رز"}]}`)
	})

	list, err := c.SearchBusinesses(context.Background(), models.BusinessSearch{Featured: true, Limit: models.FeaturedLimit})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "سالن رز", list[0].Name)
	assert.Empty(t, api.last().Auth)
	assert.Equal(t, "featured=true&limit=8", api.last().Query)
}

func TestClient_UnauthorizedRoutesByNamespace(t *testing.T) {
	c, _ := newTestClient(t, staticTokens{NamespacePartner: "stale"}, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 401, `{"detail":"Given token not valid"}`)
	})

	var expired []Namespace
	c.OnUnauthorized(func(_ context.Context, ns Namespace) { expired = append(expired, ns) })

	_, err := c.PartnerServices(context.Background())
	require.Error(t, err)

	var ue *UnauthorizedError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, NamespacePartner, ue.Namespace)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, []Namespace{NamespacePartner}, expired)
}

func TestClient_APIError(t *testing.T) {
	c, _ := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 400, `{"non_field_errors":["شماره تلفن یا رمز عبور اشتباه است"]}`)
	})

	_, err := c.Login(context.Background(), models.Credentials{PhoneNumber: "09120000000", Password: "x"})
	require.Error(t, err)

	var ae *APIError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, 400, ae.Status)
	assert.Equal(t, "شماره تلفن یا رمز عبور اشتباه است", MessageFrom(err, "fallback", "non_field_errors"))
	assert.Equal(t, "fallback", MessageFrom(err, "fallback"))
	assert.False(t, IsUnauthorized(err))
}

func TestClient_NonJSONError(t *testing.T) {
	c, _ := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(502)
		_, _ = io.WriteString(w, "Bad Gateway")
	})

	_, err := c.GetBusiness(context.Background(), "42")
	var ae *APIError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, 502, ae.Status)
	assert.Nil(t, ae.Payload)
	assert.Contains(t, err.Error(), "Bad Gateway")
	assert.Equal(t, "خطا", MessageFrom(err, "خطا"))
}

func TestClient_TransportError(t *testing.T) {
	c := New(config.BackendConfig{BaseURL: "http://127.0.0.1:1", TimeoutSeconds: 1}, nil, nil)
	_, err := c.GetCategories(context.Background())
	require.Error(t, err)
	assert.Equal(t, "fallback", MessageFrom(err, "fallback"))
}

func TestClient_StatusPatchAndSlots(t *testing.T) {
	c, api := newTestClient(t, staticTokens{NamespacePartner: "p"}, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/businesses/42/available-slots/":
			writeJSON(w, 200, `{"slots":[{"time":"10:00","available":true},{"time":"10:30","available":false}]}`)
		default:
			writeJSON(w, 200, `{"message":"Booking status updated successfully"}`)
		}
	})
	ctx := context.Background()

	require.NoError(t, c.UpdateBookingStatus(ctx, 9, models.StatusConfirmed))
	got := api.last()
	assert.Equal(t, http.MethodPatch, got.Method)
	assert.Equal(t, "/api/partner/bookings/9/", got.Path)
	assert.Equal(t, map[string]any{"status": "confirmed"}, got.Body)

	slots, err := c.GetAvailableSlots(ctx, "42", models.SlotQuery{Service: 7, Date: "2026-10-20"})
	require.NoError(t, err)
	assert.Equal(t, []models.Slot{{Time: "10:00", Available: true}, {Time: "10:30", Available: false}}, slots)
	assert.Equal(t, "date=2026-10-20&service=7", api.last().Query)
}

func TestClient_CreateBookingBody(t *testing.T) {
	c, api := newTestClient(t, staticTokens{NamespaceCustomer: "c"}, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 201, `{"id":77,"business":42,"service":7,"date":"2026-10-20","time":"10:00","status":"pending"}`)
	})

	b, err := c.CreateBooking(context.Background(), models.BookingRequest{
		Business: "42", Service: 7, Date: "2026-10-20", Time: "10:00",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(77), b.ID)

	body := api.last().Body
	assert.Equal(t, "42", body["business"])
	assert.Equal(t, float64(7), body["service"])
	assert.NotContains(t, body, "staff")
	assert.Equal(t, "", body["notes"])
}

func TestClient_EmptyBody(t *testing.T) {
	c, _ := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	assert.NoError(t, c.DeleteService(context.Background(), 3))
}

func TestClient_ReferenceCache(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()
	rc := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer rc.Close()

	c, api := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `[{"id":1,"name":"تهران","slug":"tehran"}]`)
	})
	c.UseRedisCache(rc, time.Minute)
	ctx := context.Background()

	first, err := c.GetCities(ctx)
	require.NoError(t, err)
	second, err := c.GetCities(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, api.count())
	assert.True(t, s.Exists("farsha:cache:cities"))

	s.FastForward(2 * time.Minute)
	_, err = c.GetCities(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, api.count())
}

func TestMessageFrom(t *testing.T) {
	mk := func(payload map[string]any) error { return &APIError{Status: 400, Payload: payload} }

	tests := []struct {
		name   string
		err    error
		fields []string
		want   string
	}{
		{"detail first", mk(map[string]any{"detail": "d", "phone_number": []any{"p"}}), []string{"phone_number"}, "d"},
		{"field array", mk(map[string]any{"phone_number": []any{"p1", "p2"}}), []string{"phone_number"}, "p1"},
		{"field order", mk(map[string]any{"code": []any{"c"}, "new_password": []any{"n"}}), []string{"new_password", "code"}, "n"},
		{"message", mk(map[string]any{"message": "m"}), nil, "m"},
		{"error", mk(map[string]any{"error": "Booking not found"}), nil, "Booking not found"},
		{"unnamed field ignored", mk(map[string]any{"email": []any{"e"}}), nil, "fb"},
		{"empty array", mk(map[string]any{"phone_number": []any{}}), []string{"phone_number"}, "fb"},
		{"not api error", errors.New("boom"), nil, "fb"},
		{"nil", nil, nil, "fb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MessageFrom(tt.err, "fb", tt.fields...))
		})
	}
}

func TestEndpointGroup(t *testing.T) {
	assert.Equal(t, "partner_bookings", endpointGroup("/partner/bookings/9/"))
	assert.Equal(t, "businesses", endpointGroup("/businesses/42/available-slots/"))
	assert.Equal(t, "auth", endpointGroup("/auth/verify-otp/"))
	assert.Equal(t, "root", endpointGroup("/"))
}
