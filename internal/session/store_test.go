package session

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"farsha/internal/apiclient"
	"farsha/internal/config"
	"farsha/internal/events"
	"farsha/internal/models"
	"farsha/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	customer *CustomerStore
	partner  *PartnerStore
	repo     *repository.MemoryCredentialRepository
	bus      *events.EventBus
	hits     map[string]*atomic.Int32
	mu       sync.Mutex
	seen     []string
}

func (h *harness) hit(path string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.hits[path]; ok {
		return int(c.Load())
	}
	return 0
}

func (h *harness) published() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.seen...)
}

func newHarness(t *testing.T, routes map[string]http.HandlerFunc) *harness {
	t.Helper()
	h := &harness{hits: map[string]*atomic.Int32{}}
	for path := range routes {
		h.hits[path] = &atomic.Int32{}
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fn, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.hits[r.URL.Path].Add(1)
		fn(w, r)
	}))
	t.Cleanup(srv.Close)

	h.repo = repository.NewMemoryCredentialRepository(time.Hour)
	h.bus = events.NewEventBus()
	h.bus.SubscribeAll(func(e *events.Event) error {
		var p events.SessionEventPayload
		_ = e.Decode(&p)
		h.mu.Lock()
		h.seen = append(h.seen, p.Namespace+":"+e.Type)
		h.mu.Unlock()
		return nil
	}, events.EventSessionAuthenticated, events.EventSessionAnonymous, events.EventSessionExpired)

	client := apiclient.New(config.BackendConfig{BaseURL: srv.URL, TimeoutSeconds: 5}, NewTokenSource(h.repo), nil)
	opts := Options{LoginRateLimit: 3, LoginRateWindow: time.Minute}
	h.customer = NewCustomerStore(client, h.repo, h.bus, opts, nil)
	h.partner = NewPartnerStore(client, h.repo, h.bus, opts, nil)
	client.OnUnauthorized(UnauthorizedHandler(h.customer, h.partner))
	return h
}

func reply(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": 1, "exp": exp.Unix()}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

const userJSON = `{"id":5,"phone_number":"09121234567","first_name":"سارا","last_name":"محمدی","is_verified":true}`

func TestResolve_NoToken(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{"/auth/me/": reply(200, userJSON)})

	assert.Equal(t, StatusUnresolved, h.customer.Snapshot("v1").Status)
	st := h.customer.Resolve(context.Background(), "v1")
	assert.Equal(t, StatusAnonymous, st.Status)
	assert.False(t, st.Loading)
	assert.Equal(t, 0, h.hit("/auth/me/"))
}

func TestResolve_ValidToken(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{
		"/auth/me/": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			reply(200, userJSON)(w, r)
		},
	})
	ctx := context.Background()
	require.NoError(t, h.repo.Set(ctx, "v1", "token", "tok"))
	require.NoError(t, h.repo.Set(ctx, "v1", "refreshToken", "ref"))

	st := h.customer.Resolve(ctx, "v1")
	require.True(t, st.Authenticated())
	assert.Equal(t, "سارا", st.Session.Principal.FirstName)
	assert.Equal(t, "ref", st.Session.Refresh)

	persisted, _ := h.repo.Get(ctx, "v1", "user")
	assert.Contains(t, persisted, `"id":5`)

	// resolved state is not re-fetched
	h.customer.Resolve(ctx, "v1")
	assert.Equal(t, 1, h.hit("/auth/me/"))
	assert.Equal(t, []string{"customer:session_authenticated"}, h.published())
}

func TestResolve_ExpiredJWTSkipsBackend(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{"/auth/me/": reply(200, userJSON)})
	ctx := context.Background()
	require.NoError(t, h.repo.Set(ctx, "v1", "token", signedToken(t, time.Now().Add(-time.Minute))))
	require.NoError(t, h.repo.Set(ctx, "v1", "user", userJSON))

	st := h.customer.Resolve(ctx, "v1")
	assert.Equal(t, StatusAnonymous, st.Status)
	assert.Equal(t, 0, h.hit("/auth/me/"))

	tok, _ := h.repo.Get(ctx, "v1", "token")
	assert.Empty(t, tok)
	user, _ := h.repo.Get(ctx, "v1", "user")
	assert.Empty(t, user)
	assert.Equal(t, []string{"customer:session_expired"}, h.published())
}

func TestResolve_BackendFailureClears(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{"/auth/me/": reply(500, `{"detail":"boom"}`)})
	ctx := context.Background()
	require.NoError(t, h.repo.Set(ctx, "v1", "token", signedToken(t, time.Now().Add(time.Hour))))

	st := h.customer.Resolve(ctx, "v1")
	assert.Equal(t, StatusAnonymous, st.Status)
	tok, _ := h.repo.Get(ctx, "v1", "token")
	assert.Empty(t, tok)
}

func TestResolve_UnauthorizedExpiresOnce(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{"/partner/auth/me/": reply(401, `{"detail":"token_not_valid"}`)})
	ctx := context.Background()
	require.NoError(t, h.repo.Set(ctx, "v1", "partnerToken", "stale"))

	st := h.partner.Resolve(ctx, "v1")
	assert.Equal(t, StatusAnonymous, st.Status)
	assert.Equal(t, []string{"partner:session_expired"}, h.published())
}

func TestResolve_ConcurrentCallsShareOneRequest(t *testing.T) {
	release := make(chan struct{})
	h := newHarness(t, map[string]http.HandlerFunc{
		"/auth/me/": func(w http.ResponseWriter, r *http.Request) {
			<-release
			reply(200, userJSON)(w, r)
		},
	})
	ctx := context.Background()
	require.NoError(t, h.repo.Set(ctx, "v1", "token", "tok"))

	var wg sync.WaitGroup
	results := make([]State[models.User], 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = h.customer.Resolve(ctx, "v1")
		}(i)
	}

	require.Eventually(t, func() bool { return h.hit("/auth/me/") == 1 }, time.Second, 5*time.Millisecond)
	close(release)
	wg.Wait()

	for _, st := range results {
		assert.True(t, st.Authenticated())
	}
	assert.Equal(t, 1, h.hit("/auth/me/"))
}

func TestResolve_ContextDeadlineLeavesLoading(t *testing.T) {
	release := make(chan struct{})
	h := newHarness(t, map[string]http.HandlerFunc{
		"/auth/me/": func(w http.ResponseWriter, r *http.Request) {
			<-release
			reply(200, userJSON)(w, r)
		},
	})
	require.NoError(t, h.repo.Set(context.Background(), "v1", "token", "tok"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	st := h.customer.Resolve(ctx, "v1")
	assert.Equal(t, StatusUnresolved, st.Status)
	assert.True(t, st.Loading)

	close(release)
	require.Eventually(t, func() bool {
		return h.customer.Snapshot("v1").Status == StatusAuthenticated
	}, time.Second, 5*time.Millisecond)
}

func TestLogin(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{
		"/auth/login/": func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			if string(body) == `{"phone_number":"09121234567","password":"secret123"}` {
				reply(200, `{"access":"acc","refresh":"ref","user":`+userJSON+`}`)(w, r)
				return
			}
			reply(400, `{"non_field_errors":["شماره تلفن یا رمز عبور اشتباه است"]}`)(w, r)
		},
	})
	ctx := context.Background()

	t.Run("InvalidCredentials", func(t *testing.T) {
		res := h.customer.Login(ctx, "v1", models.Credentials{PhoneNumber: "09121234567", Password: "bad"})
		assert.False(t, res.Success)
		assert.Equal(t, "شماره تلفن یا رمز عبور اشتباه است", res.Error)
		assert.Equal(t, StatusAnonymous, h.customer.Snapshot("v1").Status)
		tok, _ := h.repo.Get(ctx, "v1", "token")
		assert.Empty(t, tok)
	})

	t.Run("Success", func(t *testing.T) {
		res := h.customer.Login(ctx, "v1", models.Credentials{PhoneNumber: "09121234567", Password: "secret123"})
		require.True(t, res.Success)
		assert.Equal(t, OutcomeSignedIn, res.Outcome)
		assert.NotEmpty(t, res.Message)

		st := h.customer.Snapshot("v1")
		require.True(t, st.Authenticated())
		assert.Equal(t, "acc", st.Session.Token)
		assert.Equal(t, int64(5), st.Session.Principal.ID)

		tok, _ := h.repo.Get(ctx, "v1", "token")
		assert.Equal(t, "acc", tok)
		ref, _ := h.repo.Get(ctx, "v1", "refreshToken")
		assert.Equal(t, "ref", ref)

		// partner namespace untouched
		assert.Equal(t, StatusUnresolved, h.partner.Snapshot("v1").Status)
	})

	t.Run("RateLimited", func(t *testing.T) {
		creds := models.Credentials{PhoneNumber: "09121234567", Password: "secret123"}
		require.True(t, h.customer.Login(ctx, "v1", creds).Success)

		res := h.customer.Login(ctx, "v1", creds)
		assert.False(t, res.Success)
		assert.Equal(t, msgTooManyAttempts, res.Error)
		assert.Equal(t, 3, h.hit("/auth/login/"))
		assert.True(t, h.customer.Snapshot("v1").Authenticated())
	})
}

func TestLogin_RateLimitByAddressAndPhone(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{
		"/auth/login/": reply(400, `{"non_field_errors":["شماره تلفن یا رمز عبور اشتباه است"]}`),
	})
	ctx := WithClientAddr(context.Background(), "203.0.113.7")
	creds := models.Credentials{PhoneNumber: "09121234567", Password: "bad"}

	// a fresh visitor id per attempt does not reset the counter
	for _, v := range []string{"v1", "v2", "v3"} {
		res := h.customer.Login(ctx, v, creds)
		assert.NotEqual(t, msgTooManyAttempts, res.Error)
	}
	res := h.customer.Login(ctx, "v4", creds)
	assert.False(t, res.Success)
	assert.Equal(t, msgTooManyAttempts, res.Error)
	assert.Equal(t, 3, h.hit("/auth/login/"))

	res = h.customer.Login(ctx, "v5", models.Credentials{PhoneNumber: "09350000000", Password: "bad"})
	assert.NotEqual(t, msgTooManyAttempts, res.Error)

	other := WithClientAddr(context.Background(), "198.51.100.2")
	res = h.customer.Login(other, "v6", creds)
	assert.NotEqual(t, msgTooManyAttempts, res.Error)
	assert.Equal(t, 5, h.hit("/auth/login/"))

	// namespaces count separately
	res = h.partner.Login(ctx, "v7", creds)
	assert.NotEqual(t, msgTooManyAttempts, res.Error)
}

func TestLogin_AnswerWithoutPrincipal(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{
		"/auth/login/":    reply(200, `{"access":"acc","refresh":"ref"}`),
		"/auth/register/": reply(201, `{"access":"acc","refresh":"ref"}`),
	})
	ctx := context.Background()

	res := h.customer.Login(ctx, "v1", models.Credentials{PhoneNumber: "09121234567", Password: "secret123"})
	assert.False(t, res.Success)
	assert.Equal(t, msgMissingPrincipal, res.Error)
	assert.False(t, h.customer.Snapshot("v1").Authenticated())
	tok, _ := h.repo.Get(ctx, "v1", "token")
	assert.Empty(t, tok)

	res = h.customer.Register(ctx, "v1", models.RegisterRequest{PhoneNumber: "09121234567", Password: "secret123"})
	assert.False(t, res.Success)
	assert.Equal(t, msgMissingPrincipal, res.Error)
}

func TestRegister_BothContracts(t *testing.T) {
	t.Run("VerificationRequired", func(t *testing.T) {
		h := newHarness(t, map[string]http.HandlerFunc{
			"/auth/register/": reply(201, `{"message":"User registered successfully. Please verify your phone number.","phone_number":"09120000000"}`),
		})
		res := h.customer.Register(context.Background(), "v1", models.RegisterRequest{PhoneNumber: "09120000000", Password: "12345678"})
		require.True(t, res.Success)
		assert.Equal(t, OutcomeVerificationRequired, res.Outcome)
		assert.Equal(t, "09120000000", res.Phone)
		assert.Equal(t, StatusUnresolved, h.customer.Snapshot("v1").Status)
	})

	t.Run("SignedIn", func(t *testing.T) {
		h := newHarness(t, map[string]http.HandlerFunc{
			"/partner/auth/register/": reply(201, `{"access":"pacc","refresh":"pref","partner":`+userJSON+`,"business":{"id":42,"name":"سالن رز","slug":"rose"}}`),
		})
		res := h.partner.Register(context.Background(), "v1", models.PartnerRegisterRequest{PhoneNumber: "09121234567", BusinessName: "سالن رز"})
		require.True(t, res.Success)
		assert.Equal(t, OutcomeSignedIn, res.Outcome)

		st := h.partner.Snapshot("v1")
		require.True(t, st.Authenticated())
		require.NotNil(t, st.Session.Business)
		assert.Equal(t, int64(42), st.Session.Business.ID)
		biz, _ := h.repo.Get(context.Background(), "v1", "business")
		assert.Contains(t, biz, `"slug":"rose"`)
	})

	t.Run("Failure", func(t *testing.T) {
		h := newHarness(t, map[string]http.HandlerFunc{
			"/auth/register/": reply(400, `{"phone_number":["این شماره قبلا ثبت شده است"]}`),
		})
		res := h.customer.Register(context.Background(), "v1", models.RegisterRequest{PhoneNumber: "09120000000"})
		assert.False(t, res.Success)
		assert.Equal(t, "این شماره قبلا ثبت شده است", res.Error)
	})
}

func TestVerifyOTP(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{
		"/auth/verify-otp/": func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			switch {
			case string(body) == `{"phone_number":"09121234567","code":"123456"}`:
				reply(200, `{"message":"Phone verified successfully","access":"acc","refresh":"ref","user":`+userJSON+`}`)(w, r)
			case string(body) == `{"phone_number":"09120000000","code":"123456"}`:
				reply(200, `{"message":"Phone verified. Please complete registration."}`)(w, r)
			default:
				reply(400, `{"code":["کد نامعتبر است"]}`)(w, r)
			}
		},
	})
	ctx := context.Background()

	res := h.customer.VerifyOTP(ctx, "v1", models.OTPRequest{PhoneNumber: "09121234567", Code: "123456"})
	require.True(t, res.Success)
	assert.Equal(t, OutcomeSignedIn, res.Outcome)
	assert.True(t, h.customer.Snapshot("v1").Authenticated())

	res = h.customer.VerifyOTP(ctx, "v2", models.OTPRequest{PhoneNumber: "09120000000", Code: "123456"})
	require.True(t, res.Success)
	assert.Equal(t, OutcomeVerified, res.Outcome)
	assert.False(t, h.customer.Snapshot("v2").Authenticated())

	res = h.customer.VerifyOTP(ctx, "v3", models.OTPRequest{PhoneNumber: "09120000000", Code: "000000"})
	assert.False(t, res.Success)
	assert.Equal(t, "کد نامعتبر است", res.Error)
}

func TestLogout_AlwaysClears(t *testing.T) {
	var gotBody string
	h := newHarness(t, map[string]http.HandlerFunc{
		"/auth/login/": reply(200, `{"access":"acc","refresh":"ref","user":`+userJSON+`}`),
		"/auth/logout/": func(w http.ResponseWriter, r *http.Request) {
			b, _ := io.ReadAll(r.Body)
			gotBody = string(b)
			reply(500, `{"error":"Invalid token"}`)(w, r)
		},
	})
	ctx := context.Background()
	require.True(t, h.customer.Login(ctx, "v1", models.Credentials{PhoneNumber: "0912", Password: "x"}).Success)

	res := h.customer.Logout(ctx, "v1")
	assert.True(t, res.Success)
	assert.Equal(t, `{"refresh":"ref"}`, gotBody)
	assert.Equal(t, StatusAnonymous, h.customer.Snapshot("v1").Status)
	for _, k := range []string{"token", "refreshToken", "user"} {
		v, _ := h.repo.Get(ctx, "v1", k)
		assert.Empty(t, v, k)
	}
}

func TestUnauthorized_ExpiresOnlyOwningNamespace(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{
		"/auth/login/":         reply(200, `{"access":"acc","user":`+userJSON+`}`),
		"/partner/auth/login/": reply(200, `{"access":"pacc","partner":`+userJSON+`,"business":{"id":42}}`),
		"/partner/services/":   reply(401, `{"detail":"expired"}`),
	})
	ctx := context.Background()
	require.True(t, h.customer.Login(ctx, "v1", models.Credentials{}).Success)
	require.True(t, h.partner.Login(ctx, "v1", models.Credentials{}).Success)

	_, err := h.partner.client.PartnerServices(WithVisitor(ctx, "v1"))
	require.True(t, apiclient.IsUnauthorized(err))

	assert.Equal(t, StatusAnonymous, h.partner.Snapshot("v1").Status)
	assert.True(t, h.customer.Snapshot("v1").Authenticated())

	ptok, _ := h.repo.Get(ctx, "v1", "partnerToken")
	assert.Empty(t, ptok)
	ctok, _ := h.repo.Get(ctx, "v1", "token")
	assert.Equal(t, "acc", ctok)
}

func TestUpdate_ReplacesWholesale(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{
		"/auth/login/":            reply(200, `{"access":"acc","user":`+userJSON+`}`),
		"/auth/profile/":          reply(200, `{"id":5,"phone_number":"09121234567","first_name":"مریم"}`),
		"/partner/auth/login/":    reply(200, `{"access":"pacc","partner":`+userJSON+`,"business":{"id":42,"name":"قدیم","address":"تهران"}}`),
		"/partner/auth/business/": reply(200, `{"id":42,"name":"جدید"}`),
	})
	ctx := context.Background()
	require.True(t, h.customer.Login(ctx, "v1", models.Credentials{}).Success)
	require.True(t, h.partner.Login(ctx, "v1", models.Credentials{}).Success)

	name := "مریم"
	res := h.customer.Update(ctx, "v1", models.ProfileUpdate{FirstName: &name})
	require.True(t, res.Success)
	st := h.customer.Snapshot("v1")
	assert.Equal(t, "مریم", st.Session.Principal.FirstName)
	assert.Empty(t, st.Session.Principal.LastName)

	biz := "جدید"
	res = h.partner.Update(ctx, "v1", models.BusinessUpdate{Name: &biz})
	require.True(t, res.Success)
	pst := h.partner.Snapshot("v1")
	assert.Equal(t, "جدید", pst.Session.Business.Name)
	assert.Empty(t, pst.Session.Business.Address)
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()
	assert.True(t, tokenExpired(signedToken(t, now.Add(-time.Second)), now))
	assert.False(t, tokenExpired(signedToken(t, now.Add(time.Hour)), now))
	assert.False(t, tokenExpired("opaque-token", now))
}

func TestSweep(t *testing.T) {
	h := newHarness(t, nil)
	h.customer.Resolve(context.Background(), "v1")

	assert.Equal(t, 0, h.customer.Sweep(time.Hour))
	h.customer.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	assert.Equal(t, 1, h.customer.Sweep(time.Hour))
	assert.Equal(t, StatusUnresolved, h.customer.Snapshot("v1").Status)
}
