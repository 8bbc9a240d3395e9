package router

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markethub-essentials/backend/internal/config"
	"github.com/markethub-essentials/backend/internal/handler"
	"github.com/markethub-essentials/backend/internal/server"
	"github.com/markethub-essentials/backend/internal/service"
)

// providers fakes Resend, siteverify and the webhook receiver.
type providers struct {
	mu       sync.Mutex
	emails   []map[string]any
	webhooks []map[string]any

	resend     *httptest.Server
	siteverify *httptest.Server
	hooks      *httptest.Server
}

func newProviders(t *testing.T) *providers {
	t.Helper()

	p := &providers{}

	p.resend = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		p.mu.Lock()
		p.emails = append(p.emails, body)
		p.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"email_123"}`)
	}))

	p.siteverify = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		score := "0.9"
		if r.PostForm.Get("response") == "bot-token" {
			score = "0.1"
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"success":true,"score":`+score+`}`)
	}))

	p.hooks = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		p.mu.Lock()
		p.webhooks = append(p.webhooks, body)
		p.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))

	t.Cleanup(func() {
		p.resend.Close()
		p.siteverify.Close()
		p.hooks.Close()
	})
	return p
}

func newTestRouter(t *testing.T, p *providers) (*echo.Echo, *server.Server) {
	t.Helper()

	cfg := config.Default()
	cfg.Forms.FromAddress = "forms@example.com"
	cfg.Forms.Inquiry = config.FormConfig{ToAddress: "sales@example.com", WebhookURL: p.hooks.URL + "/inquiry"}
	cfg.Forms.ServiceRequest = config.FormConfig{ToAddress: "service@example.com", WebhookURL: p.hooks.URL + "/service"}
	cfg.Integration.ResendAPIKey = "re_test"
	cfg.Integration.ResendBaseURL = p.resend.URL + "/"
	cfg.Integration.RecaptchaSecretKey = "secret"
	cfg.Integration.RecaptchaVerifyURL = p.siteverify.URL
	cfg.RateLimit.MaxRequests = 2

	logger := zerolog.Nop()
	s, err := server.New(cfg, &logger, nil)
	require.NoError(t, err)

	services := service.NewServices(s)
	return NewRouter(s, handler.NewHandlers(s, services)), s
}

func do(e *echo.Echo, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

const inquiryJSON = `{
	"name": "Jane Doe",
	"companyName": "Acme",
	"email": "jane@acme.example",
	"propertyType": "Office",
	"firstPlacement": "Yes",
	"existingVending": "No",
	"expectations": "Snacks",
	"recaptchaToken": "human-token"
}`

const serviceRequestJSON = `{
	"firstName": "John",
	"lastName": "Smith",
	"email": "john@corner.example",
	"businessName": "Corner Gym",
	"serviceIssues": ["machine_not_cooling"],
	"recaptchaToken": "human-token"
}`

func TestInquiryFlow(t *testing.T) {
	t.Parallel()

	p := newProviders(t)
	e, _ := newTestRouter(t, p)

	rec := do(e, http.MethodGet, "/api/csrf-token", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var csrf handler.CSRFToken
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &csrf))
	require.Len(t, csrf.Token, 64)

	rec = do(e, http.MethodPost, "/api/send-inquiry-email", inquiryJSON, map[string]string{
		service.HeaderCSRFToken: csrf.Token,
		"X-Forwarded-For":       "203.0.113.10",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"success":true,"message":"Inquiry submitted successfully"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	p.mu.Lock()
	defer p.mu.Unlock()

	require.Len(t, p.emails, 1)
	assert.Equal(t, "forms@example.com", p.emails[0]["from"])
	assert.Equal(t, "New Inquiry from Jane Doe - Acme", p.emails[0]["subject"])

	require.Len(t, p.webhooks, 1)
	assert.Equal(t, "inquiry", p.webhooks[0]["formType"])
	assert.Equal(t, "Jane Doe", p.webhooks[0]["name"])
	assert.NotEmpty(t, p.webhooks[0]["submittedAt"])
}

func TestServiceRequestQuota(t *testing.T) {
	t.Parallel()

	p := newProviders(t)
	e, _ := newTestRouter(t, p)
	header := map[string]string{"X-Forwarded-For": "203.0.113.20"}

	for i := 0; i < 2; i++ {
		rec := do(e, http.MethodPost, "/api/send-service-request", serviceRequestJSON, header)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec := do(e, http.MethodPost, "/api/send-service-request", serviceRequestJSON, header)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"code":"TOO_MANY_REQUESTS","error":"Too many requests. Please try again later."}`, rec.Body.String())

	// Another client still has its own quota.
	rec = do(e, http.MethodPost, "/api/send-service-request", serviceRequestJSON, map[string]string{"X-Forwarded-For": "203.0.113.21"})
	assert.Equal(t, http.StatusOK, rec.Code)

	p.mu.Lock()
	defer p.mu.Unlock()
	assert.Len(t, p.emails, 3)
	assert.Len(t, p.webhooks, 3)
}

func TestRejections(t *testing.T) {
	t.Parallel()

	p := newProviders(t)
	e, _ := newTestRouter(t, p)

	tests := map[string]struct {
		method string
		target string
		body   string
		header map[string]string
		status int
		want   string
	}{
		"Missing CSRF header": {
			method: http.MethodPost,
			target: "/api/send-inquiry-email",
			body:   inquiryJSON,
			status: http.StatusForbidden,
			want:   `{"code":"FORBIDDEN","error":"CSRF token missing"}`,
		},
		"Bot token": {
			method: http.MethodPost,
			target: "/api/send-service-request",
			body:   strings.Replace(serviceRequestJSON, "human-token", "bot-token", 1),
			status: http.StatusForbidden,
			want:   `{"code":"FORBIDDEN","error":"Bot verification failed"}`,
		},
		"Malformed body": {
			method: http.MethodPost,
			target: "/api/send-service-request",
			body:   `{"firstName":`,
			status: http.StatusBadRequest,
			want:   `{"code":"BAD_REQUEST","error":"Invalid request body"}`,
		},
		"Missing fields": {
			method: http.MethodPost,
			target: "/api/send-service-request",
			body:   `{"firstName":"John","recaptchaToken":"human-token"}`,
			status: http.StatusBadRequest,
			want: `{"code":"BAD_REQUEST","error":"Missing required fields","errors":[
				{"field":"lastName","error":"is required"},
				{"field":"email","error":"is required"},
				{"field":"businessName","error":"is required"},
				{"field":"serviceIssues","error":"is required"}]}`,
		},
		"Body too large": {
			method: http.MethodPost,
			target: "/api/send-service-request",
			body:   `{"notes":"` + strings.Repeat("a", 70*1024) + `"}`,
			status: http.StatusRequestEntityTooLarge,
			want:   `{"code":"REQUEST_ENTITY_TOO_LARGE","error":"Request Entity Too Large"}`,
		},
		"Unknown route": {
			method: http.MethodGet,
			target: "/api/nope",
			status: http.StatusNotFound,
			want:   `{"code":"NOT_FOUND","error":"Route not found"}`,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			rec := do(e, tc.method, tc.target, tc.body, tc.header)
			assert.Equal(t, tc.status, rec.Code)
			assert.JSONEq(t, tc.want, rec.Body.String())
		})
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	assert.Empty(t, p.emails)
	assert.Empty(t, p.webhooks)
}

func TestSystemRoutes(t *testing.T) {
	t.Parallel()

	p := newProviders(t)
	e, _ := newTestRouter(t, p)

	rec := do(e, http.MethodGet, "/status", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)

	rec = do(e, http.MethodPost, "/api/test", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "POST to API routes is working!")

	rec = do(e, http.MethodGet, "/dev/emails/service_request", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Service Request")

	rec = do(e, http.MethodPost, "/api/send-service-request", serviceRequestJSON, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `lead_submissions_total{form="service_request",outcome="success"} 1`)
	assert.Contains(t, rec.Body.String(), `http_requests_total`)
}

func TestPreviewHiddenInProduction(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Primary.Env = "production"
	cfg.Observability.Environment = "production"
	logger := zerolog.Nop()
	s, err := server.New(cfg, &logger, nil)
	require.NoError(t, err)
	e := NewRouter(s, handler.NewHandlers(s, service.NewServices(s)))

	rec := do(e, http.MethodGet, "/dev/emails/inquiry", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Delivery settings are checked per request, not at startup.
	rec = do(e, http.MethodPost, "/api/send-service-request", serviceRequestJSON, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Configuration missing")
}
