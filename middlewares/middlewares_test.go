package middlewares

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"TeleClinic/apperrors"
	"TeleClinic/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func whoAmI(c *gin.Context) {
	id, _ := ExtractUserIDFromContext(c.Request.Context())
	role, _ := ExtractUserRoleFromContext(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"id": id, "role": role})
}

func perform(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTokenAuthMiddleware(t *testing.T) {
	tokens, err := utils.NewTokenMaker("0123456789abcdef0123456789abcdef")
	require.NoError(t, err)
	patientToken, err := tokens.GenerateAccessToken("p1", utils.RolePatient)
	require.NoError(t, err)
	doctorToken, err := tokens.GenerateAccessToken("d1", utils.RoleDoctor)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", TokenAuthMiddleware(tokens, utils.RolePatient), whoAmI)

	tests := []struct {
		name   string
		setup  func(req *http.Request)
		status int
	}{
		{"missing", func(*http.Request) {}, http.StatusUnauthorized},
		{"garbage", func(req *http.Request) { req.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized},
		{"wrong role", func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+doctorToken) }, http.StatusForbidden},
		{"header", func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+patientToken) }, http.StatusOK},
		{"query", func(req *http.Request) { req.URL.RawQuery = "accessToken=" + patientToken }, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			tt.setup(req)
			w := perform(r, req)
			assert.Equal(t, tt.status, w.Code)
			if w.Code == http.StatusOK {
				assert.JSONEq(t, `{"id":"p1","role":"Patient"}`, w.Body.String())
			}
		})
	}
}

func TestRoleAuthMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/anon", RoleAuthMiddleware(utils.RoleAdmin), whoAmI)
	r.GET("/doc", func(c *gin.Context) {
		c.Request = c.Request.WithContext(WithUser(c.Request.Context(), "d1", utils.RoleDoctor))
		c.Next()
	}, RoleAuthMiddleware(utils.RoleDoctor, utils.RoleAdmin), whoAmI)

	assert.Equal(t, http.StatusUnauthorized, perform(r, httptest.NewRequest(http.MethodGet, "/anon", nil)).Code)
	assert.Equal(t, http.StatusOK, perform(r, httptest.NewRequest(http.MethodGet, "/doc", nil)).Code)
}

func TestValidateBearerToken(t *testing.T) {
	r := gin.New()
	r.GET("/admin", ValidateBearerToken("s3cret-admin-key"), whoAmI)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	assert.Equal(t, http.StatusUnauthorized, perform(r, req).Code)

	req.Header.Set("Authorization", "Token s3cret-admin-key")
	assert.Equal(t, http.StatusUnauthorized, perform(r, req).Code)

	req.Header.Set("Authorization", "Bearer s3cret-admin-kez")
	assert.Equal(t, http.StatusUnauthorized, perform(r, req).Code)

	req.Header.Set("Authorization", "Bearer s3cret-admin-key")
	w := perform(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"admin","role":"Admin"}`, w.Body.String())
}

func TestValidateBearerTokenRejectsEmptyKey(t *testing.T) {
	r := gin.New()
	r.GET("/admin", ValidateBearerToken(""), whoAmI)
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer ")
	assert.Equal(t, http.StatusUnauthorized, perform(r, req).Code)
}

func TestCorsMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CorsMiddleware(DefaultCorsConfig([]string{"http://localhost:5173"})))
	r.GET("/doctors", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/doctors", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := perform(r, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/doctors", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = perform(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimiterIsPerClient(t *testing.T) {
	r := gin.New()
	r.Use(NewRateLimiterMiddleware(RateLimiterConfig{RequestsPerSecond: 1, Burst: 2}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	from := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		return perform(r, req).Code
	}
	assert.Equal(t, http.StatusOK, from("10.0.0.1"))
	assert.Equal(t, http.StatusOK, from("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, from("10.0.0.1"))
	assert.Equal(t, http.StatusOK, from("10.0.0.2"))
}

func TestHttpErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{apperrors.ErrMissingSymptoms, http.StatusBadRequest, apperrors.CodeMissingSymptoms},
		{apperrors.ErrSlotUnavailable, http.StatusConflict, apperrors.CodeSlotUnavailable},
		{apperrors.ErrDoctorNotFound, http.StatusNotFound, apperrors.CodeDoctorNotFound},
		{apperrors.ErrAlreadyCancelled, http.StatusConflict, apperrors.CodeAlreadyCancelled},
		{apperrors.NewDependencyError(apperrors.CodePaymentProvider, "payment provider request failed", errors.New("x")), http.StatusBadGateway, apperrors.CodePaymentProvider},
		{apperrors.ErrInvalidSignature, http.StatusUnauthorized, apperrors.CodeInvalidSignature},
		{apperrors.ErrForbidden, http.StatusForbidden, apperrors.CodeForbidden},
		{errors.New("pq: connection reset"), http.StatusInternalServerError, apperrors.CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			core, logs := observer.New(zap.ErrorLevel)
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

			HttpError(c, zap.New(core), tt.err)

			assert.Equal(t, tt.status, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body["code"])
			assert.NotContains(t, body["error"], "pq:")
			assert.Equal(t, tt.status >= 500, logs.Len() == 1)
		})
	}
}

func TestHttpErrorExtraFields(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/appointments", nil)

	HttpError(c, zap.NewNop(), apperrors.ErrSlotUnavailable, gin.H{"refreshSlots": true})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":"slot was just taken by someone else","code":"SLOT_UNAVAILABLE","refreshSlots":true}`, w.Body.String())
}

func TestRecoveryMiddleware(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	r := gin.New()
	r.Use(RecoveryMiddleware(zap.New(core)))
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := perform(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestLoggingMiddleware(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(LoggingMiddleware(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	perform(r, httptest.NewRequest(http.MethodGet, "/ok", nil))
	perform(r, httptest.NewRequest(http.MethodGet, "/missing", nil))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
	assert.Equal(t, int64(404), entries[1].ContextMap()["status"])
}
