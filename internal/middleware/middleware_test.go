package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secreto = "test-secret"

func init() { gin.SetMode(gin.TestMode) }

func motorProtegido() *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	g := r.Group("/v1", JWTAuth(secreto))
	g.GET("/pos/:pos/resumen", RequirePOSAccess(), func(c *gin.Context) { c.Status(http.StatusOK) })
	g.POST("/recalcular", RequireRole(RolAdministrador), func(c *gin.Context) { c.Status(http.StatusAccepted) })
	return r
}

func pedir(t *testing.T, r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func token(t *testing.T, rol string, pos *int64) string {
	t.Helper()
	tok, err := GenerarToken(secreto, "ana", rol, pos, time.Hour)
	require.NoError(t, err)
	return tok
}

func TestJWTAuth(t *testing.T) {
	r := motorProtegido()

	assert.Equal(t, http.StatusUnauthorized, pedir(t, r, http.MethodGet, "/v1/pos/1/resumen", "").Code)
	assert.Equal(t, http.StatusUnauthorized, pedir(t, r, http.MethodGet, "/v1/pos/1/resumen", "garbage").Code)

	otro, err := GenerarToken("other-secret", "ana", RolAnalista, nil, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, pedir(t, r, http.MethodGet, "/v1/pos/1/resumen", otro).Code)

	vencido, err := GenerarToken(secreto, "ana", RolAnalista, nil, -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, pedir(t, r, http.MethodGet, "/v1/pos/1/resumen", vencido).Code)

	assert.Equal(t, http.StatusOK, pedir(t, r, http.MethodGet, "/v1/pos/1/resumen", token(t, RolAnalista, nil)).Code)
}

func TestGenerarToken_SecretoVacio(t *testing.T) {
	_, err := GenerarToken("", "ana", RolAnalista, nil, time.Hour)
	assert.Error(t, err)
}

func TestRequireRole(t *testing.T) {
	r := motorProtegido()

	assert.Equal(t, http.StatusForbidden, pedir(t, r, http.MethodPost, "/v1/recalcular", token(t, RolAnalista, nil)).Code)
	assert.Equal(t, http.StatusAccepted, pedir(t, r, http.MethodPost, "/v1/recalcular", token(t, RolAdministrador, nil)).Code)
}

func TestRequirePOSAccess(t *testing.T) {
	r := motorProtegido()
	propio := int64(7)

	assert.Equal(t, http.StatusOK, pedir(t, r, http.MethodGet, "/v1/pos/7/resumen", token(t, RolPuntoDeVenta, &propio)).Code)
	assert.Equal(t, http.StatusForbidden, pedir(t, r, http.MethodGet, "/v1/pos/8/resumen", token(t, RolPuntoDeVenta, &propio)).Code)
	assert.Equal(t, http.StatusForbidden, pedir(t, r, http.MethodGet, "/v1/pos/7/resumen", token(t, RolPuntoDeVenta, nil)).Code)
	assert.Equal(t, http.StatusOK, pedir(t, r, http.MethodGet, "/v1/pos/8/resumen", token(t, RolAdministrador, nil)).Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := pedir(t, r, http.MethodGet, "/", "")
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
	assert.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestRecoveryYErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(), ErrorHandler())
	r.GET("/panic", func(*gin.Context) { panic("boom") })
	r.GET("/error", func(c *gin.Context) { _ = c.Error(assert.AnError) })

	w := pedir(t, r, http.MethodGet, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"detail":"Error interno del servidor","codigo":"interno","reintentable":false}`, w.Body.String())

	w = pedir(t, r, http.MethodGet, "/error", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS("https://panel.r2flows.mx"))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://panel.r2flows.mx")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://panel.r2flows.mx", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestLimitador(t *testing.T) {
	ahora := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := nuevoLimitador(2, time.Minute)
	l.now = func() time.Time { return ahora }

	ok, _ := l.permitir("10.0.0.1")
	assert.True(t, ok)
	ok, _ = l.permitir("10.0.0.1")
	assert.True(t, ok)
	ok, _ = l.permitir("10.0.0.1")
	assert.False(t, ok)
	ok, _ = l.permitir("10.0.0.2")
	assert.True(t, ok)

	ahora = ahora.Add(6 * time.Minute)
	ok, _ = l.permitir("10.0.0.1")
	assert.True(t, ok)
	assert.Len(t, l.ventanas, 1)
}

func TestRateLimiter_Responde429(t *testing.T) {
	r := gin.New()
	r.Use(RateLimiter(1, time.Minute))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, pedir(t, r, http.MethodGet, "/", "").Code)
	w := pedir(t, r, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}
