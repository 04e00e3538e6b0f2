package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/r2flows/pharma-vendor-oportunities/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ── API rate limiter ──────────────────────────────────────────────────────────

// ventana tracks the request count of one IP inside a fixed window.
type ventana struct {
	count     int
	windowEnd time.Time
}

// limitador holds the windows of one RateLimiter instance. Expired windows
// are purged lazily, at most once per purgeInterval.
type limitador struct {
	mu        sync.Mutex
	limit     int
	window    time.Duration
	ventanas  map[string]*ventana
	proxPurga time.Time
	now       func() time.Time
}

const purgeInterval = 5 * time.Minute

func nuevoLimitador(limit int, window time.Duration) *limitador {
	return &limitador{limit: limit, window: window, ventanas: make(map[string]*ventana), now: time.Now}
}

// permitir counts one request from ip and reports whether it is within the
// limit, plus the end of the current window.
func (l *limitador) permitir(ip string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.After(l.proxPurga) {
		l.purgar(now)
		l.proxPurga = now.Add(purgeInterval)
	}

	v, ok := l.ventanas[ip]
	if !ok || now.After(v.windowEnd) {
		v = &ventana{windowEnd: now.Add(l.window)}
		l.ventanas[ip] = v
	}
	v.count++
	return v.count <= l.limit, v.windowEnd
}

func (l *limitador) purgar(now time.Time) {
	purged := 0
	for ip, v := range l.ventanas {
		if now.After(v.windowEnd) {
			delete(l.ventanas, ip)
			purged++
		}
	}
	if purged > 0 {
		log.Debug().
			Int("entries_purged", purged).
			Int("entries_remaining", len(l.ventanas)).
			Msg("rate limiter map purged")
	}
}

// RateLimiter returns a per-IP fixed-window rate limiter.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	l := nuevoLimitador(limit, window)
	return func(c *gin.Context) {
		ok, windowEnd := l.permitir(c.ClientIP())
		if !ok {
			c.Header("Retry-After", windowEnd.UTC().Format(http.TimeFormat))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(apierror.CodigoLimiteExcedido, "Demasiadas solicitudes. Intente nuevamente en un momento."))
			return
		}
		c.Next()
	}
}
