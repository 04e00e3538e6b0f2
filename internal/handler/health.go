package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/r2flows/pharma-vendor-oportunities/internal/dto"
	"github.com/r2flows/pharma-vendor-oportunities/internal/infra"
	"github.com/r2flows/pharma-vendor-oportunities/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	estadoConectado     = "connected"
	estadoError         = "error"
	estadoDeshabilitado = "disabled"
)

// UltimoCalculo reports when the published result was computed.
type UltimoCalculo interface {
	UltimoCalculo() *time.Time
}

// Health returns a JSON health check response.
// Checks DB and Redis connectivity plus the state of the published result;
// never exposes credentials or internals. db is nil when the reference data
// comes from CSV files.
func Health(db *gorm.DB, rdb *redis.Client, svc UltimoCalculo, cb *infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		resp := dto.HealthResponse{DB: estadoDeshabilitado, Redis: estadoDeshabilitado}

		if db != nil {
			resp.DB = estadoConectado
			sqlDB, err := db.DB()
			if err != nil || sqlDB.PingContext(ctx) != nil {
				resp.DB = estadoError
			}
		}

		if rdb != nil {
			resp.Redis = estadoConectado
			if rdb.Ping(ctx).Err() != nil {
				resp.Redis = estadoError
			} else if dlq, err := worker.DLQLengths(ctx, rdb); err == nil {
				resp.DLQ = dlq
			}
		}

		resp.CalculadoEn = svc.UltimoCalculo()
		resp.Resultado = resp.CalculadoEn != nil
		if cb != nil {
			resp.Breaker = cb.State().String()
		}

		resp.OK = resp.DB != estadoError && resp.Redis != estadoError
		status := http.StatusOK
		if !resp.OK {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, resp)
	}
}
