package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/r2flows/pharma-vendor-oportunities/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ClaimsKey = "claims"
)

// Roles
const (
	RolAdministrador = "administrador"
	RolAnalista      = "analista"
	RolPuntoDeVenta  = "punto_de_venta"
)

// JWTClaims are the custom claims embedded in every access token.
// PuntoDeVenta scopes a punto_de_venta token to a single POS.
type JWTClaims struct {
	Username     string `json:"username"`
	Rol          string `json:"rol"`
	PuntoDeVenta *int64 `json:"punto_de_venta,omitempty"`
	jwt.RegisteredClaims
}

// GenerarToken signs an HS256 access token valid for ttl.
func GenerarToken(secret, username, rol string, puntoDeVenta *int64, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret is empty")
	}
	now := time.Now()
	claims := JWTClaims{
		Username:     username,
		Rol:          rol,
		PuntoDeVenta: puntoDeVenta,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// JWTAuth validates the Bearer token on every protected route.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New(apierror.CodigoNoAutenticado, "Autenticacion requerida"))
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		claims := &JWTClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})

		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New(apierror.CodigoNoAutenticado, "Token invalido o expirado"))
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// RequireRole rejects requests whose JWT role is not in the allowed list.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil || !allowed[claims.Rol] {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New(apierror.CodigoSinPermiso, "Permisos insuficientes"))
			return
		}
		c.Next()
	}
}

// RequirePOSAccess lets a punto_de_venta token read only its own POS, taken
// from the :pos path parameter. Other roles see every POS.
func RequirePOSAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New(apierror.CodigoSinPermiso, "Permisos insuficientes"))
			return
		}
		if claims.Rol != RolPuntoDeVenta {
			c.Next()
			return
		}
		pos, err := strconv.ParseInt(c.Param("pos"), 10, 64)
		if err != nil || claims.PuntoDeVenta == nil || *claims.PuntoDeVenta != pos {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New(apierror.CodigoSinPermiso, "Sin acceso a este punto de venta"))
			return
		}
		c.Next()
	}
}

// GetClaims is a helper to retrieve typed claims from the Gin context.
func GetClaims(c *gin.Context) *JWTClaims {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*JWTClaims)
	return claims
}
