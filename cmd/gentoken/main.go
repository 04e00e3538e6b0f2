// cmd/gentoken/main.go: mints an access token for the API.
// Uso: go run ./cmd/gentoken -usuario farmacia12 -rol punto_de_venta -pos 12
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/r2flows/pharma-vendor-oportunities/internal/config"
	"github.com/r2flows/pharma-vendor-oportunities/internal/middleware"
)

func main() {
	usuario := flag.String("usuario", "admin", "subject of the token")
	rol := flag.String("rol", middleware.RolAdministrador, "administrador | analista | punto_de_venta")
	pos := flag.Int64("pos", 0, "POS the token is scoped to (punto_de_venta only)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	var puntoDeVenta *int64
	switch *rol {
	case middleware.RolAdministrador, middleware.RolAnalista:
	case middleware.RolPuntoDeVenta:
		if *pos <= 0 {
			fmt.Fprintln(os.Stderr, "-pos is required for punto_de_venta")
			os.Exit(2)
		}
		puntoDeVenta = pos
	default:
		fmt.Fprintf(os.Stderr, "unknown role %q\n", *rol)
		os.Exit(2)
	}

	ttl := time.Duration(cfg.JWTExpirationHours) * time.Hour
	token, err := middleware.GenerarToken(cfg.JWTSecret, *usuario, *rol, puntoDeVenta, ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
