package service

import (
	"github.com/r2flows/pharma-vendor-oportunities/internal/conciliacion"
	"github.com/r2flows/pharma-vendor-oportunities/internal/dto"
	"github.com/r2flows/pharma-vendor-oportunities/internal/model"
)

func toOportunidades(filas []conciliacion.FilaOportunidad) []dto.OportunidadResponse {
	out := make([]dto.OportunidadResponse, 0, len(filas))
	for _, f := range filas {
		out = append(out, dto.OportunidadResponse{
			VendorID:                f.VendorID,
			ValorPotencial:          f.ValorPotencial,
			ValorConvertido:         f.ValorConvertido,
			CompraMinima:            f.CompraMinima,
			Status:                  f.Status,
			DescripcionStatus:       f.DescripcionStatus,
			EsFabricante:            f.EsFabricante,
			TotalCompradoFabricante: f.TotalCompradoFabricante,
			Origen:                  string(f.Origen),
		})
	}
	return out
}

func descripcionStatus(status *int) string { return model.DescripcionStatus(status) }
