package fleetservice

import "github.com/m04kA/SMC-WorkshopService/internal/domain"

// Vehicle модель автомобиля из реестра автопарка
type Vehicle struct {
	ID     int64  `json:"id"`
	Plate  string `json:"patente"`
	Brand  string `json:"marca"`
	Model  string `json:"modelo"`
	Year   int    `json:"anio"`
	Type   string `json:"tipo"`
	Fleet  string `json:"flota"`
	Active bool   `json:"activo"`
}

func (v *Vehicle) toDomain() *domain.Vehicle {
	return &domain.Vehicle{
		ID:     v.ID,
		Plate:  domain.NormalizePlate(v.Plate),
		Brand:  v.Brand,
		Model:  v.Model,
		Year:   v.Year,
		Type:   v.Type,
		Fleet:  v.Fleet,
		Active: v.Active,
	}
}
