package domain

import "strings"

// Vehicle автомобиль из реестра автопарка
type Vehicle struct {
	ID     int64
	Plate  string
	Brand  string
	Model  string
	Year   int
	Type   string // CAMION, CAMIONETA, FURGON, OTRO
	Fleet  string
	Active bool
}

// NormalizePlate приводит номер к каноническому виду
func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.TrimSpace(plate))
}
