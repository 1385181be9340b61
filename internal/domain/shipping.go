package domain

import "context"

// ShippingOption es una opción de envío ya normalizada (el upstream devuelve
// bastante más ruido que esto).
type ShippingOption struct {
	Carrier      string  `json:"carrier"`
	Service      string  `json:"service"`
	DeliveryDays int     `json:"delivery_days"`
	Price        float64 `json:"price"`
}

// RateService cotiza envíos hacia un código postal de destino. Una cotización
// es una lectura idempotente: no se reintenta, el que llama vuelve a pedir.
type RateService interface {
	Quote(ctx context.Context, destinationCEP string) ([]ShippingOption, error)
}
