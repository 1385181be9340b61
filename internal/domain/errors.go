package domain

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// cotización de flete
	ErrMissingDestination = errors.New("cep de destino obligatorio")
	ErrRateServiceDown    = errors.New("servicio de fletes no disponible")
	ErrRateServiceBroken  = errors.New("respuesta de fletes inválida")

	// máquina de estados de pedidos
	ErrInvalidStatus        = errors.New("estado de pedido inválido")
	ErrStatusUpdateInFlight = errors.New("actualización de estado en curso")

	// cupones
	ErrInvalidCoupon = errors.New("cupón inválido")
)
