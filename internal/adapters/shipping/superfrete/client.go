package superfrete

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/phenrril/easyphone/internal/domain"
)

const defaultBaseURL = "https://api.superfrete.com"

// Perfil fijo de paquete para toda la tienda. Pedidos más grandes o pesados
// se cotizan igual que el paquete de referencia; limitación conocida.
const (
	packageHeightCM = 2
	packageWidthCM  = 11
	packageLengthCM = 16
	packageWeightKG = 0.3

	// SEDEX, PAC y Jadlog
	services = "1,2,17,3,31"
)

type Client struct {
	token      string
	origin     string
	baseURL    string
	httpClient *http.Client
}

func New(token, originCEP string) *Client {
	return &Client{token: token, origin: originCEP, baseURL: defaultBaseURL, httpClient: &http.Client{Timeout: 10 * time.Second}}
}

// NewWithBaseURL existe para apuntar el cliente a un upstream de prueba.
func NewWithBaseURL(token, originCEP, baseURL string) *Client {
	c := New(token, originCEP)
	c.baseURL = strings.TrimSuffix(baseURL, "/")
	return c
}

type sfPostal struct {
	PostalCode string `json:"postal_code"`
}

type sfOptions struct {
	OwnHand           bool    `json:"own_hand"`
	Receipt           bool    `json:"receipt"`
	InsuranceValue    float64 `json:"insurance_value"`
	UseInsuranceValue bool    `json:"use_insurance_value"`
}

type sfPackage struct {
	Height float64 `json:"height"`
	Width  float64 `json:"width"`
	Length float64 `json:"length"`
	Weight float64 `json:"weight"`
}

type sfCalcReq struct {
	From     sfPostal  `json:"from"`
	To       sfPostal  `json:"to"`
	Services string    `json:"services"`
	Options  sfOptions `json:"options"`
	Package  sfPackage `json:"package"`
}

type sfCalcOption struct {
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	DeliveryTime int     `json:"delivery_time"`
	Company      struct {
		Name string `json:"name"`
	} `json:"company"`
	Error    json.RawMessage `json:"error"`
	HasError bool            `json:"has_error"`
}

// flagged replica el filtro del upstream: cualquier entrada con error marcado
// se descarta antes de devolver.
func (o sfCalcOption) flagged() bool {
	if o.HasError {
		return true
	}
	raw := strings.TrimSpace(string(o.Error))
	return raw != "" && raw != "null" && raw != "false" && raw != `""`
}

// UpstreamError conserva el status y el cuerpo que devolvió el servicio de
// fletes, para que el proxy pueda espejarlos.
type UpstreamError struct {
	StatusCode int
	Body       []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("superfrete: status %d", e.StatusCode)
}

func (e *UpstreamError) Unwrap() error { return domain.ErrRateServiceDown }

// MalformedResponseError lleva el payload crudo para diagnóstico.
type MalformedResponseError struct {
	Raw []byte
}

func (e *MalformedResponseError) Error() string { return "superfrete: respuesta no es JSON" }

func (e *MalformedResponseError) Unwrap() error { return domain.ErrRateServiceBroken }

// Quote cotiza el envío hacia el CEP de destino con origen y paquete fijos.
// No reintenta: cualquier falla vuelve inmediatamente al que llama.
func (c *Client) Quote(ctx context.Context, destinationCEP string) ([]domain.ShippingOption, error) {
	dest := strings.TrimSpace(destinationCEP)
	if dest == "" {
		return nil, domain.ErrMissingDestination
	}

	body := sfCalcReq{
		From:     sfPostal{PostalCode: c.origin},
		To:       sfPostal{PostalCode: dest},
		Services: services,
		Package:  sfPackage{Height: packageHeightCM, Width: packageWidthCM, Length: packageLengthCM, Weight: packageWeightKG},
	}
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v0/calculator", bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-access-token", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.WithMessage(domain.ErrRateServiceDown, err.Error())
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, errors.WithMessage(domain.ErrRateServiceDown, err.Error())
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: raw}
	}

	var options []sfCalcOption
	if err := json.Unmarshal(raw, &options); err != nil {
		return nil, &MalformedResponseError{Raw: raw}
	}

	out := make([]domain.ShippingOption, 0, len(options))
	for _, o := range options {
		if o.flagged() {
			continue
		}
		out = append(out, domain.ShippingOption{
			Carrier:      o.Company.Name,
			Service:      o.Name,
			DeliveryDays: o.DeliveryTime,
			Price:        o.Price,
		})
	}
	return out, nil
}
