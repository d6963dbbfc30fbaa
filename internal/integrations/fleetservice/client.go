package fleetservice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
)

// Client клиент реестра автопарка
// Успешные ответы кэшируются по номеру на cacheTTL
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *cache.Cache
	log        Logger
}

// NewClient создает новый экземпляр клиента реестра автопарка
func NewClient(baseURL string, timeout, cacheTTL time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		cache: cache.New(cacheTTL, 2*cacheTTL),
		log:   log,
	}
}

// GetVehicleByPlate ищет автомобиль по номеру
// Неактивный автомобиль считается неизвестным (ErrVehicleNotFound)
func (c *Client) GetVehicleByPlate(ctx context.Context, plate string) (*domain.Vehicle, error) {
	plate = domain.NormalizePlate(plate)

	if cached, ok := c.cache.Get(plate); ok {
		v := *cached.(*domain.Vehicle)
		return &v, nil
	}

	vehicle, err := c.fetch(ctx, plate)
	if err != nil {
		return nil, err
	}

	if !vehicle.Active {
		c.log.Warn("GetVehicleByPlate: vehicle plate=%s is inactive", plate)
		return nil, ErrVehicleNotFound
	}

	c.cache.SetDefault(plate, vehicle)

	v := *vehicle
	return &v, nil
}

func (c *Client) fetch(ctx context.Context, plate string) (*domain.Vehicle, error) {
	endpoint := fmt.Sprintf("%s/internal/vehicles/by-plate/%s", c.baseURL, url.PathEscape(plate))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("GetVehicleByPlate: fleet service unavailable, plate=%s: %v", plate, err)
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrVehicleNotFound
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	var vehicle Vehicle
	if err := json.NewDecoder(resp.Body).Decode(&vehicle); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return vehicle.toDomain(), nil
}
