package weather

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/cropledger/internal/config"
	"github.com/mamadbah2/cropledger/internal/domain/models"
)

// Client exposes the OpenWeather operations used by the application.
type Client interface {
	Current(ctx context.Context, city string) (models.ClimateReading, error)
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient  *resty.Client
	apiKey      string
	defaultCity string
	now         func() time.Time
}

// NewClient builds an OpenWeather client using the provided configuration values.
func NewClient(cfg config.WeatherConfig) *APIClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)

	return &APIClient{
		httpClient:  restyClient,
		apiKey:      cfg.APIKey,
		defaultCity: cfg.DefaultCity,
		now:         time.Now,
	}
}

// currentResponse mirrors the fields read from /weather.
type currentResponse struct {
	Name string `json:"name"`
	Dt   int64  `json:"dt"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Rain struct {
		OneHour float64 `json:"1h"`
	} `json:"rain"`
}

// apiError represents an OpenWeather error payload.
type apiError struct {
	Cod     any    `json:"cod"`
	Message string `json:"message"`
}

// Current returns the present conditions for city in metric units. An
// empty city uses the configured default. Missing rain data reads as 0.
func (c *APIClient) Current(ctx context.Context, city string) (models.ClimateReading, error) {
	if city == "" {
		city = c.defaultCity
	}
	if city == "" {
		return models.ClimateReading{}, fmt.Errorf("weather: city must not be empty")
	}

	result := new(currentResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":     city,
			"appid": c.apiKey,
			"units": "metric",
			"lang":  "pt_br",
		}).
		SetResult(result).
		SetError(apiErr).
		Get("/weather")
	if err != nil {
		return models.ClimateReading{}, fmt.Errorf("fetch current weather: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return models.ClimateReading{}, fmt.Errorf("openweather api error: code=%d, message=%s", resp.StatusCode(), apiErr.Message)
	}

	observed := c.now().UTC()
	if result.Dt > 0 {
		observed = time.Unix(result.Dt, 0).UTC()
	}
	name := result.Name
	if name == "" {
		name = city
	}

	return models.ClimateReading{
		Temperature: result.Main.Temp,
		Humidity:    result.Main.Humidity,
		Rainfall:    result.Rain.OneHour,
		ObservedAt:  observed,
		City:        name,
	}, nil
}
