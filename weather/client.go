// Package weather fetches current conditions and owns the shared weather state.
package weather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"start-page/domain"
)

const (
	DefaultBaseURL   = "https://api.openweathermap.org"
	DefaultLatitude  = 37.566
	DefaultLongitude = 126.9784

	placeholderKey = "your_api_key_here"
)

// ErrMissingAPIKey is returned when no usable API key is configured.
var ErrMissingAPIKey = errors.New("API key not found, set OPENWEATHER_API_KEY")

// Report is the current weather at the configured location.
type Report struct {
	Temp        int         `json:"temp"`
	Description string      `json:"description"`
	Code        int         `json:"code"`
	Location    string      `json:"location"`
	Icon        domain.Icon `json:"icon"`
}

// Config holds the weather endpoint settings.
type Config struct {
	APIKey    string
	BaseURL   string
	Latitude  float64
	Longitude float64
	Timeout   time.Duration
}

// Client reads the current weather from an OpenWeather compatible endpoint.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient creates a Client. Zero fields of cfg take their defaults.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Latitude == 0 && cfg.Longitude == 0 {
		cfg.Latitude, cfg.Longitude = DefaultLatitude, DefaultLongitude
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
}

// statusCode accepts the "cod" field as a number or a numeric string.
type statusCode int

func (s *statusCode) UnmarshalJSON(b []byte) error {
	raw := strings.Trim(string(b), `"`)
	if raw == "" || raw == "null" {
		*s = 0
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("cod %s: %w", b, err)
	}
	*s = statusCode(n)
	return nil
}

type payload struct {
	Cod     statusCode `json:"cod"`
	Message string     `json:"message"`
	Name    string     `json:"name"`
	Main    struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		ID          int    `json:"id"`
		Description string `json:"description"`
	} `json:"weather"`
}

// Current fetches the current weather. A missing key fails without a request.
func (c *Client) Current(ctx context.Context) (Report, error) {
	key := strings.TrimSpace(c.cfg.APIKey)
	if key == "" || key == placeholderKey {
		return Report{}, ErrMissingAPIKey
	}

	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(c.cfg.Latitude, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(c.cfg.Longitude, 'f', -1, 64))
	q.Set("appid", key)
	q.Set("units", "metric")
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/data/2.5/weather?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Report{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return Report{}, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Report{}, err
	}
	return decodeReport(body)
}

func decodeReport(body []byte) (Report, error) {
	var p payload
	if err := sonic.Unmarshal(body, &p); err != nil {
		return Report{}, fmt.Errorf("decode weather: %w", err)
	}
	if p.Cod != http.StatusOK {
		if p.Message == "" {
			p.Message = fmt.Sprintf("unexpected status %d", p.Cod)
		}
		return Report{}, errors.New(p.Message)
	}
	if len(p.Weather) == 0 {
		return Report{}, errors.New("weather payload has no conditions")
	}
	w := p.Weather[0]
	return Report{
		Temp:        int(math.Floor(p.Main.Temp + 0.5)),
		Description: w.Description,
		Code:        w.ID,
		Location:    p.Name,
		Icon:        domain.IconFor(w.ID),
	}, nil
}
