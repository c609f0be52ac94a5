// Package shifts is the attendance service's HTTP client for the Shifts
// service's internal location endpoint.
package shifts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/guardpoint/workforce/internal/attendance/ports"
)

const defaultTimeout = 10 * time.Second

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("shifts client requires a base url")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{baseURL: cfg.BaseURL, httpClient: httpClient}, nil
}

type locationResponse struct {
	Success  bool `json:"success"`
	Location struct {
		Latitude       float64   `json:"latitude"`
		Longitude      float64   `json:"longitude"`
		ScheduledStart time.Time `json:"scheduled_start_time"`
		ScheduledEnd   time.Time `json:"scheduled_end_time"`
		BreakMinutes   int       `json:"break_minutes"`
	} `json:"location"`
	ErrorMessage string `json:"error_message"`
}

func (c *Client) GetShiftLocation(ctx context.Context, shiftID uuid.UUID) (ports.ShiftLocation, error) {
	url := fmt.Sprintf("%s/internal/shifts/%s/location", c.baseURL, shiftID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ports.ShiftLocation{}, fmt.Errorf("build location request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ports.ShiftLocation{}, fmt.Errorf("call shifts service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return ports.ShiftLocation{}, fmt.Errorf("shifts service status %d: %s", resp.StatusCode, string(snippet))
	}

	var body locationResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return ports.ShiftLocation{}, fmt.Errorf("decode location response: %w", err)
	}
	if !body.Success {
		return ports.ShiftLocation{}, fmt.Errorf("shifts service refused location query: %s", body.ErrorMessage)
	}
	return ports.ShiftLocation{
		Latitude:       body.Location.Latitude,
		Longitude:      body.Location.Longitude,
		ScheduledStart: body.Location.ScheduledStart,
		ScheduledEnd:   body.Location.ScheduledEnd,
		BreakMinutes:   body.Location.BreakMinutes,
	}, nil
}

var _ ports.ShiftDirectory = (*Client)(nil)
