package astro

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/celestia-labs/reportgen/internal/types"
)

// Client calls a Prokerala-style chart computation API over HTTP.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				ForceAttemptHTTP2:   true,
			},
		},
	}
}

type chartRequestBody struct {
	DateOfBirth string  `json:"date_of_birth"`
	TimeOfBirth string  `json:"time_of_birth"`
	Place       string  `json:"place"`
	Latitude    float64 `json:"latitude,omitempty"`
	Longitude   float64 `json:"longitude,omitempty"`
	Timezone    string  `json:"timezone,omitempty"`
}

type chartResponseBody struct {
	Chart Chart `json:"chart"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) Chart(ctx context.Context, input types.BirthInput) (*Chart, error) {
	body := chartRequestBody{
		DateOfBirth: input.DateOfBirth,
		TimeOfBirth: input.TimeOfBirth,
		Place:       input.Place,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		Timezone:    input.Timezone,
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal chart request: %w", err)
	}

	url := c.baseURL + "/v2/astrology/birth-chart"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create chart request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("chart request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read chart response: %w", err)
	}

	var parsed chartResponseBody
	if resp.StatusCode == http.StatusUnprocessableEntity {
		json.Unmarshal(raw, &parsed)
		if parsed.Error.Code == "unknown_location" || parsed.Error.Code == "" {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedLocation, input.Place)
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chart provider returned status %d: %s", resp.StatusCode, string(raw))
	}

	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal chart response: %w", err)
	}
	return &parsed.Chart, nil
}
