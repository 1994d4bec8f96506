// internal/calendar/toolclient.go
package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"hiring-coordinator/internal/common/errors"
	"hiring-coordinator/internal/common/httpx"
	"hiring-coordinator/internal/models"
)

// ToolClient speaks JSON over HTTP to the calendar tool server that
// fronts the workspace calendar APIs.
type ToolClient struct {
	baseURL    string
	apiKey     string
	httpClient *httpx.Client
}

func NewToolClient(baseURL, apiKey string, timeout time.Duration) *ToolClient {
	return &ToolClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpx.NewClient(timeout),
	}
}

type listBusyRequest struct {
	CalendarRef string    `json:"calendarRef"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
}

type listBusyResponse struct {
	Intervals []struct {
		Start time.Time `json:"start"`
		End   time.Time `json:"end"`
	} `json:"intervals"`
}

func (c *ToolClient) ListBusy(ctx context.Context, calendarRef string, window models.Window) ([]models.BusyInterval, error) {
	var resp listBusyResponse
	err := c.post(ctx, "/v1/calendar/busy", listBusyRequest{
		CalendarRef: calendarRef,
		Start:       window.Start,
		End:         window.End,
	}, &resp)
	if err != nil {
		return nil, err
	}

	intervals := make([]models.BusyInterval, 0, len(resp.Intervals))
	for _, iv := range resp.Intervals {
		intervals = append(intervals, models.BusyInterval{Start: iv.Start, End: iv.End})
	}
	return intervals, nil
}

type createEventResponse struct {
	EventID   string `json:"eventId"`
	EventLink string `json:"eventLink"`
	Success   bool   `json:"success"`
	Message   string `json:"message"`
}

func (c *ToolClient) CreateEvent(ctx context.Context, req EventRequest) (*EventResult, error) {
	var resp createEventResponse
	if err := c.post(ctx, "/v1/calendar/events", req, &resp); err != nil {
		return nil, errors.NewEventCreateFailedError(err)
	}
	if !resp.Success {
		return nil, errors.NewEventCreateFailedError(fmt.Errorf("event creation rejected: %s", resp.Message))
	}
	return &EventResult{EventID: resp.EventID, EventLink: resp.EventLink}, nil
}

func (c *ToolClient) post(ctx context.Context, path string, payload, out interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.DoWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("calendar tool returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
