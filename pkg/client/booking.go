package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"roomallot/pkg/model"
)

// APIError is returned for any non-2xx answer from the rooms API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("rooms api: %d %s", e.StatusCode, e.Message)
}

// RoomsClient is a typed client for the rooms booking API.
type RoomsClient struct {
	httpClient *HttpClient
}

func NewRoomsClient(baseURL string) *RoomsClient {
	return &RoomsClient{
		httpClient: NewHttpClient(baseURL),
	}
}

func (c *RoomsClient) HTTP() *HttpClient {
	return c.httpClient
}

// Book creates a booking. A non-empty idempotencyKey makes retries safe.
func (c *RoomsClient) Book(ctx context.Context, req model.BookingRequest, idempotencyKey string) (*model.Booking, error) {
	resp, err := c.httpClient.POST(ctx, "/api/v1/bookings", req, idempotencyHeaders(idempotencyKey))
	if err != nil {
		return nil, err
	}
	var booking model.Booking
	if err := decodeData(resp, http.StatusCreated, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *RoomsClient) Update(ctx context.Context, index int, req model.BookingRequest) (*model.Booking, error) {
	path := "/api/v1/bookings/index/" + strconv.Itoa(index)
	resp, err := c.httpClient.PUT(ctx, path, req, nil)
	if err != nil {
		return nil, err
	}
	var booking model.Booking
	if err := decodeData(resp, http.StatusOK, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *RoomsClient) List(ctx context.Context) ([]model.Booking, error) {
	resp, err := c.httpClient.GET(ctx, "/api/v1/bookings")
	if err != nil {
		return nil, err
	}
	var bookings []model.Booking
	if err := decodeData(resp, http.StatusOK, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (c *RoomsClient) IsAvailable(ctx context.Context, room int, start, end time.Time) (bool, error) {
	q := url.Values{}
	q.Set("start_time", start.Format(time.RFC3339))
	q.Set("end_time", end.Format(time.RFC3339))

	path := fmt.Sprintf("/api/v1/rooms/%d/availability?%s", room, q.Encode())
	resp, err := c.httpClient.GET(ctx, path)
	if err != nil {
		return false, err
	}
	var result struct {
		Available bool `json:"available"`
	}
	if err := decodeData(resp, http.StatusOK, &result); err != nil {
		return false, err
	}
	return result.Available, nil
}

func (c *RoomsClient) Schedule(ctx context.Context, room int) ([]model.Interval, error) {
	resp, err := c.httpClient.GET(ctx, fmt.Sprintf("/api/v1/rooms/%d/schedule", room))
	if err != nil {
		return nil, err
	}
	var slots []model.Interval
	if err := decodeData(resp, http.StatusOK, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func (c *RoomsClient) Stats(ctx context.Context) (*model.RoomStats, error) {
	resp, err := c.httpClient.GET(ctx, "/api/v1/stats")
	if err != nil {
		return nil, err
	}
	var stats model.RoomStats
	if err := decodeData(resp, http.StatusOK, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func idempotencyHeaders(key string) map[string]string {
	if key == "" {
		return nil
	}
	return map[string]string{"Idempotency-Key": key}
}

func decodeData(resp *Response, wantStatus int, target any) error {
	if resp.StatusCode != wantStatus {
		return &APIError{StatusCode: resp.StatusCode, Message: GetErrorMessage(resp)}
	}

	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return fmt.Errorf("could not decode response wrapper:\n%s\n%w", resp.ToString(), err)
	}
	if err := json.Unmarshal(wrapper.Data, target); err != nil {
		return fmt.Errorf("could not decode response data:\n%s\n%w", resp.ToString(), err)
	}
	return nil
}
