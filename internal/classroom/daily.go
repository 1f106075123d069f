package classroom

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const dailyBaseURL = "https://api.daily.co/v1"

// Daily talks to the Daily.co REST API.
type Daily struct {
	apiKey  string
	domain  string
	baseURL string
	client  *http.Client
}

func NewDaily(apiKey, domain string) *Daily {
	return &Daily{
		apiKey:  apiKey,
		domain:  domain,
		baseURL: dailyBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (d *Daily) Name() string { return "daily" }

func (d *Daily) CreateRoom(ctx context.Context, name string, expiresAt time.Time) (*ProviderRoom, error) {
	payload := map[string]interface{}{
		"name":    name,
		"privacy": "private",
		"properties": map[string]interface{}{
			"exp":               expiresAt.Unix(),
			"eject_at_room_exp": true,
			"enable_chat":       true,
		},
	}

	var resp struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	}
	if err := d.do(ctx, http.MethodPost, "/rooms", payload, &resp); err != nil {
		return nil, err
	}

	return &ProviderRoom{
		RoomID:    resp.Name,
		URL:       resp.URL,
		ExpiresAt: expiresAt,
	}, nil
}

func (d *Daily) DeleteRoom(ctx context.Context, roomID string) error {
	return d.do(ctx, http.MethodDelete, "/rooms/"+roomID, nil, nil)
}

func (d *Daily) MeetingToken(ctx context.Context, roomID, userName string, isOwner bool) (string, error) {
	payload := map[string]interface{}{
		"properties": map[string]interface{}{
			"room_name": roomID,
			"user_name": userName,
			"is_owner":  isOwner,
		},
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := d.do(ctx, http.MethodPost, "/meeting-tokens", payload, &resp); err != nil {
		return "", err
	}

	return resp.Token, nil
}

func (d *Daily) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, d.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+d.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: %s %s returned %d: %s",
			ErrProviderUnavailable, method, path, resp.StatusCode, string(raw))
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
