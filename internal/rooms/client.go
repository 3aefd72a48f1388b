// Package rooms is the client for the room-directory HTTP API. It lives
// outside the session layer: its errors never reach the session's transient
// error slot, and session errors never reach it.
package rooms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

// ErrUnauthorized means the bearer credential was rejected. Callers treat it
// as fatal to the current session: invalidate the credential locally, do not
// retry.
var ErrUnauthorized = errors.New("unauthorized")

type RoomInfo struct {
	RoomID      string `json:"room_id"`
	Name        string `json:"name"`
	PlayerCount int    `json:"player_count"`
	IsStarted   bool   `json:"is_started"`
}

type Client struct {
	base  string
	token string
	http  *http.Client
	log   *zap.Logger
}

func NewClient(baseURL, token string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		base:  baseURL,
		token: token,
		http:  &http.Client{Transport: &loggingTransport{rt: http.DefaultTransport, log: log}},
		log:   log,
	}
}

// List returns every room the directory knows about.
func (c *Client) List(ctx context.Context) ([]RoomInfo, error) {
	var out []RoomInfo
	if err := c.do(ctx, http.MethodGet, "/rooms", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create makes a new room and returns it.
func (c *Client) Create(ctx context.Context, name string) (RoomInfo, error) {
	body := struct {
		Name string `json:"name"`
	}{Name: name}
	var out RoomInfo
	if err := c.do(ctx, http.MethodPost, "/rooms", body, &out); err != nil {
		return RoomInfo{}, err
	}
	return out, nil
}

// Join registers a player into a room.
func (c *Client) Join(ctx context.Context, roomID, playerID string) error {
	q := url.Values{}
	q.Set("player_id", playerID)
	path := fmt.Sprintf("/rooms/%s/join?%s", roomID, q.Encode())
	return c.do(ctx, http.MethodPost, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(data)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, payload)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s: %s", method, path, apiDetail(resp))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// apiDetail pulls the directory's {"detail": ...} error body, falling back
// to the HTTP status.
func apiDetail(resp *http.Response) string {
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Detail != "" {
		return body.Detail
	}
	return resp.Status
}

// loggingTransport logs each round trip at debug level.
type loggingTransport struct {
	rt  http.RoundTripper
	log *zap.Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.log.Debug("http request",
		zap.String("method", req.Method), zap.String("url", req.URL.String()))
	resp, err := t.rt.RoundTrip(req)
	if err != nil {
		t.log.Warn("http request failed",
			zap.String("url", req.URL.String()), zap.Error(err))
		return nil, err
	}
	t.log.Debug("http response",
		zap.String("status", resp.Status), zap.String("url", req.URL.String()))
	return resp, nil
}
