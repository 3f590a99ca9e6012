package matchsim

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/scorebook/internal/domain/model"
	"github.com/okian/scorebook/internal/domain/stats"
)

// Wire shapes of the service responses the simulator reads.
type (
	matchReply struct {
		MatchID      string    `json:"match_id"`
		CreatedAt    time.Time `json:"created_at"`
		Participants []string  `json:"participants"`
	}

	recordReply struct {
		Event          model.Event `json:"event"`
		Score          model.Score `json:"score"`
		ClearSelection bool        `json:"clear_selection"`
	}

	ackReply struct {
		Status    string `json:"status"`
		Duplicate bool   `json:"duplicate"`
	}

	eventReply struct {
		Event model.Event `json:"event"`
		Score model.Score `json:"score"`
	}

	eventLogReply struct {
		Events []model.Event `json:"events"`
		Score  model.Score   `json:"score"`
	}

	scoreReply struct {
		Score model.Score `json:"score"`
	}
)

type eventBody struct {
	Participant string `json:"participant"`
	EventKey    string `json:"event_key"`
	RequestID   string `json:"request_id,omitempty"`
}

// client is a small JSON client for the scorebook API.
type client struct {
	http    *http.Client
	baseURL string
}

func newClient(baseURL string, timeout time.Duration) *client {
	return &client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// do sends body as JSON and decodes the reply into out when the status is want.
func (c *client) do(ctx context.Context, method, path string, body any, want int, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != want {
		return fmt.Errorf("%w: %s %s: got %d, want %d: %s",
			ErrUnexpectedStatus, method, path, resp.StatusCode, want, bytes.TrimSpace(data))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *client) health(ctx context.Context) error {
	if err := c.do(ctx, http.MethodGet, "/healthz", nil, http.StatusOK, nil); err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	return nil
}

func (c *client) createMatch(ctx context.Context, starters []string) (matchReply, error) {
	var out matchReply
	err := c.do(ctx, http.MethodPost, "/matches", map[string][]string{"starters": starters}, http.StatusCreated, &out)
	return out, err
}

func (c *client) deleteMatch(ctx context.Context, matchID string) error {
	return c.do(ctx, http.MethodDelete, "/matches/"+matchID, nil, http.StatusNoContent, nil)
}

func (c *client) record(ctx context.Context, matchID string, cmd Command) (recordReply, error) {
	var out recordReply
	err := c.do(ctx, http.MethodPost, "/matches/"+matchID+"/events",
		eventBody{Participant: cmd.Participant, EventKey: cmd.Key, RequestID: cmd.RequestID},
		http.StatusCreated, &out)
	return out, err
}

func (c *client) retry(ctx context.Context, matchID string, cmd Command) (ackReply, error) {
	var out ackReply
	err := c.do(ctx, http.MethodPost, "/matches/"+matchID+"/events",
		eventBody{Participant: cmd.Participant, EventKey: cmd.Key, RequestID: cmd.RequestID},
		http.StatusOK, &out)
	return out, err
}

func (c *client) edit(ctx context.Context, matchID string, seq int64, cmd Command) (eventReply, error) {
	var out eventReply
	err := c.do(ctx, http.MethodPut, eventPath(matchID, seq),
		eventBody{Participant: cmd.Participant, EventKey: cmd.Key},
		http.StatusOK, &out)
	return out, err
}

func (c *client) deleteEvent(ctx context.Context, matchID string, seq int64) (scoreReply, error) {
	var out scoreReply
	err := c.do(ctx, http.MethodDelete, eventPath(matchID, seq), nil, http.StatusOK, &out)
	return out, err
}

func (c *client) eventLog(ctx context.Context, matchID string) (eventLogReply, error) {
	var out eventLogReply
	err := c.do(ctx, http.MethodGet, "/matches/"+matchID+"/events", nil, http.StatusOK, &out)
	return out, err
}

func (c *client) score(ctx context.Context, matchID string) (model.Score, error) {
	var out model.Score
	err := c.do(ctx, http.MethodGet, "/matches/"+matchID+"/score", nil, http.StatusOK, &out)
	return out, err
}

func (c *client) pivot(ctx context.Context, matchID string) (stats.Pivot, error) {
	var out stats.Pivot
	err := c.do(ctx, http.MethodGet, "/matches/"+matchID+"/pivot", nil, http.StatusOK, &out)
	return out, err
}

func eventPath(matchID string, seq int64) string {
	return "/matches/" + matchID + "/events/" + strconv.FormatInt(seq, 10)
}
