// Package steward implements the autonomous city steward.
// It observes the campaign via the API, decides on a budget intervention
// (through the LLM when configured, by rule otherwise) and acts via the
// admin endpoints.
package steward

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/talgya/civic-sim/internal/engine"
	"github.com/talgya/civic-sim/internal/world"
)

// Snapshot holds all data collected during an observation cycle.
type Snapshot struct {
	Status Status         `json:"status"`
	City   world.City     `json:"city"`
	Events []engine.Event `json:"events"`
}

// Status mirrors GET /api/v1/status.
type Status struct {
	CampaignID    string  `json:"campaign_id"`
	Month         uint64  `json:"month"`
	SimTime       string  `json:"sim_time"`
	City          string  `json:"city"`
	Population    int     `json:"population"`
	Mayor         string  `json:"mayor"`
	Player        string  `json:"player"`
	Approval      float64 `json:"approval"`
	PendingBills  int     `json:"pending_bills"`
	UpcomingVotes int     `json:"upcoming_elections"`
	Speed         float64 `json:"speed"`
}

// Observer fetches campaign state from the API.
type Observer struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewObserver creates an Observer targeting the given API base URL.
func NewObserver(baseURL string) *Observer {
	return &Observer{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Observe fetches status, city and recent events.
func (o *Observer) Observe(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}

	if err := o.fetchJSON(ctx, "/api/v1/status", &snap.Status); err != nil {
		return nil, fmt.Errorf("fetch status: %w", err)
	}
	if err := o.fetchJSON(ctx, "/api/v1/city", &snap.City); err != nil {
		return nil, fmt.Errorf("fetch city: %w", err)
	}
	if err := o.fetchJSON(ctx, "/api/v1/events?limit=20", &snap.Events); err != nil {
		return nil, fmt.Errorf("fetch events: %w", err)
	}
	return snap, nil
}

// Ready reports whether the status endpoint answers.
func (o *Observer) Ready(ctx context.Context) bool {
	var s Status
	return o.fetchJSON(ctx, "/api/v1/status", &s) == nil
}

// fetchJSON GETs a path and decodes the JSON response into target.
func (o *Observer) fetchJSON(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := o.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s returned %d: %s", path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
