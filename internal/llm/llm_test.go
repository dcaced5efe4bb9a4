package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/civic-sim/internal/engine"
	"github.com/talgya/civic-sim/internal/entropy"
	"github.com/talgya/civic-sim/internal/legislation"
	"github.com/talgya/civic-sim/internal/politics"
	"github.com/talgya/civic-sim/internal/world"
)

// fakeAPI answers every Messages call with text.
func fakeAPI(t *testing.T, text string, status int) (*Client, *int) {
	t.Helper()
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, apiVersion, r.Header.Get("anthropic-version"))

		var req request
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultModel, req.Model)

		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"text": text}},
		})
	}))
	t.Cleanup(srv.Close)

	c := NewClient("test-key", "")
	c.apiURL = srv.URL
	return c, &calls
}

func TestNilClientIsDisabled(t *testing.T) {
	var c *Client
	assert.False(t, c.Enabled())
	assert.Nil(t, NewClient("", "model"))

	_, err := c.Complete(context.Background(), "", "hi", 10)
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestCompleteAndRateLimit(t *testing.T) {
	c, calls := fakeAPI(t, "hello", http.StatusOK)
	c.maxPerMin = 2

	out, err := c.Complete(context.Background(), "sys", "prompt", 10)
	require.NoError(t, err)
	assert.Equal(t, "hello", out)

	_, err = c.Complete(context.Background(), "sys", "prompt", 10)
	require.NoError(t, err)
	_, err = c.Complete(context.Background(), "sys", "prompt", 10)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, 2, *calls)
}

func TestCompleteAPIError(t *testing.T) {
	c, _ := fakeAPI(t, "", http.StatusInternalServerError)
	_, err := c.Complete(context.Background(), "", "prompt", 10)
	assert.ErrorContains(t, err, "API error 500")
}

func campaignState(t *testing.T) *engine.State {
	t.Helper()
	sim := engine.NewSimulation(engine.NewCampaign(entropy.New(5), engine.CampaignParams{
		CityName:        "Lakeport",
		StatePopulation: 400_000,
		PlayerName:      "Jo Rivera",
	}), nil)
	sim.TickMonth(1)
	var st *engine.State
	sim.View(func(s *engine.State) { st = s })
	return st
}

func TestGazetteFallback(t *testing.T) {
	st := campaignState(t)
	st.Events = append(st.Events, engine.Event{Month: st.Month, Category: engine.CategoryAdmin, Description: "Parks budget doubled"})

	data := GazetteDataFromState(st)
	assert.Equal(t, "Lakeport", data.City)
	assert.Equal(t, "Jo Rivera", data.Player)
	assert.NotEmpty(t, data.Parties)
	assert.Contains(t, data.Decrees, "Parks budget doubled")
	for i := 1; i < len(data.Parties); i++ {
		assert.GreaterOrEqual(t, data.Parties[i-1].Popularity, data.Parties[i].Popularity)
	}

	g := GenerateGazette(context.Background(), nil, st.Month, data)
	assert.False(t, g.Narrated)
	assert.Equal(t, st.Month, g.Month)
	assert.True(t, strings.HasPrefix(g.Content, "THE LAKEPORT GAZETTE\n"))
	assert.Contains(t, g.Content, "Parks budget doubled")
	assert.Contains(t, g.Content, "PARTY STANDINGS")
}

func TestGazetteNarratedAndFailure(t *testing.T) {
	data := &GazetteData{SimTime: "February 2025", City: "Lakeport", Mood: "Content", Outlook: "Stable"}

	c, _ := fakeAPI(t, "LAKEPORT GAZETTE: all quiet", http.StatusOK)
	g := GenerateGazette(context.Background(), c, 1, data)
	assert.True(t, g.Narrated)
	assert.Equal(t, "LAKEPORT GAZETTE: all quiet", g.Content)

	failing, _ := fakeAPI(t, "", http.StatusBadGateway)
	g = GenerateGazette(context.Background(), failing, 1, data)
	assert.False(t, g.Narrated)
	assert.Contains(t, g.Content, "THE LAKEPORT GAZETTE")
}

func TestBillAuthor(t *testing.T) {
	city := world.GenerateCity(entropy.New(8), world.CityParams{Name: "Lakeport", Population: 50_000})
	member := &politics.Politician{ID: "m", Name: "Sam Ortiz", PartyName: "Greens"}
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	plain, ok := BillAuthor{}.DraftBill(entropy.New(1), member, city, nil, now)
	require.True(t, ok)
	base, _ := legislation.TemplateAuthor{}.DraftBill(entropy.New(1), member, city, nil, now)
	assert.Equal(t, base.ProposalID, plain.ProposalID)
	assert.Equal(t, base.Title, plain.Title)

	c, _ := fakeAPI(t, "\"Lakeport Green Streets Act\"\n", http.StatusOK)
	titled, ok := BillAuthor{Client: c}.DraftBill(entropy.New(1), member, city, nil, now)
	require.True(t, ok)
	assert.Equal(t, "Lakeport Green Streets Act", titled.Title)
	assert.Equal(t, base.Changes, titled.Changes)
}

func TestCleanTitle(t *testing.T) {
	assert.Equal(t, "Safe Streets Act", cleanTitle("  **Safe Streets Act**  \nExplanation"))
	assert.Empty(t, cleanTitle("   "))
	assert.Empty(t, cleanTitle(strings.Repeat("x", maxTitleLen+1)))
}
