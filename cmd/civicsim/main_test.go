package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/civic-sim/internal/election"
	"github.com/talgya/civic-sim/internal/engine"
	"github.com/talgya/civic-sim/internal/entropy"
	"github.com/talgya/civic-sim/internal/persistence"
	"github.com/talgya/civic-sim/internal/politics"
	"github.com/talgya/civic-sim/internal/world"
)

// execute runs the CLI against a config and database in a temp directory.
func execute(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	for _, k := range []string{"CIVICSIM_SEED", "CIVICSIM_ADMIN_KEY", "ANTHROPIC_API_KEY", "CORS_ORIGINS", "PORT"} {
		t.Setenv(k, "")
	}
	t.Setenv("CIVICSIM_DB", filepath.Join(dir, "civicsim.db"))

	var out bytes.Buffer
	cmd := newRootCmd(&app{})
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", filepath.Join(dir, "civicsim.yaml"), "--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestGenerate(t *testing.T) {
	out, err := execute(t, t.TempDir(), "generate", "--seed", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "Campaign")
	assert.Contains(t, out, "Parties")
	assert.Contains(t, out, "Offices")
	assert.Contains(t, out, "Scheduled elections")
}

func TestGenerateJSONIsDeterministic(t *testing.T) {
	decode := func() *engine.State {
		out, err := execute(t, t.TempDir(), "generate", "--seed", "7", "--json")
		require.NoError(t, err)
		var st engine.State
		require.NoError(t, json.Unmarshal([]byte(out), &st))
		return &st
	}
	a, b := decode(), decode()
	assert.EqualValues(t, 7, a.Seed)
	assert.Equal(t, a.City.Name, b.City.Name)
	assert.Equal(t, a.City.ID, b.City.ID)
	assert.Equal(t, a.City.Population, b.City.Population)
	assert.Equal(t, a.City.Stats.Budget, b.City.Stats.Budget)
	assert.NotEqual(t, a.CampaignID, b.CampaignID)
}

func TestPoll(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, dir, "poll", "--seed", "7", "--office", "mayor", "--months", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Mayor")
	assert.Contains(t, out, "Candidate")

	_, err = execute(t, dir, "poll", "--seed", "7", "--office", "dogcatcher")
	assert.ErrorContains(t, err, "dogcatcher")
}

func TestPollWithPlayerRunningForMayor(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "civicsim.yaml"), []byte(`
campaign:
  player_name: Sam Rivera
  player_runs_for_mayor: true
`), 0o644))
	out, err := execute(t, dir, "poll", "--seed", "7", "--office", "mayor")
	require.NoError(t, err)
	assert.Contains(t, out, "Sam Rivera *")
}

func TestRenderPollNamesIndependentLists(t *testing.T) {
	city := world.GenerateCity(entropy.New(2), world.CityParams{CountryID: "NLD", Population: 150_000})
	inc := politics.GenerateFullAIPolitician(entropy.New(3), politics.PoliticianOptions{AdultPopulation: city.AdultPopulation(), IsIncumbent: true})
	inc.IsPlayer = true
	e := election.NewInstance(entropy.New(4), election.InstanceParams{
		Type:         election.ElectionType{ID: "city_council", OfficeName: "City Council", ElectoralSystem: election.SystemPartyListPR, Seats: 9},
		Entity:       city,
		Incumbents:   []*politics.Politician{inc},
		ElectionDate: engine.DefaultStartDate.AddDate(1, 0, 0),
	})

	var out bytes.Buffer
	renderPoll(&out, e, partyNames(city.PoliticalLandscape))
	assert.Contains(t, out.String(), inc.Name+" (Independent)")
	assert.NotContains(t, out.String(), election.IndependentListPrefix)
}

func TestSimulateSaves(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, dir, "simulate", "--seed", "7", "--months", "3", "--save")
	require.NoError(t, err)
	assert.Contains(t, out, "February 2025")
	assert.Contains(t, out, "approval")

	db, err := persistence.Open(filepath.Join(dir, "civicsim.db"))
	require.NoError(t, err)
	defer db.Close()
	st, err := db.LoadState()
	require.NoError(t, err)
	assert.EqualValues(t, 3, st.Month)
	assert.EqualValues(t, 7, st.Seed)
}

func TestInvalidConfigRejected(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "civicsim.yaml"), []byte("server:\n  port: -1\n"), 0o644))
	_, err := execute(t, dir, "generate")
	assert.ErrorContains(t, err, "invalid server port")
}

func TestStewardNeedsAdminKey(t *testing.T) {
	_, err := execute(t, t.TempDir(), "steward", "--once")
	assert.ErrorContains(t, err, "CIVICSIM_ADMIN_KEY")
}
