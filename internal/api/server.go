// Package api provides the HTTP API for observing and steering a campaign.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/talgya/civic-sim/internal/election"
	"github.com/talgya/civic-sim/internal/engine"
	"github.com/talgya/civic-sim/internal/legislation"
	"github.com/talgya/civic-sim/internal/llm"
	"github.com/talgya/civic-sim/internal/persistence"
	"github.com/talgya/civic-sim/internal/politics"
	"github.com/talgya/civic-sim/internal/world"
)

// Server serves the campaign over HTTP.
type Server struct {
	Sim      *engine.Simulation
	Eng      *engine.Engine // optional; manual ticks go straight to Sim without it
	LLM      *llm.Client
	DB       *persistence.DB
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	// CORSOrigins are allowed in addition to the local dev servers.
	CORSOrigins []string
	// GazetteRate is the per-IP hourly limit on gazette requests.
	GazetteRate int

	// Cached gazette (regenerated at most once per sim month).
	gazetteMu sync.Mutex
	gazette   *llm.Gazette

	limiterOnce    sync.Once
	gazetteLimiter *RateLimiter
}

// limiter returns the gazette rate limiter, shared by every Handler.
func (s *Server) limiter() *RateLimiter {
	s.limiterOnce.Do(func() {
		rate := s.GazetteRate
		if rate <= 0 {
			rate = 10
		}
		s.gazetteLimiter = NewRateLimiter(rate, time.Hour)
	})
	return s.gazetteLimiter
}

// Close releases the rate limiter's cleanup goroutine.
func (s *Server) Close() {
	if s.gazetteLimiter != nil {
		s.gazetteLimiter.Close()
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	gazetteLimiter := s.limiter()

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsMiddleware(s.CORSOrigins))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/city", s.handleCity)
		r.Get("/budget", s.handleBudget)
		r.Get("/parties", s.handleParties)
		r.Get("/offices", s.handleOffices)
		r.Get("/elections", s.handleElections)
		r.Get("/elections/{id}", s.handleElection)
		r.Get("/bills", s.handleBills)
		r.Get("/proposals", s.handleProposals)
		r.Get("/events", s.handleEvents)
		r.Get("/politicians", s.handlePoliticians)
		r.Get("/politicians/{id}", s.handlePolitician)
		r.With(gazetteLimiter.Middleware).Get("/gazette", s.handleGazette)

		r.Group(func(r chi.Router) {
			r.Use(s.adminOnly)
			r.Post("/speed", s.handleSpeed)
			r.Post("/tick", s.handleTick)
			r.Post("/snapshot", s.handleSnapshot)
			r.Post("/budget/allocation", s.handleAllocation)
			r.Post("/tax", s.handleTax)
			r.Post("/bills", s.handleProposeBill)
			r.Post("/bills/{id}/enact", s.handleEnact)
			r.Post("/elections/{id}/enter", s.handleEnterRace)
		})
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	defer s.Close()
	addr := fmt.Sprintf(":%d", s.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	}
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Localhost dev servers are always allowed.
func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	for _, origin := range origins {
		if origin = strings.TrimSpace(origin); origin != "" {
			allowedOrigins[origin] = true
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if allowedOrigins[origin] {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

func (s *Server) adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no CIVICSIM_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{}
	s.Sim.View(func(st *engine.State) {
		status["campaign_id"] = st.CampaignID
		status["month"] = st.Month
		status["sim_time"] = engine.SimTime(st.StartDate, st.Month)
		status["country"] = st.CountryID
		if st.City != nil {
			status["city"] = st.City.Name
			status["population"] = st.City.Population
			status["mood"] = st.City.Stats.OverallCitizenMood
			status["outlook"] = st.City.Stats.EconomicOutlook
		}
		if m := st.Mayor(); m != nil {
			status["mayor"] = m.Name
		}
		if p := st.Player; p != nil {
			status["player"] = p.Name
			status["approval"] = p.ApprovalRating
			status["player_is_mayor"] = st.PlayerIsMayor()
		}
		status["pending_bills"] = len(st.PendingBills())
		status["upcoming_elections"] = len(st.UpcomingElections())
	})
	if s.Eng != nil {
		status["speed"] = s.Eng.Speed()
	}
	if s.DB != nil {
		if last, err := s.DB.GetMeta("last_month"); err == nil {
			status["last_saved_month"] = last
		}
	}
	status["last_results"] = s.Sim.LastResults()
	writeJSON(w, status)
}

func (s *Server) handleCity(w http.ResponseWriter, r *http.Request) {
	s.Sim.View(func(st *engine.State) {
		if st.City == nil {
			http.Error(w, "no city", http.StatusNotFound)
			return
		}
		writeJSON(w, st.City)
	})
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	s.Sim.View(func(st *engine.State) {
		if st.City == nil {
			http.Error(w, "no city", http.StatusNotFound)
			return
		}
		b := st.City.Stats.Budget

		type line struct {
			Category  world.ExpenseCategory `json:"category"`
			Amount    int64                 `json:"amount"`
			PerCapita float64               `json:"per_capita"`
		}
		lines := make([]line, 0, len(world.ExpenseCategories))
		for _, cat := range world.ExpenseCategories {
			lines = append(lines, line{
				Category:  cat,
				Amount:    b.ExpenseAllocations[cat],
				PerCapita: b.PerCapitaSpending(cat, st.City.Population),
			})
		}
		writeJSON(w, map[string]any{
			"budget":   b,
			"expenses": lines,
		})
	})
}

func (s *Server) handleParties(w http.ResponseWriter, r *http.Request) {
	s.Sim.View(func(st *engine.State) {
		var parties []*politics.Party
		if st.City != nil {
			parties = politics.CloneLandscape(st.City.PoliticalLandscape)
		}
		slices.SortFunc(parties, func(a, b *politics.Party) int {
			switch {
			case a.Popularity > b.Popularity:
				return -1
			case a.Popularity < b.Popularity:
				return 1
			}
			return strings.Compare(a.Name, b.Name)
		})
		writeJSON(w, map[string]any{
			"incumbent_party_id": st.IncumbentPartyID(),
			"parties":            parties,
		})
	})
}

func (s *Server) handleOffices(w http.ResponseWriter, r *http.Request) {
	s.Sim.View(func(st *engine.State) {
		writeJSON(w, st.Offices)
	})
}

// handleElections lists upcoming elections; ?all=true includes concluded ones.
func (s *Server) handleElections(w http.ResponseWriter, r *http.Request) {
	type electionSummary struct {
		ID              string         `json:"id"`
		OfficeName      string         `json:"office_name"`
		Level           string         `json:"level"`
		ElectoralSystem string         `json:"electoral_system"`
		ElectionDate    string         `json:"election_date"`
		Seats           int            `json:"seats"`
		Candidates      int            `json:"candidates"`
		Status          string         `json:"status"`
		PartyPolling    map[string]int `json:"party_polling,omitempty"`
	}

	all := r.URL.Query().Get("all") == "true"
	s.Sim.View(func(st *engine.State) {
		list := st.UpcomingElections()
		if all {
			list = st.Elections
		}
		out := make([]electionSummary, 0, len(list))
		for _, e := range list {
			out = append(out, electionSummary{
				ID:              e.ID,
				OfficeName:      e.OfficeName,
				Level:           e.Level,
				ElectoralSystem: e.ElectoralSystem,
				ElectionDate:    e.ElectionDate.Format(time.DateOnly),
				Seats:           e.NumberOfSeatsToFill,
				Candidates:      len(e.Candidates),
				Status:          electionStatus(e),
				PartyPolling:    e.PartyPolling,
			})
		}
		writeJSON(w, out)
	})
}

func electionStatus(e *election.Election) string {
	if e.Outcome.Status == "" {
		return "upcoming"
	}
	return e.Outcome.Status
}

func (s *Server) handleElection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.Sim.View(func(st *engine.State) {
		e := st.Election(id)
		if e == nil {
			http.Error(w, "election not found", http.StatusNotFound)
			return
		}
		writeJSON(w, e)
	})
}

// handleBills lists bills, optionally filtered by ?status=.
func (s *Server) handleBills(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	s.Sim.View(func(st *engine.State) {
		out := make([]*legislation.Bill, 0, len(st.Bills))
		for _, b := range st.Bills {
			if status == "" || b.Status == status {
				out = append(out, b)
			}
		}
		writeJSON(w, out)
	})
}

func (s *Server) handleProposals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, legislation.Proposals)
}

// maxStoredEvents caps ?limit= when older events are read from the database.
const maxStoredEvents = 5000

// handleEvents returns the most recent events, oldest first. Supports
// ?limit= and ?category=. Limits beyond the in-memory log are served from
// the database when one is attached.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = min(n, maxStoredEvents)
		}
	}
	category := r.URL.Query().Get("category")

	if limit > engine.MaxEvents {
		if s.DB == nil {
			limit = engine.MaxEvents
		} else {
			s.storedEvents(w, limit, category)
			return
		}
	}

	s.Sim.View(func(st *engine.State) {
		var events []engine.Event
		for _, e := range st.Events {
			if category == "" || e.Category == category {
				events = append(events, e)
			}
		}
		start := 0
		if len(events) > limit {
			start = len(events) - limit
		}
		writeJSON(w, events[start:])
	})
}

// storedEvents merges the database log with the live one, which may hold
// events not saved yet, and returns the newest limit of them oldest first.
func (s *Server) storedEvents(w http.ResponseWriter, limit int, category string) {
	stored, err := s.DB.RecentEvents(limit, category)
	if err != nil {
		slog.Error("event query failed", "error", err)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}

	slices.Reverse(stored)
	var events []engine.Event
	seen := make(map[uint64]bool)
	for _, e := range stored {
		if e.Seq == 0 || !seen[e.Seq] {
			seen[e.Seq] = true
			events = append(events, e)
		}
	}
	s.Sim.View(func(st *engine.State) {
		for _, e := range st.Events {
			if (category == "" || e.Category == category) && !seen[e.Seq] {
				events = append(events, e)
			}
		}
	})
	// Unnumbered rows predate sequence numbers and sort first.
	slices.SortStableFunc(events, func(a, b engine.Event) int {
		return cmp.Compare(a.Seq, b.Seq)
	})
	if len(events) > limit {
		events = events[len(events)-limit:]
	}
	writeJSON(w, events)
}

func (s *Server) handlePoliticians(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}
	list, err := s.DB.SavedPoliticians()
	if err != nil {
		slog.Error("list politicians failed", "error", err)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, list)
}

func (s *Server) handlePolitician(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}
	p, err := s.DB.SavedPolitician(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "politician not found", http.StatusNotFound)
		return
	}
	writeJSON(w, p)
}

func (s *Server) handleGazette(w http.ResponseWriter, r *http.Request) {
	s.gazetteMu.Lock()
	defer s.gazetteMu.Unlock()

	month := s.Sim.CurrentMonth()
	if s.gazette != nil && s.gazette.Month == month {
		writeJSON(w, s.gazette)
		return
	}

	var data *llm.GazetteData
	s.Sim.View(func(st *engine.State) {
		data = llm.GazetteDataFromState(st)
	})

	s.gazette = llm.GenerateGazette(r.Context(), s.LLM, month, data)
	writeJSON(w, s.gazette)
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if s.Eng == nil {
		http.Error(w, "engine not running", http.StatusServiceUnavailable)
		return
	}
	var req struct {
		Speed float64 `json:"speed"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Speed < 0 || req.Speed > 1000 {
		http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
		return
	}
	s.Eng.SetSpeed(req.Speed)
	slog.Info("speed changed", "speed", req.Speed)
	writeJSON(w, map[string]float64{"speed": s.Eng.Speed()})
}

// handleTick advances one month immediately.
func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	var month uint64
	var results []engine.Result
	if s.Eng != nil {
		s.Eng.Step()
		month, results = s.Sim.CurrentMonth(), s.Sim.LastResults()
	} else {
		month, results = s.Sim.TickNext()
	}
	writeJSON(w, map[string]any{
		"month":   month,
		"results": results,
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}
	var err error
	var month uint64
	s.Sim.View(func(st *engine.State) {
		month = st.Month
		err = s.DB.SaveState(st)
	})
	if err != nil {
		slog.Error("snapshot save failed", "error", err)
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"month": month, "message": "snapshot saved"})
}

func (s *Server) handleAllocation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category string `json:"category"`
		Amount   int64  `json:"amount"`
	}
	if !decode(w, r, &req) {
		return
	}
	desc, err := s.Sim.EditAllocation(req.Category, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{"success": true, "details": desc})
}

func (s *Server) handleTax(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tax  string  `json:"tax"`
		Rate float64 `json:"rate"`
	}
	if !decode(w, r, &req) {
		return
	}
	desc, err := s.Sim.SetTaxRate(req.Tax, req.Rate)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{"success": true, "details": desc})
}

func (s *Server) handleProposeBill(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProposalID string `json:"proposal_id"`
	}
	if !decode(w, r, &req) {
		return
	}
	b, err := s.Sim.ProposeBill(req.ProposalID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, b)
}

func (s *Server) handleEnact(w http.ResponseWriter, r *http.Request) {
	desc, err := s.Sim.ForceEnact(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{"success": true, "details": desc})
}

func (s *Server) handleEnterRace(w http.ResponseWriter, r *http.Request) {
	desc, err := s.Sim.EnterRace(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{"success": true, "details": desc})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return false
	}
	return true
}

// writeError maps intervention errors to status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, engine.ErrNoPlayer):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}

func writeJSON(w http.ResponseWriter, data any) {
	writeJSONStatus(w, http.StatusOK, data)
}

func writeJSONStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
