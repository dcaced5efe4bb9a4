package steward

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

const (
	maxRecords    = 12
	promptRecords = 5 // how many recent records go into the prompt
)

// CycleRecord captures what happened in a single steward cycle.
type CycleRecord struct {
	Month       uint64  `json:"month"`
	Action      string  `json:"action"`
	Target      string  `json:"target,omitempty"` // expense line or tax
	Balance     int64   `json:"balance"`
	Debt        int64   `json:"debt"`
	Deficit     float64 `json:"deficit_ratio"`
	CrisisLevel string  `json:"crisis_level"`
	Rationale   string  `json:"rationale,omitempty"`
}

// CycleMemory keeps the most recent cycle records, persisted as JSON.
type CycleMemory struct {
	Records []CycleRecord `json:"records"`

	path string
}

// LoadMemory reads the memory file. A missing or corrupt file yields empty
// memory; an empty path keeps memory in process only.
func LoadMemory(path string) *CycleMemory {
	mem := &CycleMemory{path: path}
	if path == "" {
		return mem
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return mem
	}
	if err := json.Unmarshal(data, mem); err != nil {
		slog.Warn("steward memory corrupted, starting fresh", "path", path, "error", err)
		return &CycleMemory{path: path}
	}
	return mem
}

// Save writes the memory to disk.
func (m *CycleMemory) Save() error {
	if m.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal steward memory: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		return fmt.Errorf("write steward memory: %w", err)
	}
	return nil
}

// Record adds a cycle record, trimming to maxRecords.
func (m *CycleMemory) Record(r CycleRecord) {
	m.Records = append(m.Records, r)
	if len(m.Records) > maxRecords {
		m.Records = m.Records[len(m.Records)-maxRecords:]
	}
}

// FormatForPrompt summarizes the last few cycles for the prompt.
func (m *CycleMemory) FormatForPrompt() string {
	if m == nil || len(m.Records) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("## Recent Steward Cycles\n")

	start := max(len(m.Records)-promptRecords, 0)
	for _, r := range m.Records[start:] {
		fmt.Fprintf(&b, "- Month %d: action=%s, balance=%d, debt=%d, crisis=%s",
			r.Month, r.Action, r.Balance, r.Debt, r.CrisisLevel)
		if r.Target != "" {
			fmt.Fprintf(&b, ", target=%s", r.Target)
		}
		b.WriteString("\n")
	}
	return b.String()
}
