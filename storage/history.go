package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Analysis is one recorded analysis run.
type Analysis struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
	Success   bool      `json:"success"`
	Result    string    `json:"result,omitempty"`  // analysis text on success
	Message   string    `json:"message,omitempty"` // error message on failure
	Dump      string    `json:"dump,omitempty"`
}

// AnalysisMetadata is the listing view of an Analysis.
type AnalysisMetadata struct {
	ID        string
	Title     string
	Provider  string
	Model     string
	CreatedAt time.Time
	Success   bool
}

// AnalysisMatch is a search hit.
type AnalysisMatch struct {
	AnalysisMetadata
	Preview string
}

// HistoryStorage keeps one JSON file per analysis under <dataDir>/history.
type HistoryStorage struct {
	dir string
}

func NewHistoryStorage(dataDir string) (*HistoryStorage, error) {
	dir := filepath.Join(dataDir, "history")

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	return &HistoryStorage{dir: dir}, nil
}

func (h *HistoryStorage) path(id string) string {
	return filepath.Join(h.dir, id+".json")
}

// Save assigns an id and timestamp when missing and writes the entry.
func (h *HistoryStorage) Save(a *Analysis) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	// 0600: dumps can contain business data
	if err := os.WriteFile(h.path(a.ID), data, 0600); err != nil {
		return fmt.Errorf("failed to write analysis file: %w", err)
	}
	return nil
}

func (h *HistoryStorage) Load(id string) (*Analysis, error) {
	data, err := os.ReadFile(h.path(id))
	if err != nil {
		return nil, fmt.Errorf("failed to read analysis file: %w", err)
	}

	var a Analysis
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis: %w", err)
	}
	return &a, nil
}

func (h *HistoryStorage) Delete(id string) error {
	if err := os.Remove(h.path(id)); err != nil {
		return fmt.Errorf("failed to delete analysis: %w", err)
	}
	return nil
}

// List returns all entries, newest first. Unreadable files are skipped.
func (h *HistoryStorage) List() ([]AnalysisMetadata, error) {
	all, err := h.loadAll()
	if err != nil {
		return nil, err
	}

	out := make([]AnalysisMetadata, 0, len(all))
	for _, a := range all {
		out = append(out, metadataOf(a))
	}
	return out, nil
}

// Search returns entries whose title, dump or result contain query
// (case-insensitive), newest first.
func (h *HistoryStorage) Search(query string) ([]AnalysisMatch, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []AnalysisMatch{}, nil
	}

	all, err := h.loadAll()
	if err != nil {
		return nil, err
	}

	queryLower := strings.ToLower(query)
	matches := []AnalysisMatch{}
	for _, a := range all {
		for _, field := range []string{a.Title, a.Dump, a.Result} {
			if strings.Contains(strings.ToLower(field), queryLower) {
				matches = append(matches, AnalysisMatch{
					AnalysisMetadata: metadataOf(a),
					Preview:          preview(field, 100),
				})
				break
			}
		}
	}
	return matches, nil
}

func (h *HistoryStorage) loadAll() ([]*Analysis, error) {
	entries, err := os.ReadDir(h.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read history directory: %w", err)
	}

	var all []*Analysis
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		a, err := h.Load(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}
		all = append(all, a)
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return all, nil
}

func metadataOf(a *Analysis) AnalysisMetadata {
	return AnalysisMetadata{
		ID:        a.ID,
		Title:     a.Title,
		Provider:  a.Provider,
		Model:     a.Model,
		CreatedAt: a.CreatedAt,
		Success:   a.Success,
	}
}

func preview(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) > max {
		return string(r[:max]) + "..."
	}
	return s
}
