package config

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/BurntSushi/toml"
)

// Preference keys. The legacy Google AI keys predate multi-provider support
// and are still honored as fallbacks.
const (
	PrefProvider          = "llmProvider"
	PrefAPIKey            = "llmApiKey"
	PrefModel             = "llmModel"
	PrefBaseURL           = "llmBaseUrl"
	PrefTemperature       = "llmTemperature"
	PrefMaxTokens         = "llmMaxTokens"
	PrefLegacyGoogleKey   = "googleAiApiKey"
	PrefLegacyGoogleModel = "googleAiModel"
	PrefPromptTemplate    = "dumpAnalyzerPrompt"
	PrefAppendDump        = "appendDumpContent"
)

// KnownPreferenceKeys lists every key the application reads.
func KnownPreferenceKeys() []string {
	return []string{
		PrefProvider,
		PrefAPIKey,
		PrefModel,
		PrefBaseURL,
		PrefTemperature,
		PrefMaxTokens,
		PrefLegacyGoogleKey,
		PrefLegacyGoogleModel,
		PrefPromptTemplate,
		PrefAppendDump,
	}
}

// IsKnownPreferenceKey reports whether key is read by the application.
func IsKnownPreferenceKey(key string) bool {
	for _, k := range KnownPreferenceKeys() {
		if k == key {
			return true
		}
	}
	return false
}

// Preferences is a string key/value store. Get reports found=false for
// absent keys; an error means the store itself could not be read.
type Preferences interface {
	Get(key string) (value string, found bool, err error)
	Set(key, value string) error
	Delete(key string) error
	All() (map[string]string, error)
}

type preferencesFile struct {
	Preferences map[string]string `toml:"preferences"`
}

// FilePreferences stores preferences in a TOML file with a [preferences]
// table. The file is re-read on every Get so edits made by other processes
// are picked up.
type FilePreferences struct {
	path string
	mu   sync.Mutex
}

func NewFilePreferences(path string) *FilePreferences {
	return &FilePreferences{path: path}
}

func (p *FilePreferences) Path() string {
	return p.path
}

func (p *FilePreferences) load() (map[string]string, error) {
	if !FileExists(p.path) {
		return make(map[string]string), nil
	}

	var pf preferencesFile
	if _, err := toml.DecodeFile(p.path, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse preferences file: %w", err)
	}
	if pf.Preferences == nil {
		pf.Preferences = make(map[string]string)
	}
	return pf.Preferences, nil
}

func (p *FilePreferences) save(prefs map[string]string) error {
	f, err := os.OpenFile(p.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create preferences file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(preferencesFile{Preferences: prefs}); err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	return nil
}

func (p *FilePreferences) Get(key string) (string, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	prefs, err := p.load()
	if err != nil {
		return "", false, err
	}
	v, ok := prefs[key]
	return v, ok, nil
}

func (p *FilePreferences) Set(key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	prefs, err := p.load()
	if err != nil {
		return err
	}
	prefs[key] = value
	return p.save(prefs)
}

func (p *FilePreferences) Delete(key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	prefs, err := p.load()
	if err != nil {
		return err
	}
	if _, ok := prefs[key]; !ok {
		return nil
	}
	delete(prefs, key)
	return p.save(prefs)
}

func (p *FilePreferences) All() (map[string]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.load()
}

// SortedKeys returns the keys of prefs in lexical order.
func SortedKeys(prefs map[string]string) []string {
	keys := make([]string, 0, len(prefs))
	for k := range prefs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MapPreferences is an in-memory Preferences, used for tests and one-shot
// overrides.
type MapPreferences struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMapPreferences(values map[string]string) *MapPreferences {
	m := &MapPreferences{values: make(map[string]string, len(values))}
	for k, v := range values {
		m.values[k] = v
	}
	return m
}

func (m *MapPreferences) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MapPreferences) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MapPreferences) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *MapPreferences) All() (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out, nil
}
