package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Settings represents the application configuration persisted to disk.
type Settings struct {
	Server   ServerSettings   `json:"server"`
	Database DatabaseSettings `json:"database"`
	Session  SessionSettings  `json:"session"`
	Metadata MetadataSettings `json:"metadata"`
	CORS     CORSSettings     `json:"cors"`
	Log      LogSettings      `json:"log"`
}

type ServerSettings struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type DatabaseSettings struct {
	Path string `json:"path"`
}

type SessionSettings struct {
	CookieName string `json:"cookieName"`
	TTLHours   int    `json:"ttlHours"`
	// Secure marks the session cookie Secure; leave off for plain-HTTP
	// local development.
	Secure bool `json:"secure"`
}

type MetadataSettings struct {
	TMDBAPIKey string `json:"tmdbApiKey"`
	Language   string `json:"language"`
}

type CORSSettings struct {
	// Origin is the SPA origin allowed to send credentialed requests.
	Origin string `json:"origin"`
}

type LogSettings struct {
	File       string `json:"file"`
	MaxSize    int    `json:"maxSizeMb"`
	MaxBackups int    `json:"maxBackups"`
	MaxAge     int    `json:"maxAgeDays"`
	Compress   bool   `json:"compress"`
}

// DefaultSettings returns the configuration written on first start.
func DefaultSettings() Settings {
	return Settings{
		Server:   ServerSettings{Host: "0.0.0.0", Port: 8080},
		Database: DatabaseSettings{Path: "data/reelist.db"},
		Session:  SessionSettings{CookieName: "reelist_session", TTLHours: 30 * 24},
		Metadata: MetadataSettings{TMDBAPIKey: "", Language: "en-US"},
		CORS:     CORSSettings{Origin: "http://localhost:3000"},
		Log:      LogSettings{File: "", MaxSize: 20, MaxBackups: 3, MaxAge: 28, Compress: true},
	}
}

// Manager loads and persists settings to a JSON file.
type Manager struct {
	path string
}

func NewManager(configPath string) *Manager {
	return &Manager{path: configPath}
}

// EnsureDir ensures the parent directory exists.
func (m *Manager) EnsureDir() error {
	dir := filepath.Dir(m.path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Load reads settings from disk or creates defaults if missing.
func (m *Manager) Load() (Settings, error) {
	if m.path == "" {
		return Settings{}, errors.New("config path not set")
	}
	if _, err := os.Stat(m.path); errors.Is(err, fs.ErrNotExist) {
		defaults := DefaultSettings()
		if err := m.Save(defaults); err != nil {
			return Settings{}, err
		}
		return defaults, nil
	}

	f, err := os.Open(m.path)
	if err != nil {
		return Settings{}, err
	}
	defer f.Close()

	s := DefaultSettings()
	if err := json.NewDecoder(f).Decode(&s); err != nil {
		return Settings{}, err
	}

	if s.Session.CookieName == "" {
		s.Session.CookieName = "reelist_session"
	}
	if s.Session.TTLHours <= 0 {
		s.Session.TTLHours = 30 * 24
	}

	return s, nil
}

// Save writes the provided settings to disk atomically.
func (m *Manager) Save(s Settings) error {
	if m.path == "" {
		return errors.New("config path not set")
	}
	if err := m.EnsureDir(); err != nil {
		return err
	}
	tmp := m.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, m.path)
}
