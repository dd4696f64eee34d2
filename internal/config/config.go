// ABOUTME: Client configuration with backend selection and store factory.
// ABOUTME: JSON config file under XDG config, memory or firestore backends.

package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/repset/repset/internal/docstore"
	"github.com/repset/repset/internal/docstore/firestoredb"
	"github.com/repset/repset/internal/docstore/memory"
	"github.com/repset/repset/internal/docstore/offline"
)

// Config stores repset client configuration.
type Config struct {
	// Backend selects the document store: "memory" (default) or "firestore".
	Backend string `json:"backend,omitempty"`

	// ProjectID is the Firestore project, required for the firestore backend.
	ProjectID string `json:"project_id,omitempty"`

	// CredentialsFile points at a service-account key file. Empty means
	// application-default credentials.
	CredentialsFile string `json:"credentials_file,omitempty"`

	// UserID is the signed-in user whose sub-collections the CLI operates on.
	UserID string `json:"user_id,omitempty"`

	// OfflineDir is where queued offline writes live. Supports ~ expansion.
	// Defaults to the standard XDG data directory.
	OfflineDir string `json:"offline_dir,omitempty"`
}

// GetBackend returns the configured backend, defaulting to "memory".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return "memory"
	}
	return c.Backend
}

// GetOfflineDir returns the offline queue directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetOfflineDir() string {
	if c.OfflineDir == "" {
		return filepath.Join(DataDir(), "offline")
	}
	return ExpandPath(c.OfflineDir)
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStore creates the document store for the configured backend.
func (c *Config) OpenStore(ctx context.Context) (docstore.Store, error) {
	switch c.GetBackend() {
	case "memory":
		return memory.New(), nil
	case "firestore":
		if c.ProjectID == "" {
			return nil, fmt.Errorf("firestore backend requires project_id")
		}
		return firestoredb.Open(ctx, c.ProjectID, ExpandPath(c.CredentialsFile))
	default:
		return nil, fmt.Errorf("unknown backend: %q", c.Backend)
	}
}

// OpenOfflineQueue opens the on-disk queue of pending offline writes.
func (c *Config) OpenOfflineQueue() (*offline.Queue, error) {
	return offline.Open(c.GetOfflineDir())
}

// DataDir returns the standard XDG data directory for repset.
func DataDir() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, _ := os.UserHomeDir()
		dataDir = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(dataDir, "repset")
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "repset", "config.json")
}

// Load reads config from disk.
func Load() (*Config, error) {
	path := GetConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
