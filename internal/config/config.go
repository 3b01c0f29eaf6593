package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for gallery.
type Config struct {
	BaseDir  string         `toml:"base_dir"`
	LogDir   string         `toml:"log_dir"`
	Storage  StorageConfig  `toml:"storage"`
	Manifest ManifestConfig `toml:"manifest"`
	Database DatabaseConfig `toml:"database"`
	Retry    RetryConfig    `toml:"retry"`
}

// StorageConfig represents configuration for the photo storage backend.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type StorageConfig struct {
	Type            string   `toml:"type"`                       // "s3", "filesystem" or "memory"
	Prefix          string   `toml:"prefix,omitempty"`           // only keys under this prefix are listed
	PublicBaseURL   string   `toml:"public_base_url,omitempty"`  // prepended to keys to form originalUrl
	ThumbnailPrefix string   `toml:"thumbnail_prefix,omitempty"` // URL path thumbnails are served from
	Exclude         []string `toml:"exclude,omitempty"`          // glob patterns for keys to leave out
	ExcludeFile     string   `toml:"exclude_file,omitempty"`     // file with one exclude pattern per line

	// S3-specific fields (only used when Type == "s3")
	S3Bucket          string `toml:"s3_bucket,omitempty"`
	S3Region          string `toml:"s3_region,omitempty"`
	S3Endpoint        string `toml:"s3_endpoint,omitempty"`         // custom endpoint for S3-compatible services
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`    // static credentials; default chain when empty
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`
	S3ForcePathStyle  bool   `toml:"s3_force_path_style,omitempty"`

	// FileSystem-specific fields (only used when Type == "filesystem")
	FSRoot string `toml:"fs_root,omitempty"`
}

// ManifestConfig represents where the manifest is persisted.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type ManifestConfig struct {
	Type  string `toml:"type"`             // "filesystem", "s3" or "memory"
	Path  string `toml:"path,omitempty"`   // only used for type=filesystem
	S3Key string `toml:"s3_key,omitempty"` // only used for type=s3; stored in the storage bucket
}

// DatabaseConfig represents configuration for the build history database.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// RetryConfig controls backoff for network calls. Zero values use defaults.
type RetryConfig struct {
	MaxAttempts int `toml:"max_attempts"`
	BaseDelayMs int `toml:"base_delay_ms"`
	MaxDelayMs  int `toml:"max_delay_ms"`
}

// NewConfig creates a new Config rooted at baseDir with local defaults.
func NewConfig(baseDir string) *Config {
	return &Config{
		BaseDir: baseDir,
		LogDir:  filepath.Join(baseDir, "log"),
		Storage: StorageConfig{
			Type:            "filesystem",
			FSRoot:          filepath.Join(baseDir, "photos"),
			ThumbnailPrefix: "/thumbnails",
		},
		Manifest: ManifestConfig{
			Type: "filesystem",
			Path: filepath.Join(baseDir, "photos-manifest.json"),
		},
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "db"),
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			BaseDelayMs: 300,
			MaxDelayMs:  4000,
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader. Keys that match no field
// are rejected so typos in the file do not silently fall back to defaults.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
