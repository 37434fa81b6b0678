package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for craftbench.
type Config struct {
	BaseDir    string           `toml:"base_dir"`
	LogDir     string           `toml:"log_dir"`
	ScratchDir string           `toml:"scratch_dir"` // drafts are written here, one file per pending edit
	Models     ModelsConfig     `toml:"models"`
	OpenAI     OpenAIConfig     `toml:"openai"`
	Pending    PendingConfig    `toml:"pending"`
	Database   DatabaseConfig   `toml:"database"`
	Encryption EncryptionConfig `toml:"encryption"`
	Surface    SurfaceConfig    `toml:"surface"`
	Resources  ResourcesConfig  `toml:"resources"`
}

// ModelsConfig selects the models used for proposals and retries.
// Both fields are false when absent, which selects the base model and allows
// a retry with the large model.
type ModelsConfig struct {
	UseLargeModel      bool `toml:"use_large_model"`
	DisableLargerRetry bool `toml:"disable_larger_retry"`
}

// OpenAIConfig holds settings for the chat completion endpoint.
type OpenAIConfig struct {
	BaseURL  string `toml:"base_url,omitempty"`  // empty means the public API
	TokenEnv string `toml:"token_env,omitempty"` // environment variable consulted before the sealed token; defaults to OPENAI_API_KEY
}

// PendingConfig represents configuration for the pending-edit store.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type PendingConfig struct {
	Type string `toml:"type"` // "memory" (default) or "sqlite"
}

// DatabaseConfig represents configuration for the journal database.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// EncryptionConfig holds the paths used to seal the stored API token.
type EncryptionConfig struct {
	Type         string `toml:"type"` // "age" (default) or "test"
	IdentityPath string `toml:"identity_path"`
	TokenPath    string `toml:"token_path"`
}

// SurfaceConfig selects where diffs and resources are shown.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type SurfaceConfig struct {
	Type        string `toml:"type"`                   // "terminal" (default) or "nvim"
	NvimAddress string `toml:"nvim_address,omitempty"` // only used for type=nvim; defaults to $NVIM_LISTEN_ADDRESS
	Context     int    `toml:"context,omitempty"`      // unchanged lines kept around each change; only used for type=terminal
}

// ResourcesConfig holds settings for the resource store.
type ResourcesConfig struct {
	Ignore []string `toml:"ignore"`
	S3     S3Config `toml:"s3"`
}

// S3Config enables s3://bucket/key resources.
type S3Config struct {
	Enabled         bool   `toml:"enabled"`
	Region          string `toml:"region,omitempty"`
	Endpoint        string `toml:"endpoint,omitempty"`
	AccessKeyID     string `toml:"access_key_id,omitempty"`
	SecretAccessKey string `toml:"secret_access_key,omitempty"`
	UsePathStyle    bool   `toml:"use_path_style,omitempty"`
}

// NewConfig creates a new Config rooted at baseDir with default paths.
func NewConfig(baseDir string) *Config {
	return &Config{
		BaseDir:    baseDir,
		LogDir:     filepath.Join(baseDir, "log"),
		ScratchDir: filepath.Join(os.TempDir(), "craftbench-proposed"),
		Pending:    PendingConfig{Type: "memory"},
		Database:   DatabaseConfig{Type: "sqlite", DataDir: filepath.Join(baseDir, "data")},
		Encryption: EncryptionConfig{
			Type:         "age",
			IdentityPath: filepath.Join(baseDir, "keys", "token.key"),
			TokenPath:    filepath.Join(baseDir, "keys", "openai_token.age"),
		},
		Surface: SurfaceConfig{Type: "terminal", Context: 3},
		Resources: ResourcesConfig{
			Ignore: []string{"*.min.js", "node_modules"},
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	return m.ReadOnto(r, &Config{})
}

// ReadOnto decodes r over base. Keys missing from r keep base's values.
func (m *Manager) ReadOnto(r io.Reader, base *Config) (*Config, error) {
	if _, err := toml.NewDecoder(r).Decode(base); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return base, nil
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

// ReadOrDefault reads the Config at path on top of NewConfig(baseDir), so
// settings the file omits keep their defaults. A missing file yields the
// defaults unchanged.
func ReadOrDefault(path, baseDir string) (*Config, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return NewConfig(baseDir), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.ReadOnto(f, NewConfig(baseDir))
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
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

// Init writes cfg to a new config file at path. It refuses to overwrite an
// existing file.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
