package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		BaseDir:    "/home/user/.local/share/craftbench",
		LogDir:     "/home/user/.local/share/craftbench/log",
		ScratchDir: "/tmp/craftbench-proposed",
		Models:     ModelsConfig{UseLargeModel: true},
		OpenAI:     OpenAIConfig{BaseURL: "http://localhost:8080/v1"},
		Pending:    PendingConfig{Type: "sqlite"},
		Database:   DatabaseConfig{Type: "sqlite", DataDir: "/home/user/.local/share/craftbench/data"},
		Encryption: EncryptionConfig{
			Type:         "age",
			IdentityPath: "/home/user/.local/share/craftbench/keys/token.key",
			TokenPath:    "/home/user/.local/share/craftbench/keys/openai_token.age",
		},
		Surface: SurfaceConfig{Type: "nvim", NvimAddress: "/tmp/nvim.sock"},
		Resources: ResourcesConfig{
			Ignore: []string{"*.min.js", "vendor"},
			S3:     S3Config{Enabled: true, Region: "eu-west-1", UsePathStyle: true},
		},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.BaseDir != original.BaseDir {
		t.Errorf("BaseDir = %q, want %q", got.BaseDir, original.BaseDir)
	}
	if got.ScratchDir != original.ScratchDir {
		t.Errorf("ScratchDir = %q, want %q", got.ScratchDir, original.ScratchDir)
	}
	if !got.Models.UseLargeModel {
		t.Error("Models.UseLargeModel = false, want true")
	}
	if got.OpenAI.BaseURL != original.OpenAI.BaseURL {
		t.Errorf("OpenAI.BaseURL = %q, want %q", got.OpenAI.BaseURL, original.OpenAI.BaseURL)
	}
	if got.Pending.Type != "sqlite" {
		t.Errorf("Pending.Type = %q, want %q", got.Pending.Type, "sqlite")
	}
	if got.Encryption.TokenPath != original.Encryption.TokenPath {
		t.Errorf("Encryption.TokenPath = %q, want %q", got.Encryption.TokenPath, original.Encryption.TokenPath)
	}
	if got.Surface.NvimAddress != "/tmp/nvim.sock" {
		t.Errorf("Surface.NvimAddress = %q, want %q", got.Surface.NvimAddress, "/tmp/nvim.sock")
	}
	if len(got.Resources.Ignore) != 2 {
		t.Fatalf("len(Resources.Ignore) = %d, want 2", len(got.Resources.Ignore))
	}
	if !got.Resources.S3.Enabled || got.Resources.S3.Region != "eu-west-1" {
		t.Errorf("Resources.S3 = %+v, want enabled in eu-west-1", got.Resources.S3)
	}
}

func TestManager_Read_MissingSectionsAreZero(t *testing.T) {
	m := &Manager{}
	got, err := m.Read(strings.NewReader(`base_dir = "/data"`))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got.Models.UseLargeModel || got.Models.DisableLargerRetry {
		t.Errorf("Models = %+v, want zero value", got.Models)
	}
	if got.Pending.Type != "" {
		t.Errorf("Pending.Type = %q, want empty", got.Pending.Type)
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/data/craftbench")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"BaseDir", cfg.BaseDir, "/data/craftbench"},
		{"LogDir", cfg.LogDir, "/data/craftbench/log"},
		{"ScratchDir", cfg.ScratchDir, filepath.Join(os.TempDir(), "craftbench-proposed")},
		{"Pending.Type", cfg.Pending.Type, "memory"},
		{"Database.DataDir", cfg.Database.DataDir, "/data/craftbench/data"},
		{"Encryption.IdentityPath", cfg.Encryption.IdentityPath, "/data/craftbench/keys/token.key"},
		{"Encryption.TokenPath", cfg.Encryption.TokenPath, "/data/craftbench/keys/openai_token.age"},
		{"Surface.Type", cfg.Surface.Type, "terminal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "craftbench.toml")

		if err := Init(path, NewConfig(dir)); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "craftbench.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		if err := Init(path, cfg); err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "craftbench.toml")
		cfg := NewConfig(dir)
		cfg.Database = DatabaseConfig{Type: "memory"}

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.Database.Type != "memory" {
			t.Errorf("Database.Type = %q, want %q", got.Database.Type, "memory")
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		_, err := ReadFromFile("/nonexistent/path/craftbench.toml")
		if err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}

func TestReadOrDefault(t *testing.T) {
	dir := t.TempDir()

	cfg, err := ReadOrDefault(filepath.Join(dir, "missing.toml"), dir)
	if err != nil {
		t.Fatalf("ReadOrDefault() error = %v", err)
	}
	if cfg.BaseDir != dir {
		t.Errorf("BaseDir = %q, want %q", cfg.BaseDir, dir)
	}
}

func TestReadOrDefault_FillsMissingKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "craftbench.toml")
	body := "[pending]\ntype = \"sqlite\"\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := ReadOrDefault(path, dir)
	if err != nil {
		t.Fatalf("ReadOrDefault() error = %v", err)
	}
	defaults := NewConfig(dir)

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"Pending.Type", cfg.Pending.Type, "sqlite"},
		{"ScratchDir", cfg.ScratchDir, defaults.ScratchDir},
		{"LogDir", cfg.LogDir, defaults.LogDir},
		{"Surface.Type", cfg.Surface.Type, "terminal"},
		{"Encryption.TokenPath", cfg.Encryption.TokenPath, defaults.Encryption.TokenPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
			}
		})
	}
}
