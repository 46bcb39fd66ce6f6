package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("GUILD_ID", "g1")
}

func TestParseDefaults(t *testing.T) {
	setRequired(t)
	for _, k := range []string{"APPLICATION_ID", "STORAGE_PATH", "PLUGIN_MANIFEST", "LOG_LEVEL", "LOG_FILE", "MAX_CONCURRENT_HANDLERS", "QR_SERVICE_URL"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.StoragePath != "datastore.json" || cfg.LogLevel != "info" || cfg.MaxConcurrentHandlers != 64 {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.QRServiceURL != "https://api.qrserver.com/v1/create-qr-code/" {
		t.Errorf("QRServiceURL = %q", cfg.QRServiceURL)
	}
	if cfg.ApplicationID != "" {
		t.Errorf("ApplicationID = %q", cfg.ApplicationID)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing token", map[string]string{"DISCORD_TOKEN": "", "GUILD_ID": "g1"}, "DISCORD_TOKEN"},
		{"missing guild", map[string]string{"DISCORD_TOKEN": "t", "GUILD_ID": ""}, "GUILD_ID"},
		{"bad pool size", map[string]string{"DISCORD_TOKEN": "t", "GUILD_ID": "g1", "MAX_CONCURRENT_HANDLERS": "lots"}, "parse env:"},
		{"zero pool size", map[string]string{"DISCORD_TOKEN": "t", "GUILD_ID": "g1", "MAX_CONCURRENT_HANDLERS": "0"}, "MAX_CONCURRENT_HANDLERS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Parse()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %s", err, tt.want)
			}
		})
	}
}

func TestLoadDotenv(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")
	t.Setenv("GUILD_ID", "")
	os.Unsetenv("DISCORD_TOKEN")
	os.Unsetenv("GUILD_ID")
	t.Setenv("LOG_LEVEL", "debug")

	path := filepath.Join(t.TempDir(), ".env")
	data := "DISCORD_TOKEN=from-file\nGUILD_ID=g9\nLOG_LEVEL=trace\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Unsetenv("DISCORD_TOKEN")
		os.Unsetenv("GUILD_ID")
	})

	cfg, loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !loaded {
		t.Error("dotenv file not reported as loaded")
	}
	if cfg.DiscordToken != "from-file" || cfg.GuildID != "g9" {
		t.Errorf("cfg = %+v", cfg)
	}
	// Variables already set win over the file.
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestLoadMissingDotenv(t *testing.T) {
	setRequired(t)
	_, loaded, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded {
		t.Error("absent file reported as loaded")
	}
}
