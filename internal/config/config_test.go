package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "expansion.db", cfg.Store.SQLitePath)
	assert.Equal(t, 15, cfg.Portal.TimeoutSecs)
	assert.InDelta(t, 5.0, cfg.Portal.RatePerSec, 0.001)
	assert.Equal(t, 2, cfg.Portal.MaxRetries)
	assert.InDelta(t, 2.0, cfg.Sync.CellKM, 0.001)
	assert.Equal(t, 4, cfg.Sync.SiteProfileWorkers)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: sqlite
  sqlite_path: /tmp/test.db
portal:
  base_url: https://portal.example.com
sync:
  region: west-java
  min_lat: -7.5
  max_lat: -6.0
  min_lng: 106.5
  max_lng: 108.0
log:
  level: debug
  format: console
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "/tmp/test.db", cfg.Store.SQLitePath)
	assert.Equal(t, "https://portal.example.com", cfg.Portal.BaseURL)
	assert.Equal(t, "west-java", cfg.Sync.Region)
	assert.InDelta(t, -7.5, cfg.Sync.MinLat, 0.001)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		section string
		wantErr string
	}{
		{
			name:    "postgres store without url",
			cfg:     Config{Store: StoreConfig{Driver: "postgres"}},
			section: "store",
			wantErr: "database_url",
		},
		{
			name:    "postgres store with url",
			cfg:     Config{Store: StoreConfig{Driver: "postgres", DatabaseURL: "postgres://localhost/x"}},
			section: "store",
		},
		{
			name:    "sqlite store with path",
			cfg:     Config{Store: StoreConfig{Driver: "sqlite", SQLitePath: "x.db"}},
			section: "store",
		},
		{
			name:    "unknown driver",
			cfg:     Config{Store: StoreConfig{Driver: "oracle"}},
			section: "store",
			wantErr: "unknown store driver",
		},
		{
			name:    "portal without base url",
			cfg:     Config{},
			section: "portal",
			wantErr: "base_url",
		},
		{
			name: "sync requires region",
			cfg: Config{
				Store:  StoreConfig{Driver: "sqlite", SQLitePath: "x.db"},
				Portal: PortalConfig{BaseURL: "https://portal.example.com"},
			},
			section: "sync",
			wantErr: "region",
		},
		{
			name: "sync fully configured",
			cfg: Config{
				Store:  StoreConfig{Driver: "sqlite", SQLitePath: "x.db"},
				Portal: PortalConfig{BaseURL: "https://portal.example.com"},
				Sync:   SyncConfig{Region: "west-java"},
			},
			section: "sync",
		},
		{
			name:    "unknown section",
			cfg:     Config{},
			section: "bogus",
			wantErr: "unknown validation section",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate(tt.section)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	err := InitLogger(LogConfig{Level: "not-a-level", Format: "json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse log level")
}
