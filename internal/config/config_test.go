package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 120, cfg.Cache.TTLMinutes)
	assert.Equal(t, "https://overpass-api.de/api/interpreter", cfg.OSM.BaseURL)
	assert.Equal(t, "https://query.wikidata.org/sparql", cfg.Wikidata.SparqlURL)
	assert.Equal(t, "https://commons.wikimedia.org/w/api.php", cfg.Wikimedia.APIURL)
	assert.Equal(t, 50, cfg.Wikimedia.MaxImages)
	assert.Empty(t, cfg.Registry.LocationsPath)
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	t.Setenv("DATABLUE_SERVER_PORT", "8080")
	t.Setenv("DATABLUE_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	require.Error(t, InitLogger(LogConfig{Level: "verbose"}))
}
