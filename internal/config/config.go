package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Registry   RegistryConfig   `yaml:"registry" mapstructure:"registry"`
	Cache      CacheConfig      `yaml:"cache" mapstructure:"cache"`
	OSM        OSMConfig        `yaml:"osm" mapstructure:"osm"`
	Wikidata   WikidataConfig   `yaml:"wikidata" mapstructure:"wikidata"`
	Wikimedia  WikimediaConfig  `yaml:"wikimedia" mapstructure:"wikimedia"`
	Wikipedia  WikipediaConfig  `yaml:"wikipedia" mapstructure:"wikipedia"`
	Streetview StreetviewConfig `yaml:"streetview" mapstructure:"streetview"`
}

// ServerConfig configures the query API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// RegistryConfig points to optional overrides of the embedded registries.
type RegistryConfig struct {
	LocationsPath  string `yaml:"locations_path" mapstructure:"locations_path"`
	PropertiesPath string `yaml:"properties_path" mapstructure:"properties_path"`
}

// CacheConfig controls how long a generated collection is served before the
// API regenerates it.
type CacheConfig struct {
	TTLMinutes int `yaml:"ttl_minutes" mapstructure:"ttl_minutes"`
}

// OSMConfig holds Overpass API settings.
type OSMConfig struct {
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// WikidataConfig holds Wikidata SPARQL/entity API settings.
type WikidataConfig struct {
	SparqlURL   string  `yaml:"sparql_url" mapstructure:"sparql_url"`
	APIURL      string  `yaml:"api_url" mapstructure:"api_url"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// WikimediaConfig holds Wikimedia Commons API settings.
type WikimediaConfig struct {
	APIURL      string  `yaml:"api_url" mapstructure:"api_url"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxImages   int     `yaml:"max_images" mapstructure:"max_images"`
}

// WikipediaConfig holds Wikipedia REST API settings.
type WikipediaConfig struct {
	TimeoutSecs int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// StreetviewConfig holds street-level imagery placeholder settings.
type StreetviewConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Key     string `yaml:"key" mapstructure:"key"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DATABLUE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 3000)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("cache.ttl_minutes", 120)
	v.SetDefault("osm.base_url", "https://overpass-api.de/api/interpreter")
	v.SetDefault("osm.rate_per_sec", 1.0)
	v.SetDefault("osm.timeout_secs", 120)
	v.SetDefault("wikidata.sparql_url", "https://query.wikidata.org/sparql")
	v.SetDefault("wikidata.api_url", "https://www.wikidata.org/w/api.php")
	v.SetDefault("wikidata.rate_per_sec", 4.0)
	v.SetDefault("wikidata.timeout_secs", 60)
	v.SetDefault("wikimedia.api_url", "https://commons.wikimedia.org/w/api.php")
	v.SetDefault("wikimedia.rate_per_sec", 4.0)
	v.SetDefault("wikimedia.timeout_secs", 60)
	v.SetDefault("wikimedia.max_images", 50)
	v.SetDefault("wikipedia.timeout_secs", 30)
	v.SetDefault("streetview.base_url", "https://maps.googleapis.com/maps/api/streetview")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
