package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type KafkaCfg struct {
	Brokers             []string `env:"KAFKA_BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	VisitEventsEnabled  bool     `env:"VISIT_EVENTS_ENABLED" envDefault:"false"`
	VisitTopic          string   `env:"VISIT_TOPIC" envDefault:"facility-visits"`
	VisitQueue          int      `env:"VISIT_QUEUE" envDefault:"1024"`
	InvalidationEnabled bool     `env:"INVALIDATION_ENABLED" envDefault:"false"`
	InvalidationTopic   string   `env:"INVALIDATION_TOPIC" envDefault:"facility-changes"`
	GroupID             string   `env:"KAFKA_GROUP_ID" envDefault:"tonari-gateway"`
}

type MetricsCfg struct {
	Enabled bool   `env:"METRICS_ENABLED" envDefault:"false"`
	Addr    string `env:"METRICS_ADDR" envDefault:":9090"`
	Path    string `env:"METRICS_PATH" envDefault:"/metrics"`
}

type Config struct {
	Addr       string `env:"ADDR" envDefault:":8090"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	LogConsole bool   `env:"LOG_CONSOLE" envDefault:"false"`
	LogSampleN int    `env:"LOG_SAMPLE_N" envDefault:"0"`

	AccessibilityCloudURL   string `env:"ACCESSIBILITY_CLOUD_URL" envDefault:"https://accessibility-cloud.freetls.fastly.net"`
	AccessibilityCloudToken string `env:"ACCESSIBILITY_CLOUD_TOKEN"`
	WheelmapURL             string `env:"WHEELMAP_URL" envDefault:"https://tonari.app/wheelmap/api"`
	WheelmapToken           string `env:"WHEELMAP_TOKEN"`
	BackendURL              string `env:"BACKEND_URL" envDefault:"http://localhost:8080/"`
	GeocoderURL             string `env:"GEOCODER_URL" envDefault:"https://open.mapquestapi.com/nominatim/v1/reverse.php"`
	MapquestToken           string `env:"MAPQUEST_TOKEN"`
	// Accept-Language list for reverse geocoded addresses
	GeocoderLanguages string `env:"GEOCODER_LANGUAGES" envDefault:"de"`

	// "{lat}_{lon}" used instead of the client's own position when set
	OverwriteSearchLocation string `env:"OVERWRITE_SEARCH_LOCATION"`

	UpstreamTimeout        time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"30s"`
	SessionTTL             time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	SessionMax             int           `env:"SESSION_MAX" envDefault:"10000"`
	SideCacheResetOnSearch bool          `env:"SIDE_CACHE_RESET_ON_SEARCH" envDefault:"false"`

	RedisEnabled   bool          `env:"REDIS_ENABLED" envDefault:"false"`
	RedisAddr      string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	SearchCacheTTL time.Duration `env:"SEARCH_CACHE_TTL" envDefault:"60s"`
	CacheOpTimeout time.Duration `env:"CACHE_OP_TIMEOUT" envDefault:"250ms"`
	// searches a cell needs (decayed) before its results are shared
	SearchCacheMinHotness float64       `env:"SEARCH_CACHE_MIN_HOTNESS" envDefault:"0"`
	SearchCacheHalfLife   time.Duration `env:"SEARCH_CACHE_HALF_LIFE" envDefault:"5m"`
	H3Res                 int           `env:"H3_RES" envDefault:"8"`

	Kafka   KafkaCfg
	Metrics MetricsCfg
}

// FromEnv reads the configuration from the environment and normalises it.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	c.BackendURL = WithTrailingSlash(c.BackendURL)
	c.AccessibilityCloudURL = strings.TrimRight(c.AccessibilityCloudURL, "/")
	c.WheelmapURL = strings.TrimRight(c.WheelmapURL, "/")
	c.OverwriteSearchLocation = strings.TrimSpace(c.OverwriteSearchLocation)

	if c.H3Res < 0 {
		c.H3Res = 0
	}
	if c.H3Res > 15 {
		c.H3Res = 15
	}
	if c.SessionMax <= 0 {
		c.SessionMax = 10000
	}
	brokers := c.Kafka.Brokers[:0]
	for _, b := range c.Kafka.Brokers {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	c.Kafka.Brokers = brokers
}

func WithTrailingSlash(u string) string {
	if u == "" || strings.HasSuffix(u, "/") {
		return u
	}
	return u + "/"
}
