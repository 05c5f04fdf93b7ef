package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const (
	DefaultQueryTimeout        = "2m"
	DefaultMaxFetchConcurrency = 16
	DefaultFetchWaitTime       = "5s"
	DefaultTrackerTimeout      = "30s"
	DefaultTrackerURL          = "http://localhost:8888"
	DefaultInfluxDBAddr        = "http://localhost:8086"
	DefaultInfluxDBDatabase    = "heron"

	envPrefix = "TRACKERQL"
)

// Config configures the query engine and the backends it reads from
type Config struct {
	// Timeout bounds a single query execution
	Timeout time.Duration `envconfig:"TIMEOUT" default:"2m"`
	// Verbose indicates whether to output more logs or not
	Verbose bool `envconfig:"VERBOSE"`
	// MaxFetchConcurrency caps in-flight backend calls across queries. Zero means no cap.
	MaxFetchConcurrency int `envconfig:"MAX_FETCH_CONCURRENCY" default:"16"`
	// FetchWaitTime is how long a fetch may wait for a free slot
	FetchWaitTime time.Duration `envconfig:"FETCH_WAIT_TIME" default:"5s"`

	TrackerURL     string        `envconfig:"TRACKER_URL" default:"http://localhost:8888"`
	TrackerTimeout time.Duration `envconfig:"TRACKER_TIMEOUT" default:"30s"`

	// InfluxDB* locate an InfluxDB 1.x store holding the same metrics, one measurement per metric
	InfluxDBAddr     string `envconfig:"INFLUXDB_ADDR" default:"http://localhost:8086"`
	InfluxDBDatabase string `envconfig:"INFLUXDB_DATABASE" default:"heron"`
	// InfluxDBValueFieldKey is the field holding sample values. Empty means ```value```.
	InfluxDBValueFieldKey string `envconfig:"INFLUXDB_VALUE_FIELD_KEY"`
}

func NewConfig() Config {
	timeout, _ := time.ParseDuration(DefaultQueryTimeout)
	waitTime, _ := time.ParseDuration(DefaultFetchWaitTime)
	trackerTimeout, _ := time.ParseDuration(DefaultTrackerTimeout)
	cfg := Config{
		Timeout:             timeout,
		MaxFetchConcurrency: DefaultMaxFetchConcurrency,
		FetchWaitTime:       waitTime,
		TrackerURL:          DefaultTrackerURL,
		TrackerTimeout:      trackerTimeout,
		InfluxDBAddr:        DefaultInfluxDBAddr,
		InfluxDBDatabase:    DefaultInfluxDBDatabase,
	}
	return cfg
}

// LoadFromEnv reads TRACKERQL_* environment variables on top of the defaults
func LoadFromEnv() (Config, error) {
	cfg := NewConfig()
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "load config from env")
	}
	return cfg, nil
}
