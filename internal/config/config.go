package config

import "time"

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Cache      CacheConfig      `yaml:"cache"`
	Chart      ChartConfig      `yaml:"chart"`
	Generation GenerationConfig `yaml:"generation"`
}

type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
}

type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Name            string        `yaml:"name"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

func (d DatabaseConfig) DSN() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + itoa(d.Port) + "/" + d.Name + "?sslmode=disable"
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	s := ""
	for i > 0 {
		s = string(rune('0'+i%10)) + s
		i /= 10
	}
	return s
}

type RedisConfig struct {
	Addresses []string `yaml:"addresses"`
	Password  string   `yaml:"password"`
	DB        int      `yaml:"db"`
	PoolSize  int      `yaml:"pool_size"`
}

type TelemetryConfig struct {
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	MetricsPort int    `yaml:"metrics_port"`
}

type CacheConfig struct {
	// Backend selects the report cache store: "memory" (single node)
	// or "redis" (shared across processes).
	Backend       string        `yaml:"backend"`
	ReportTTL     time.Duration `yaml:"report_ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
	UpstreamTTL   time.Duration `yaml:"upstream_ttl"`
}

type ChartConfig struct {
	BaseURL          string        `yaml:"base_url"`
	APIKey           string        `yaml:"api_key"`
	Timeout          time.Duration `yaml:"timeout"`
	SlowThreshold    time.Duration `yaml:"slow_threshold"`
	FailureThreshold int           `yaml:"failure_threshold"`
	RecoveryProbe    time.Duration `yaml:"recovery_probe_interval"`
}

type GenerationConfig struct {
	// RequestTimeout is the hard per-completion-call deadline, distinct
	// from the completion client's own attempt ceiling.
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8080,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     180 * time.Second,
			IdleTimeout:      120 * time.Second,
			GracefulShutdown: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			Name:            "reportgen",
			User:            "reportgen",
			MaxOpenConns:    25,
			MaxIdleConns:    10,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			Addresses: []string{"localhost:6379"},
			DB:        0,
			PoolSize:  50,
		},
		Telemetry: TelemetryConfig{
			LogLevel:    "info",
			LogFormat:   "json",
			MetricsPort: 9090,
		},
		Cache: CacheConfig{
			Backend:       "memory",
			ReportTTL:     24 * time.Hour,
			SweepInterval: time.Hour,
			UpstreamTTL:   7 * 24 * time.Hour,
		},
		Chart: ChartConfig{
			BaseURL:          "https://api.prokerala.com",
			Timeout:          15 * time.Second,
			SlowThreshold:    8 * time.Second,
			FailureThreshold: 5,
			RecoveryProbe:    30 * time.Second,
		},
		Generation: GenerationConfig{
			RequestTimeout: 150 * time.Second,
		},
	}
}
