package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ストレージドライバー名です。
const (
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

const (
	defaultShutdownTimeout = 10 * time.Second
	defaultLogLevel        = "info"
	defaultRedisKeyPrefix  = "company-sites:"
)

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Sharding ShardingConfig `yaml:"sharding"`
}

// ServerConfig は HTTP サーバーとヘルスチェック用 gRPC サーバーに関する設定です。
type ServerConfig struct {
	ListenAddr         string          `yaml:"listen_addr"`
	HealthListenAddr   string          `yaml:"health_listen_addr"`
	ReadTimeout        time.Duration   `yaml:"-"`
	WriteTimeout       time.Duration   `yaml:"-"`
	ShutdownTimeout    time.Duration   `yaml:"-"`
	ReadTimeoutRaw     string          `yaml:"read_timeout"`
	WriteTimeoutRaw    string          `yaml:"write_timeout"`
	ShutdownTimeoutRaw string          `yaml:"shutdown_timeout"`
	RateLimit          RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig はリクエストレート制限の設定です。RPS が 0 の場合は無効です。
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// LogConfig はロガーの設定です。
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// StorageConfig は永続化先の選択です。
type StorageConfig struct {
	Driver string `yaml:"driver"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。
type DatabaseConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	SSLMode            string        `yaml:"ssl_mode"`
	MaxOpenConns       int           `yaml:"max_open_conns"`
	MaxIdleConns       int           `yaml:"max_idle_conns"`
	ConnMaxLifetime    time.Duration `yaml:"-"`
	ConnMaxIdleTime    time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw string        `yaml:"conn_max_lifetime"`
	ConnMaxIdleTimeRaw string        `yaml:"conn_max_idle_time"`
}

// RedisConfig は Redis 接続に関する設定です。
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// ShardingConfig はサイト割り当てに関する設定です。
type ShardingConfig struct {
	Sites  []string `yaml:"sites"`
	Policy string   `yaml:"policy"`
	Seed   *uint64  `yaml:"seed"`
}

// Load は指定されたパスから設定ファイルを読み込みます。
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validateAndNormalize() error {
	if err := c.Server.validateAndNormalize(); err != nil {
		return err
	}

	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}

	if err := c.Sharding.validate(); err != nil {
		return err
	}

	switch c.Storage.Driver {
	case "", DriverPostgres:
		c.Storage.Driver = DriverPostgres
		return c.Database.validateAndNormalize()
	case DriverRedis:
		return c.Redis.validateAndNormalize()
	case DriverMemory:
		return nil
	default:
		return fmt.Errorf("config: storage.driver %q is not supported", c.Storage.Driver)
	}
}

func (s *ServerConfig) validateAndNormalize() error {
	if s.ListenAddr == "" {
		return fmt.Errorf("config: server.listen_addr must be set")
	}

	var err error
	if s.ReadTimeout, err = parseDurationAllowEmpty(s.ReadTimeoutRaw); err != nil {
		return fmt.Errorf("config: server.read_timeout: %w", err)
	}
	if s.WriteTimeout, err = parseDurationAllowEmpty(s.WriteTimeoutRaw); err != nil {
		return fmt.Errorf("config: server.write_timeout: %w", err)
	}
	if s.ShutdownTimeout, err = parseDurationAllowEmpty(s.ShutdownTimeoutRaw); err != nil {
		return fmt.Errorf("config: server.shutdown_timeout: %w", err)
	}
	if s.ShutdownTimeout == 0 {
		s.ShutdownTimeout = defaultShutdownTimeout
	}

	if s.RateLimit.RPS < 0 {
		return fmt.Errorf("config: server.rate_limit.rps must not be negative")
	}
	if s.RateLimit.RPS > 0 && s.RateLimit.Burst <= 0 {
		s.RateLimit.Burst = 1
	}

	return nil
}

func (s ShardingConfig) validate() error {
	seen := make(map[string]struct{}, len(s.Sites))
	for _, site := range s.Sites {
		if site == "" {
			return fmt.Errorf("config: sharding.sites must not contain empty names")
		}
		if _, dup := seen[site]; dup {
			return fmt.Errorf("config: sharding.sites contains duplicate %q", site)
		}
		seen[site] = struct{}{}
	}

	switch s.Policy {
	case "", "reassign", "sticky":
		return nil
	default:
		return fmt.Errorf("config: sharding.policy %q is not supported", s.Policy)
	}
}

// Validate は PostgreSQL 接続に必要な項目を検証します。
func (d *DatabaseConfig) Validate() error {
	return d.validateAndNormalize()
}

func (d *DatabaseConfig) validateAndNormalize() error {
	if d.Host == "" {
		return fmt.Errorf("config: database.host must be set")
	}
	if d.Port == 0 {
		return fmt.Errorf("config: database.port must be set")
	}
	if d.User == "" {
		return fmt.Errorf("config: database.user must be set")
	}
	if d.Password == "" {
		return fmt.Errorf("config: database.password must be set")
	}
	if d.Name == "" {
		return fmt.Errorf("config: database.name must be set")
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}

	lifetime, err := parseDurationAllowEmpty(d.ConnMaxLifetimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_lifetime: %w", err)
	}
	d.ConnMaxLifetime = lifetime

	idleTime, err := parseDurationAllowEmpty(d.ConnMaxIdleTimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_idle_time: %w", err)
	}
	d.ConnMaxIdleTime = idleTime

	return nil
}

func (r *RedisConfig) validateAndNormalize() error {
	if r.Addr == "" {
		return fmt.Errorf("config: redis.addr must be set")
	}
	if r.DB < 0 {
		return fmt.Errorf("config: redis.db must not be negative")
	}
	if r.KeyPrefix == "" {
		r.KeyPrefix = defaultRedisKeyPrefix
	}
	return nil
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	return d, nil
}

// DSN は pgx 用の接続文字列を返します。ユーザー名とパスワードはエスケープされます。
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}
