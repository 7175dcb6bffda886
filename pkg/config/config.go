package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix 環境變數前綴，例如 SOCIAL_DB_HOST 會覆蓋 db.host
const EnvPrefix = "SOCIAL"

type Config struct {
	Server ServerConfig
	DB     DBConfig
	Log    LogConfig
	Redis  RedisConfig
}

type ServerConfig struct {
	Address string
	Mode    string // gin 模式：debug / release / test
}

type DBConfig struct {
	Driver       string // postgres / mysql / sqlite
	Host         string
	User         string
	Password     string
	Name         string
	Port         int
	SSLMode      string `mapstructure:"ssl_mode"`
	TimeZone     string `mapstructure:"time_zone"`
	DSN          string // 直接指定 DSN；sqlite 時為檔案路徑
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type LogConfig struct {
	Level  string
	Format string // text / json
}

// RedisConfig 設定訊息推播的 Redis 中繼，Addr 為空時停用
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// Enabled 回報是否啟用 Redis 中繼
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.mode", "release")

	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "social_media")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.ssl_mode", "disable")
	v.SetDefault("db.time_zone", "UTC")
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.auto_migrate", false)
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.max_idle_conns", 5)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.channel", "social_media:messages")
}

// Load 讀取設定
// path 為空時依序在 ./pkg/config 與目前目錄尋找 config.yaml，找不到則只使用預設值與環境變數；
// 指定 path 時檔案必須存在。
func Load(path string) (*Config, error) {
	// .env 為選用檔案，不存在時忽略
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./pkg/config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(c.DB.Driver) {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported db driver: %q", c.DB.Driver)
	}
	if c.Server.Address == "" {
		return errors.New("server.address must be configured")
	}
	return nil
}
