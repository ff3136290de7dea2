package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	DB        DBConfig        `mapstructure:"db"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Chain     ChainConfig     `mapstructure:"chain"`
	PriceFeed PriceFeedConfig `mapstructure:"price_feed"`
	Oracle    OracleConfig    `mapstructure:"oracle"`
	Lock      LockConfig      `mapstructure:"lock"`
	Resolver  ResolverConfig  `mapstructure:"resolver"`
	Sweep     SweepConfig     `mapstructure:"sweep"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ChainConfig struct {
	RPCURL          string        `mapstructure:"rpc_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	ProgramID       string        `mapstructure:"program_id"`
	GlobalState     string        `mapstructure:"global_state"`
	ConfirmTimeout  time.Duration `mapstructure:"confirm_timeout"`
	ConfirmInterval time.Duration `mapstructure:"confirm_interval"`
}

type PriceFeedConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	APIKeyEnv string        `mapstructure:"api_key_env"`
}

type OracleConfig struct {
	WindowSlack       time.Duration `mapstructure:"window_slack"`
	MaxSampleDistance time.Duration `mapstructure:"max_sample_distance"`
	CacheTTL          time.Duration `mapstructure:"cache_ttl"`
	PreviewCacheTTL   time.Duration `mapstructure:"preview_cache_ttl"`
}

type LockConfig struct {
	KeyPrefix string        `mapstructure:"key_prefix"`
	SingleTTL time.Duration `mapstructure:"single_ttl"`
	BatchTTL  time.Duration `mapstructure:"batch_ttl"`
}

type ResolverConfig struct {
	// AuthorityKeyEnv names the env var holding the base64 ed25519 seed of
	// the resolution authority. The key itself never lives in config files.
	AuthorityKeyEnv string `mapstructure:"authority_key_env"`
	Identity        string `mapstructure:"identity"`
}

type SweepConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Schedule     string `mapstructure:"schedule"`
	LookbackDays int    `mapstructure:"lookback_days"`
	MaxWallets   int    `mapstructure:"max_wallets"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("AP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("chain.rpc_url", "http://localhost:8899")
	v.SetDefault("chain.timeout", "30s")
	v.SetDefault("chain.confirm_timeout", "60s")
	v.SetDefault("chain.confirm_interval", "2s")
	v.SetDefault("price_feed.base_url", "https://api.coingecko.com/api/v3")
	v.SetDefault("price_feed.timeout", "15s")
	v.SetDefault("price_feed.api_key_env", "AP_PRICE_FEED_API_KEY")
	v.SetDefault("oracle.window_slack", "1h")
	v.SetDefault("oracle.max_sample_distance", "2h")
	v.SetDefault("oracle.cache_ttl", "720h")
	v.SetDefault("oracle.preview_cache_ttl", "5m")
	v.SetDefault("lock.key_prefix", "resolve_lock")
	v.SetDefault("lock.single_ttl", "30s")
	v.SetDefault("lock.batch_ttl", "3m")
	v.SetDefault("resolver.authority_key_env", "AP_RESOLVER_AUTHORITY_KEY")
	v.SetDefault("resolver.identity", "alphapicks-resolver")
	v.SetDefault("sweep.enabled", false)
	v.SetDefault("sweep.schedule", "@every 10m")
	v.SetDefault("sweep.lookback_days", 14)
	v.SetDefault("sweep.max_wallets", 100)

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
