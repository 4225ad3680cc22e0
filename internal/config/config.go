package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"literature-lite/literature"
)

type Config struct {
	Server ServerConf `mapstructure:"server"`
	Log    LogConf    `mapstructure:"log"`
	Game   GameConf   `mapstructure:"game"`
	Store  StoreConf  `mapstructure:"store"`
	Nats   NatsConf   `mapstructure:"nats"`
	Auth   AuthConf   `mapstructure:"auth"`
}

type ServerConf struct {
	Addr string `mapstructure:"addr"`
}

type LogConf struct {
	Level string `mapstructure:"level"`
}

type GameConf struct {
	Variant   string  `mapstructure:"variant"` // literature | fish
	Players   int     `mapstructure:"players"`
	MaxWeight float64 `mapstructure:"maxWeight"`
	StrictAsk bool    `mapstructure:"strictAsk"`
	Seed      int64   `mapstructure:"seed"` // 0 => time-based

	ThinkDelay  time.Duration `mapstructure:"thinkDelay"`
	TurnTimeout time.Duration `mapstructure:"turnTimeout"` // 0 disables the idle-turn bot
	IdleTTL     time.Duration `mapstructure:"idleTTL"`

	AsyncPersist bool `mapstructure:"asyncPersist"`
}

type StoreConf struct {
	Driver        string        `mapstructure:"driver"` // memory | sqlite | postgres | redis | mongo
	Path          string        `mapstructure:"path"`
	DSN           string        `mapstructure:"dsn"`
	RedisAddr     string        `mapstructure:"redisAddr"`
	RedisPassword string        `mapstructure:"redisPassword"`
	MongoURI      string        `mapstructure:"mongoURI"`
	MongoDB       string        `mapstructure:"mongoDB"`
	CacheTTL      time.Duration `mapstructure:"cacheTTL"` // 0 disables the read cache
	CacheMaxCost  int64         `mapstructure:"cacheMaxCost"`
}

type NatsConf struct {
	URL           string `mapstructure:"url"` // empty disables NATS
	SubjectPrefix string `mapstructure:"subjectPrefix"`
}

type AuthConf struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("log.level", "info")

	v.SetDefault("game.variant", "literature")
	v.SetDefault("game.players", 6)
	v.SetDefault("game.maxWeight", literature.DefaultMaxWeight)
	v.SetDefault("game.strictAsk", false)
	v.SetDefault("game.seed", 0)
	v.SetDefault("game.thinkDelay", "1500ms")
	v.SetDefault("game.turnTimeout", "0s")
	v.SetDefault("game.idleTTL", "30m")
	v.SetDefault("game.asyncPersist", false)

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "literature.db")
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.redisAddr", "127.0.0.1:6379")
	v.SetDefault("store.redisPassword", "")
	v.SetDefault("store.mongoURI", "mongodb://127.0.0.1:27017")
	v.SetDefault("store.mongoDB", "literature")
	v.SetDefault("store.cacheTTL", "10m")
	v.SetDefault("store.cacheMaxCost", 1<<26)

	v.SetDefault("nats.url", "")
	v.SetDefault("nats.subjectPrefix", "literature")

	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.ttl", "24h")
}

// Load reads configFile (optional) and LITERATURE_* env overrides, e.g.
// LITERATURE_STORE_DRIVER=postgres.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("LITERATURE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(c.Store.Driver) {
	case "memory", "sqlite", "postgres", "redis", "mongo":
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if _, err := c.EngineConfig(); err != nil {
		return err
	}
	if c.Game.ThinkDelay < 0 || c.Game.TurnTimeout < 0 || c.Game.IdleTTL < 0 {
		return fmt.Errorf("game durations must be >= 0")
	}
	return nil
}

// EngineConfig builds the per-game engine config for the configured variant.
func (c *Config) EngineConfig() (literature.Config, error) {
	return c.Game.Engine(c.Game.Players)
}

// Engine builds the engine config for a game of the given size; players <= 0
// uses the configured default.
func (g GameConf) Engine(players int) (literature.Config, error) {
	if players <= 0 {
		players = g.Players
	}
	cfg, err := literature.Variant(g.Variant, players)
	if err != nil {
		return literature.Config{}, err
	}
	if g.MaxWeight > 0 {
		cfg.MaxWeight = g.MaxWeight
	}
	cfg.StrictAsk = g.StrictAsk
	cfg.Seed = g.Seed
	return cfg, nil
}
