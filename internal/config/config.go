package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

type StoreConfig struct {
	Driver      string `yaml:"driver"`
	DatabaseURL string `yaml:"database_url"`
	SQLitePath  string `yaml:"sqlite_path"`
}

type APIConfig struct {
	Addr        string        `yaml:"addr"`
	Token       string        `yaml:"token"`
	Store       StoreConfig   `yaml:"store"`
	LotteryPoll time.Duration `yaml:"lottery_poll"`

	// PlayerTokenTTL bounds the lifetime of tokens the bot hands to players.
	PlayerTokenTTL time.Duration `yaml:"player_token_ttl"`
}

type DiscordConfig struct {
	Token           string `yaml:"token"`
	CommandPrefix   string `yaml:"command_prefix"`
	AnnounceChannel string `yaml:"announce_channel"`
}

type BotConfig struct {
	API     APIConfig     `yaml:"api"`
	Discord DiscordConfig `yaml:"discord"`
}

type CLIConfig struct {
	APIBaseURL string
	UserID     string
	Token      string
}

// LoadBot reads the optional YAML file at path and then applies
// environment overrides. A missing file is not an error.
func LoadBot(path string) (BotConfig, error) {
	var cfg BotConfig
	if err := readFile(path, &cfg); err != nil {
		return cfg, err
	}
	api, err := applyAPIEnv(cfg.API)
	if err != nil {
		return cfg, err
	}
	cfg.API = api
	cfg.Discord.Token = envDefault("DISCORD_TOKEN", cfg.Discord.Token)
	cfg.Discord.CommandPrefix = envDefault("CASHBOT_COMMAND_PREFIX", orDefault(cfg.Discord.CommandPrefix, "!"))
	cfg.Discord.AnnounceChannel = envDefault("CASHBOT_ANNOUNCE_CHANNEL", cfg.Discord.AnnounceChannel)
	if cfg.Discord.Token == "" {
		return cfg, fmt.Errorf("DISCORD_TOKEN is required")
	}
	return cfg, nil
}

func LoadAPI(path string) (APIConfig, error) {
	var file BotConfig
	if err := readFile(path, &file); err != nil {
		return APIConfig{}, err
	}
	return applyAPIEnv(file.API)
}

func LoadCLIFromEnv() CLIConfig {
	return CLIConfig{
		APIBaseURL: strings.TrimRight(envDefault("CASHCTL_API_BASE_URL", "http://localhost:8080"), "/"),
		UserID:     envDefault("CASHCTL_USER_ID", ""),
		Token:      envDefault("CASHCTL_TOKEN", ""),
	}
}

// Path returns the config file location from CASHBOT_CONFIG.
func Path() string {
	return envDefault("CASHBOT_CONFIG", "cashbot.yaml")
}

func readFile(path string, into any) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read config: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := yaml.Unmarshal(data, into); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func applyAPIEnv(cfg APIConfig) (APIConfig, error) {
	addr := os.Getenv("PORT")
	if addr != "" {
		if !strings.HasPrefix(addr, ":") {
			addr = ":" + addr
		}
	} else {
		addr = envDefault("CASHBOT_API_ADDR", orDefault(cfg.Addr, ":8080"))
	}
	cfg.Addr = addr
	cfg.Token = envDefault("CASHBOT_API_TOKEN", cfg.Token)
	cfg.LotteryPoll = envDurationDefault("CASHBOT_LOTTERY_POLL", durationOr(cfg.LotteryPoll, time.Hour))
	cfg.PlayerTokenTTL = envDurationDefault("CASHBOT_PLAYER_TOKEN_TTL", durationOr(cfg.PlayerTokenTTL, 30*24*time.Hour))

	cfg.Store.Driver = strings.ToLower(envDefault("CASHBOT_STORE", orDefault(cfg.Store.Driver, StoreSQLite)))
	cfg.Store.DatabaseURL = envDefault("DATABASE_URL", cfg.Store.DatabaseURL)
	cfg.Store.SQLitePath = envDefault("CASHBOT_SQLITE_PATH", orDefault(cfg.Store.SQLitePath, "cashbot.db"))

	switch cfg.Store.Driver {
	case StoreMemory, StoreSQLite:
	case StorePostgres:
		if cfg.Store.DatabaseURL == "" {
			return cfg, fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	default:
		return cfg, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if cfg.LotteryPoll < time.Second {
		return cfg, fmt.Errorf("lottery poll interval must be at least 1s, got %s", cfg.LotteryPoll)
	}
	return cfg, nil
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func durationOr(v, fallback time.Duration) time.Duration {
	if v <= 0 {
		return fallback
	}
	return v
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envDurationDefault(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envBoolDefault(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// ServeAPI reports whether the bot process should also expose the HTTP API.
func ServeAPI() bool {
	return envBoolDefault("CASHBOT_SERVE_API", true)
}
