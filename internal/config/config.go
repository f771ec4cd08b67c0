package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/tzander/parkfee-cli/internal/domain"
	"github.com/tzander/parkfee-cli/internal/ports"
)

const (
	configName = "config"
	configType = "toml"
	configDir  = ".parkfee"
	envPrefix  = "PARKFEE"
)

type Config struct {
	Gate        Gate
	Credentials Credentials
	Tariff      Tariff
	TestMode    TestMode
	Store       Store
	Webhook     Webhook
	Journal     Journal
	Secrets     Secrets
}

type Gate struct {
	Host           string
	Port           int
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

func (g Gate) Addr() string {
	return fmt.Sprintf("%s:%d", g.Host, g.Port)
}

type Credentials struct {
	Login    string
	PIN      string
	Password string
	DeviceID int
	DeviceIP string
	EntityID int
}

type Tariff struct {
	DailyRateMinor  int64
	HourlyRateMinor int64
	UnitDivisor     int64
	FreeMinutes     int
}

func (t Tariff) Domain() domain.Tariff {
	return domain.Tariff{
		DailyRateMinor:  t.DailyRateMinor,
		HourlyRateMinor: t.HourlyRateMinor,
		UnitDivisor:     t.UnitDivisor,
		FreeMinutes:     t.FreeMinutes,
	}
}

// TestMode forces the billing classification for deterministic testing.
// It satisfies ports.ScenarioOverride via Override.
type TestMode struct {
	Enabled      bool
	Hourly       bool
	MultiDay     bool
	FromMidnight bool
}

type Override struct {
	mode TestMode
}

var _ ports.ScenarioOverride = Override{}

func (o Override) Scenario() (domain.Scenario, bool) {
	if !o.mode.Enabled {
		return domain.Scenario{}, false
	}
	return domain.Scenario{
		Hourly:       o.mode.Hourly,
		MultiDay:     o.mode.MultiDay,
		FromMidnight: o.mode.FromMidnight,
	}, true
}

func (c Config) Override() Override {
	return Override{mode: c.TestMode}
}

type Store struct {
	Path string
}

type Webhook struct {
	ListenAddr string
	Secret     string
}

type Journal struct {
	DSN string
}

// Secrets points at the file-based credential store; wiring consults it
// for "gate/pin" and "gate/password" when the config leaves them empty.
type Secrets struct {
	Path string
}

// Load reads the config file from ~/.parkfee (TOML), layered under
// PARKFEE_* environment variables. A missing file is fine; missing
// credentials are only rejected by commands that need them.
func Load(v *viper.Viper) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("resolve home directory: %w", err)
	}

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(filepath.Join(homeDir, configDir))
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	setDefaults(v, homeDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		Gate: Gate{
			Host:           v.GetString("gate.host"),
			Port:           v.GetInt("gate.port"),
			ConnectTimeout: v.GetDuration("gate.connect_timeout"),
			ReadTimeout:    v.GetDuration("gate.read_timeout"),
		},
		Credentials: Credentials{
			Login:    v.GetString("credentials.login"),
			PIN:      v.GetString("credentials.pin"),
			Password: v.GetString("credentials.password"),
			DeviceID: v.GetInt("credentials.device_id"),
			DeviceIP: v.GetString("credentials.device_ip"),
			EntityID: v.GetInt("credentials.entity_id"),
		},
		Tariff: Tariff{
			DailyRateMinor:  v.GetInt64("tariff.daily_rate_minor"),
			HourlyRateMinor: v.GetInt64("tariff.hourly_rate_minor"),
			UnitDivisor:     v.GetInt64("tariff.unit_divisor"),
			FreeMinutes:     v.GetInt("tariff.free_minutes"),
		},
		TestMode: TestMode{
			Enabled:      v.GetBool("testmode.enabled"),
			Hourly:       v.GetBool("testmode.hourly"),
			MultiDay:     v.GetBool("testmode.multi_day"),
			FromMidnight: v.GetBool("testmode.from_midnight"),
		},
		Store: Store{
			Path: v.GetString("store.path"),
		},
		Webhook: Webhook{
			ListenAddr: v.GetString("webhook.listen"),
			Secret:     v.GetString("webhook.secret"),
		},
		Journal: Journal{
			DSN: v.GetString("journal.dsn"),
		},
		Secrets: Secrets{
			Path: v.GetString("secrets.path"),
		},
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, homeDir string) {
	v.SetDefault("gate.host", "127.0.0.1")
	v.SetDefault("gate.port", 7041)
	v.SetDefault("gate.connect_timeout", 10*time.Second)
	v.SetDefault("gate.read_timeout", 10*time.Second)

	v.SetDefault("tariff.daily_rate_minor", 2400)
	v.SetDefault("tariff.hourly_rate_minor", 300)
	v.SetDefault("tariff.unit_divisor", 100)
	v.SetDefault("tariff.free_minutes", 15)

	v.SetDefault("store.path", filepath.Join(homeDir, configDir, "tickets.toml"))
	v.SetDefault("webhook.listen", "127.0.0.1:8642")
	v.SetDefault("secrets.path", filepath.Join(homeDir, configDir, "secrets"))
}
