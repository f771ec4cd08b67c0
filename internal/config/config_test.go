package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tzander/parkfee-cli/internal/domain"
)

func TestLoadDefaultsWithoutConfigFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:7041", cfg.Gate.Addr())
	assert.Equal(t, 10*time.Second, cfg.Gate.ConnectTimeout)
	assert.Equal(t, 10*time.Second, cfg.Gate.ReadTimeout)

	assert.Equal(t, int64(2400), cfg.Tariff.DailyRateMinor)
	assert.Equal(t, int64(300), cfg.Tariff.HourlyRateMinor)
	assert.Equal(t, int64(100), cfg.Tariff.UnitDivisor)
	assert.Equal(t, 15, cfg.Tariff.FreeMinutes)

	assert.False(t, cfg.TestMode.Enabled)
	assert.Equal(t, "127.0.0.1:8642", cfg.Webhook.ListenAddr)
	assert.Empty(t, cfg.Journal.DSN)
	assert.NotEmpty(t, cfg.Store.Path)
	assert.NotEmpty(t, cfg.Secrets.Path)
}

func TestLoadReadsConfigFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".parkfee")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	content := `
[gate]
host = "gate.example.net"
port = 9100

[credentials]
login = "terminal-1"
device_id = 7
device_ip = "10.0.0.7"
entity_id = 3

[tariff]
hourly_rate_minor = 500

[testmode]
enabled = true
hourly = true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o600))

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "gate.example.net:9100", cfg.Gate.Addr())
	assert.Equal(t, "terminal-1", cfg.Credentials.Login)
	assert.Equal(t, 7, cfg.Credentials.DeviceID)
	assert.Equal(t, "10.0.0.7", cfg.Credentials.DeviceIP)
	assert.Equal(t, 3, cfg.Credentials.EntityID)

	assert.Equal(t, int64(500), cfg.Tariff.HourlyRateMinor)
	assert.Equal(t, int64(2400), cfg.Tariff.DailyRateMinor, "untouched keys keep their defaults")

	assert.True(t, cfg.TestMode.Enabled)
	assert.True(t, cfg.TestMode.Hourly)
}

func TestOverrideDisabledByDefault(t *testing.T) {
	var cfg Config

	_, ok := cfg.Override().Scenario()
	assert.False(t, ok)
}

func TestOverrideForcesScenario(t *testing.T) {
	cfg := Config{TestMode: TestMode{Enabled: true, MultiDay: true, FromMidnight: true}}

	scenario, ok := cfg.Override().Scenario()
	require.True(t, ok)
	assert.Equal(t, domain.Scenario{MultiDay: true, FromMidnight: true}, scenario)
}

func TestTariffDomainConversion(t *testing.T) {
	tariff := Tariff{DailyRateMinor: 2400, HourlyRateMinor: 300, UnitDivisor: 100, FreeMinutes: 15}

	assert.Equal(t, domain.Tariff{
		DailyRateMinor:  2400,
		HourlyRateMinor: 300,
		UnitDivisor:     100,
		FreeMinutes:     15,
	}, tariff.Domain())
}
