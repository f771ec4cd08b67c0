package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/viper"

	"github.com/tzander/parkfee-cli/internal/adapters/gate"
	"github.com/tzander/parkfee-cli/internal/adapters/journal"
	tomlrepo "github.com/tzander/parkfee-cli/internal/adapters/repo/toml"
	chainsecrets "github.com/tzander/parkfee-cli/internal/adapters/secrets/chain"
	"github.com/tzander/parkfee-cli/internal/application"
	"github.com/tzander/parkfee-cli/internal/config"
	"github.com/tzander/parkfee-cli/internal/domain"
	"github.com/tzander/parkfee-cli/internal/ports"
)

const (
	secretKeyPIN      = "gate/pin"
	secretKeyPassword = "gate/password"
)

type app struct {
	cfg         config.Config
	settlement  *application.Settlement
	secretStore ports.SecretStore
	logger      *slog.Logger
}

func wireApp() (*app, error) {
	cfg, err := config.Load(viper.New())
	if err != nil {
		return nil, fmt.Errorf("wire config: %w", err)
	}

	logger := newLogger()

	secretStore, err := chainsecrets.NewEnvFirstWithFileFallback(cfg.Secrets.Path)
	if err != nil {
		return nil, fmt.Errorf("wire secret store: %w", err)
	}
	if err := resolveCredentials(&cfg.Credentials, secretStore); err != nil {
		return nil, err
	}

	transport := &gate.TCPTransport{
		Addr:           cfg.Gate.Addr(),
		ConnectTimeout: cfg.Gate.ConnectTimeout,
		ReadTimeout:    cfg.Gate.ReadTimeout,
		Logger:         logger,
	}

	client := gate.NewClient(transport, gate.Credentials{
		Login:    cfg.Credentials.Login,
		PIN:      cfg.Credentials.PIN,
		Password: cfg.Credentials.Password,
		DeviceID: cfg.Credentials.DeviceID,
		DeviceIP: cfg.Credentials.DeviceIP,
		EntityID: cfg.Credentials.EntityID,
	}, logger)

	store, err := tomlrepo.NewRepository(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("wire ticket store: %w", err)
	}

	var receiptJournal ports.ReceiptJournal
	if cfg.Journal.DSN != "" {
		pg, err := journal.Open(cfg.Journal.DSN)
		if err != nil {
			return nil, fmt.Errorf("wire receipt journal: %w", err)
		}
		receiptJournal = pg
	}

	settlement := application.NewSettlement(
		client,
		store,
		receiptJournal,
		cfg.Override(),
		cfg.Tariff.Domain(),
		ports.SystemClock{},
		logger,
	)

	return &app{
		cfg:         cfg,
		settlement:  settlement,
		secretStore: secretStore,
		logger:      logger,
	}, nil
}

// resolveCredentials fills PIN and password from the secret store when
// the config file leaves them empty. Absent secrets stay empty; the
// backend decides whether that is acceptable.
func resolveCredentials(creds *config.Credentials, store ports.SecretStore) error {
	ctx := context.Background()

	if creds.PIN == "" {
		value, err := store.Get(ctx, secretKeyPIN)
		if err != nil && !errors.Is(err, domain.ErrSecretNotFound) {
			return fmt.Errorf("resolve PIN secret: %w", err)
		}
		creds.PIN = value
	}

	if creds.Password == "" {
		value, err := store.Get(ctx, secretKeyPassword)
		if err != nil && !errors.Is(err, domain.ErrSecretNotFound) {
			return fmt.Errorf("resolve password secret: %w", err)
		}
		creds.Password = value
	}

	return nil
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("PARKFEE_DEBUG") != "" {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
