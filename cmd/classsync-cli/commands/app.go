package commands

import (
	"classsync-backend/internal/classsync"
	"classsync-backend/internal/components/chrono"
	"classsync-backend/internal/components/telemetry"
	"classsync-backend/internal/db"
	"classsync-backend/internal/scrapers/portal"
	"classsync-backend/pkg/configutil"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"
)

type Config struct {
	BaseUrl   string `json:"base_url"`
	LoginPath string `json:"login_path"`
	MainPath  string `json:"main_path"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	// Timezone is the IANA zone the portal shows times in, empty means the local zone.
	Timezone             string               `json:"timezone"`
	Database             db.Config            `json:"database"`
	RefreshIntervalHours int                  `json:"refresh_interval_hours"`
	RequestsPerSecond    float64              `json:"requests_per_second"`
	CloudflareBypass     bool                 `json:"cloudflare_bypass"`
	DumpDir              string               `json:"dump_dir"`
	Verbose              bool                 `json:"verbose"`
	Otlp                 telemetry.OtlpConfig `json:"otlp"`
}

func fatal(message string, err error) {
	slog.Error(message, "err", err.Error())
	os.Exit(1)
}

type app struct {
	config   Config
	clock    chrono.StandardImpl
	tel      telemetry.API
	data     *sql.DB
	settings db.Settings
	service  *classsync.Service

	shutdownOtel func(context.Context) error
}

// openApp reads the config and wires the service, any failure is fatal.
func openApp(ctx context.Context) *app {
	config, err := configutil.ReadConfig[Config](*configPath)
	if err != nil {
		fatal("failed to read config", err)
	}
	telemetry.InitSlog(config.Verbose)
	if config.BaseUrl == "" {
		fatal("invalid config", fmt.Errorf("base_url is required"))
	}

	a := &app{
		config: config,
		tel:    telemetry.SlogAPI{},
	}

	if config.Otlp.Enabled() {
		a.shutdownOtel, err = telemetry.SetupOtel(ctx, "classsync-cli", config.Otlp)
		if err != nil {
			fatal("failed to setup otel", err)
		}
	}

	a.clock, err = chrono.NewStandardImpl(config.Timezone)
	if err != nil {
		fatal("failed to load timezone", err)
	}

	a.data, err = config.Database.OpenDB()
	if err != nil {
		fatal("failed to open database", err)
	}
	err = db.Migrate(ctx, a.data)
	if err != nil {
		fatal("failed to migrate database", err)
	}

	a.settings = db.NewSettings(a.data)
	if config.RefreshIntervalHours > 0 {
		err = a.settings.SetRefreshIntervalHours(ctx, config.RefreshIntervalHours)
		if err != nil {
			fatal("failed to save refresh interval", err)
		}
	}
	hours, err := a.settings.GetRefreshIntervalHours(ctx)
	if err != nil {
		fatal("failed to read refresh interval", err)
	}

	client, err := portal.NewClient(portal.Options{
		BaseUrl:           config.BaseUrl,
		LoginPath:         config.LoginPath,
		MainPath:          config.MainPath,
		RequestsPerSecond: config.RequestsPerSecond,
		CloudflareBypass:  config.CloudflareBypass,
		DumpDir:           config.DumpDir,
	}, a.tel)
	if err != nil {
		fatal("failed to create portal client", err)
	}

	a.service = classsync.NewService(classsync.Params{
		Client:    client,
		Store:     db.NewStore(a.data),
		Settings:  a.settings,
		Sink:      db.NewScheduleSink(a.data),
		History:   db.NewHistory(a.data),
		Clock:     a.clock,
		Telemetry: a.tel,
		CacheTTL:  time.Duration(hours) * time.Hour,
	})
	return a
}

func (a *app) Close() {
	if a.shutdownOtel != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		err := a.shutdownOtel(ctx)
		if err != nil {
			slog.Warn("failed to flush traces", "err", err.Error())
		}
	}
	a.data.Close()
}

// credentials prefers flags over the config file.
func (a *app) credentials(username, password string) classsync.Credentials {
	if username == "" {
		username = a.config.Username
	}
	if password == "" {
		password = a.config.Password
	}
	return classsync.Credentials{Username: username, Password: password}
}
