package commands

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/diogo/gatewaychat/internal/chat"
	"github.com/diogo/gatewaychat/internal/config"
	"github.com/diogo/gatewaychat/internal/gateway"
	"github.com/diogo/gatewaychat/internal/history"
	"github.com/diogo/gatewaychat/internal/render"
	"github.com/diogo/gatewaychat/internal/shell"
	"github.com/diogo/gatewaychat/internal/tui"
	"github.com/diogo/gatewaychat/pkg/logger"
)

// Dependencies holds the constructors the commands use.
// Tests swap them to avoid real gateways and the user's home directory.
type Dependencies struct {
	LoadConfig  func() (config.Config, error)
	NewLogger   func(level, path string) (*logger.Logger, error)
	OpenBackend func(kind, dir string) (history.Backend, error)
	NewClient   func(cfg config.Config) (gateway.Client, error)
}

// NewDependencies creates a Dependencies struct with the production implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		LoadConfig:  config.LoadConfig,
		NewLogger:   logger.New,
		OpenBackend: history.OpenBackend,
		NewClient:   newGatewayClient,
	}
}

var deps = NewDependencies()

func newGatewayClient(cfg config.Config) (gateway.Client, error) {
	token, err := config.ResolveToken(cfg.Gateway.Provider)
	if err != nil {
		return nil, err
	}
	return gateway.New(cfg.GatewayClientConfig(token))
}

// App is everything a command needs once the config has been read
type App struct {
	Config config.Config
	Log    *logger.Logger
	Store  *history.Store
}

// Close flushes the logger and releases the store
func (a *App) Close() {
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.Log.Warn("closing store", zap.Error(err))
		}
	}
	_ = a.Log.Sync()
}

// openApp loads the config and opens the logger and the history store.
// A broken config file is reported and the defaults are used.
func openApp() (*App, error) {
	cfg, cfgErr := deps.LoadConfig()

	level := cfg.LogLevel
	if logLevelFlag != "" {
		level = logLevelFlag
	}
	logPath, err := cfg.LogPath()
	if err != nil {
		return nil, err
	}
	log, err := deps.NewLogger(level, logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}
	logger.SetGlobal(log)
	if cfgErr != nil {
		log.Warn("using default config", zap.Error(cfgErr))
	}

	if render.SetTUITheme(cfg.TUITheme) {
		tui.UpdateTheme()
	}

	dir, err := cfg.StorageDir()
	if err != nil {
		return nil, err
	}
	kind := cfg.Storage.Backend
	if ephemeralFlag {
		kind = history.BackendMemory
	}
	backend, err := deps.OpenBackend(kind, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}

	return &App{
		Config: cfg,
		Log:    log,
		Store:  history.NewStore(backend, history.WithLogger(log.Named("history"))),
	}, nil
}

// NewShell connects to the gateway and builds the shell over the store.
// shellOpts and chatOpts are applied after the ones derived from the config.
func (a *App) NewShell(shellOpts []shell.Option, chatOpts ...chat.Option) (*shell.Shell, error) {
	client, err := deps.NewClient(a.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	presets, err := config.LoadPresets()
	if err != nil {
		a.Log.Warn("using built-in presets", zap.Error(err))
	}

	opts := []shell.Option{
		shell.WithPresets(presets),
		shell.WithLogger(a.Log.Named("shell")),
		shell.WithDefaultSelection(a.Config.DefaultSelection()),
		shell.WithChatOptions(chat.WithTemperatureRules(a.Config.TemperatureRules())),
		shell.WithChatOptions(chatOpts...),
	}
	opts = append(opts, shellOpts...)

	a.Log.Debug("gateway ready", zap.String("provider", client.Name()))
	return shell.New(a.Store, client, opts...), nil
}
