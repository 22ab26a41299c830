package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/murmurapp/murmur-go/pkg/idx"
	"github.com/murmurapp/murmur-go/pkg/murmursdk"
	"github.com/murmurapp/murmur-go/pkg/slogx"
	"github.com/murmurapp/murmur-go/pkg/tokenstore"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application wires the SDK, the durable credential store, and the session
// manager behind the command surface.
type Application struct {
	cfg    Config
	logger *slog.Logger

	store   *tokenstore.SQLite
	client  *murmursdk.Client
	session *murmursdk.SessionManager
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "murmur",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initStore(); err != nil {
		return nil, err
	}

	app.client = murmursdk.New(murmursdk.Config{
		BaseURL:           cfg.APIBaseURL,
		Store:             app.store,
		HTTPTimeout:       cfg.HTTPTimeout,
		RequestsPerMinute: cfg.RequestsPerMinute,
		Logger:            app.logger,
	})
	app.session = murmursdk.NewSessionManager(app.client)

	return app, nil
}

// Run resolves the session, guards the requested command, and executes it.
func (app *Application) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printUsage()
		return fmt.Errorf("no command given")
	}

	name, rest := args[0], args[1:]
	cmd, ok := commands[name]
	if !ok {
		printUsage()
		return fmt.Errorf("unknown command %q", name)
	}

	// Scope the logger to this invocation so every line carries the command
	// and a correlatable id.
	ctx = slogx.WithContext(ctx, app.logger.With("command", name))
	ctx = slogx.WithRequestID(ctx, idx.New().String())

	app.session.RefreshIdentity(ctx)

	decision := murmursdk.Decide(cmd.access, app.session.Snapshot(), "/"+name)
	if decision.Verdict == murmursdk.VerdictRedirect {
		if decision.Path == murmursdk.LoginPath {
			return fmt.Errorf("not logged in; run 'murmur login' first")
		}
		return fmt.Errorf("command %q requires the admin role", name)
	}

	return cmd.run(app, ctx, rest)
}

// Close releases the credential database.
func (app *Application) Close() error {
	return app.store.Close()
}

// initStore opens the credential database, sealed at rest when a key file is
// configured.
func (app *Application) initStore() error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)

	var opts []tokenstore.SQLiteOption
	if app.cfg.KeyFile != "" {
		sealer, err := tokenstore.NewSealerFromFile(app.cfg.KeyFile)
		if err != nil {
			return fmt.Errorf("failed to load sealing key: %w", err)
		}
		opts = append(opts, tokenstore.WithSealer(sealer))
	} else {
		app.logger.Warn("no key file configured, tokens are stored in plaintext")
	}

	store, err := tokenstore.OpenSQLite(dsn, opts...)
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}
	app.store = store

	return nil
}
