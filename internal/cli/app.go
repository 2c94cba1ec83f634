package cli

import (
	"log/slog"

	"github.com/shopfront/shopfront/internal/api"
	"github.com/shopfront/shopfront/internal/auth"
	"github.com/shopfront/shopfront/internal/cart"
	"github.com/shopfront/shopfront/internal/catalog"
	"github.com/shopfront/shopfront/internal/config"
	"github.com/shopfront/shopfront/internal/localstore"
	"github.com/shopfront/shopfront/internal/ops"
	"github.com/shopfront/shopfront/internal/orders"
	"github.com/shopfront/shopfront/pkg/logger"
)

// App is the explicitly constructed state container handed to every
// command: config, local store, API client and the managers built on
// top. It is initialized once per invocation and torn down with the
// process, so there is no module-level mutable state anywhere.
type App struct {
	Config  config.Config
	Log     *slog.Logger
	Store   localstore.Store
	Tracker *ops.Tracker
	API     *api.Client
	Auth    *auth.Manager
	Catalog *catalog.Manager
	Orders  *orders.Manager

	// Cart is the active cart store: the server-backed cart when a
	// session was restored, the guest cart otherwise.
	Cart   cart.Store
	Remote *cart.Remote // non-nil when Cart is server-backed
}

func newApp(opts *RootOptions) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "loading configuration", err)
	}

	level := cfg.LogLevel
	if opts.Verbose {
		level = "debug"
	}
	log := logger.New(logger.Options{
		Service: "shopfront",
		Level:   level,
		Format:  cfg.LogFormat,
	})

	store, err := localstore.NewFileStore(cfg.StateDir)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "opening local state", err)
	}

	tracker := ops.NewTracker()
	client := api.NewClient(
		cfg.APIBaseURL,
		api.TokenSourceFunc(func() string { return localstore.Token(store) }),
		api.WithTimeout(cfg.RequestTimeout.Std()),
		api.WithLogger(log),
	)

	authMgr := auth.NewManager(client, store, tracker, log)
	authMgr.Initialize()

	app := &App{
		Config:  cfg,
		Log:     log,
		Store:   store,
		Tracker: tracker,
		API:     client,
		Auth:    authMgr,
		Catalog: catalog.NewManager(client, tracker),
		Orders:  orders.NewManager(client, tracker),
	}
	app.selectCart()
	return app, nil
}

// selectCart picks the cart store for the current session: guests get
// the locally persisted cart, authenticated users the server cart.
func (a *App) selectCart() {
	if a.Auth.Session().LoggedIn() {
		a.Remote = cart.NewRemote(a.API)
		a.Cart = a.Remote
		return
	}
	a.Remote = nil
	a.Cart = cart.NewLocal(a.Store)
}

// rejection maps an operation error to the exit-code convention while
// keeping the server's message for display. It also invalidates the
// session when the backend rejected our token.
func (a *App) rejection(message string, err error) error {
	a.Auth.InvalidateOn(err)
	return WrapExitError(ExitRejected, message, err)
}
