package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vancomm/sweeper/internal/config"
	"github.com/vancomm/sweeper/internal/database"
	"github.com/vancomm/sweeper/internal/middleware"
	"github.com/vancomm/sweeper/internal/records"
	"github.com/vancomm/sweeper/internal/session"
)

type App struct {
	logger     *slog.Logger
	router     *http.ServeMux
	sessions   *session.Service
	records    records.Store
	cookies    *config.Cookies
	ws         *config.WebSocket
	game       *config.Game
	basePath   string
	migrations fs.FS
}

func New(logger *slog.Logger, migrations fs.FS) *App {
	app := &App{
		logger:     logger,
		router:     http.NewServeMux(),
		basePath:   config.BasePath(),
		migrations: migrations,
	}

	return app
}

// openRecords picks the records backend. The returned closer is never nil.
func (a *App) openRecords(ctx context.Context) (records.Store, func(), error) {
	backend, err := config.Records()
	if err != nil {
		return nil, nil, err
	}

	switch backend {
	case config.RecordsPostgres:
		pool, migrator, err := database.ConnectAndMigrate(ctx, a.migrations)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to connect to db: %w", err)
		}
		closer := func() {
			pool.Close()
			if srcErr, dbErr := migrator.Close(); srcErr != nil || dbErr != nil {
				a.logger.Warn("unable to close migrator",
					slog.Any("sourceError", srcErr),
					slog.Any("dbError", dbErr),
				)
			}
		}
		return records.NewPostgresStore(pool), closer, nil
	case config.RecordsSQLite:
		db, err := database.OpenSQLite(config.SQLitePath())
		if err != nil {
			return nil, nil, err
		}
		store, err := records.NewSQLiteStore(ctx, db)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	default:
		return nil, func() {}, nil
	}
}

func (a *App) setup(ctx context.Context) (func(), error) {
	game, err := config.NewGame()
	if err != nil {
		return nil, err
	}
	a.game = game

	jwt, err := config.NewJWT()
	if err != nil {
		return nil, err
	}

	cookies, err := config.NewCookies(jwt)
	if err != nil {
		return nil, err
	}
	a.cookies = cookies

	ws, err := config.NewWebSocket()
	if err != nil {
		return nil, err
	}
	a.ws = ws

	store, closeRecords, err := a.openRecords(ctx)
	if err != nil {
		return nil, err
	}
	a.records = store

	opts := []session.Option{session.WithLimits(*game)}
	if store != nil {
		opts = append(opts, session.WithRecords(store))
	}
	a.sessions = session.New(a.logger, opts...)

	a.loadRoutes()

	return closeRecords, nil
}

func (a *App) Handler() http.Handler {
	return middleware.Wrap(
		a.router,
		middleware.Auth(a.logger, a.cookies),
		middleware.Cors(config.CorsOrigins()...),
		middleware.Logging(a.logger),
	)
}

// Start serves until ctx is cancelled or the server fails.
func (a *App) Start(ctx context.Context) error {
	cleanup, err := a.setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	addr := config.Addr()
	server := &http.Server{
		Addr:    addr,
		Handler: a.Handler(),
		BaseContext: func(l net.Listener) context.Context {
			return ctx
		},
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("server listening", slog.String("addr", addr))
		err := server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return a.sessions.RunJanitor(gCtx, a.game.JanitorPeriod)
	})

	return g.Wait()
}
