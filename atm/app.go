package atm

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	atm8583 "github.com/alovak/atm-playground/atm/iso8583"
	"github.com/alovak/atm-playground/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	_ "github.com/lib/pq"
	"golang.org/x/exp/slog"
)

// App is the main application, it contains all the components of the atm
// and is responsible for starting and stopping them.
type App struct {
	srv               *http.Server
	wg                *sync.WaitGroup
	Addr              string
	ISO8583ServerAddr string
	logger            *slog.Logger
	iso8583Server     io.Closer
	db                *sql.DB
	config            *Config
}

func NewApp(logger *slog.Logger, config *Config) *App {
	logger = logger.With(slog.String("app", "atm"))

	if config == nil {
		config = DefaultConfig()
	}

	return &App{
		wg:     &sync.WaitGroup{},
		logger: logger,
		config: config,
	}
}

func (a *App) Start() error {
	a.logger.Info("starting app...")

	if err := a.config.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	repository, err := a.openRepository()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	accounts, err := repository.LoadAccounts(ctx)
	if err != nil {
		return err
	}

	ctrl, err := NewController(accounts)
	if err != nil {
		return fmt.Errorf("building ledger: %w", err)
	}
	a.logger.Info("ledger loaded",
		slog.String("backend", a.config.Backend),
		slog.Int("accounts", len(accounts)),
	)

	atm := NewService(ctrl, a.logger)

	if a.config.ISO8583Addr != "" {
		iso8583Server := atm8583.NewServer(a.logger, a.config.ISO8583Addr, atm)
		err := iso8583Server.Start()
		if err != nil {
			return fmt.Errorf("starting iso8583 server: %w", err)
		}
		a.ISO8583ServerAddr = iso8583Server.Addr
		a.iso8583Server = iso8583Server
	}

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(middleware.NewStructuredLogger(a.logger))
	router.Use(chimw.Recoverer)

	// health endpoints stay outside the rate limit
	router.Get("/-/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Get("/-/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := repository.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	api := NewAPI(atm)
	router.Group(func(r chi.Router) {
		if a.config.RateLimit > 0 {
			r.Use(httprate.LimitByIP(a.config.RateLimit, time.Minute))
		}
		api.AppendRoutes(r)
	})

	l, err := net.Listen("tcp", a.config.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listening tcp port: %w", err)
	}

	a.Addr = l.Addr().String()

	a.srv = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	a.wg.Add(1)
	go func() {
		a.logger.Info("http server started", slog.String("addr", a.Addr))

		if err := a.srv.Serve(l); err != nil {
			if err != http.ErrServerClosed {
				a.logger.Error("starting http server", "err", err)
			}

			a.logger.Info("http server stopped")
		}

		a.wg.Done()
	}()

	return nil
}

func (a *App) openRepository() (*Repository, error) {
	switch a.config.Backend {
	case BackendPG:
		db, err := sql.Open("postgres", a.config.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		db.SetMaxIdleConns(5)
		db.SetMaxOpenConns(10)
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		a.db = db
		return NewPGRepository(db), nil
	case BackendFile:
		accounts, err := LoadSeedFile(a.config.SeedFile)
		if err != nil {
			return nil, err
		}
		return NewRepository(accounts...), nil
	}
	return nil, fmt.Errorf("unsupported REPO_BACKEND=%s", a.config.Backend)
}

func (a *App) Shutdown() {
	a.logger.Info("shutting down app...")

	if a.srv != nil {
		a.srv.Shutdown(context.Background())
	}

	if a.iso8583Server != nil {
		err := a.iso8583Server.Close()
		if err != nil {
			a.logger.Error("closing iso8583 server", "err", err)
		}
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("closing database", "err", err)
		}
	}

	a.wg.Wait()

	a.logger.Info("app stopped")
}
