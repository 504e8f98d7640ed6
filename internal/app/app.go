// Package app wires configuration, storage, services and transport together.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/attendance-leave-go/internal/config"
	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/notification"
	appHTTP "github.com/cmlabs-hris/attendance-leave-go/internal/handler/http"
	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-leave-go/internal/repository/memory"
	"github.com/cmlabs-hris/attendance-leave-go/internal/repository/postgresql"
	"github.com/cmlabs-hris/attendance-leave-go/internal/repository/sqlite"
	attendanceService "github.com/cmlabs-hris/attendance-leave-go/internal/service/attendance"
	leaveService "github.com/cmlabs-hris/attendance-leave-go/internal/service/leave"
	notificationService "github.com/cmlabs-hris/attendance-leave-go/internal/service/notification"
)

// Repositories is the storage backend every service is built on.
type Repositories struct {
	Attendance    attendance.Repository
	Balances      leave.BalanceRepository
	Requests      leave.RequestRepository
	Notifications notification.Repository
	Transactor    database.Transactor
}

type App struct {
	Config     *config.Config
	JWT        *jwt.JWTService
	Hub        *sse.Hub
	Notifier   notification.Service
	Attendance *attendanceService.AttendanceServiceImpl
	Ledger     *leaveService.LedgerService
	Workflow   *leaveService.WorkflowService

	hubSubscription *notification.Subscription
	closers         []func()
}

// New opens the configured storage and builds the services on top of it.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	repos, closeStore, err := openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app, err := build(cfg, repos)
	if err != nil {
		closeStore()
		return nil, err
	}
	app.closers = append(app.closers, closeStore)
	return app, nil
}

func openStorage(ctx context.Context, cfg *config.Config) (Repositories, func(), error) {
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		store := memory.NewStore()
		slog.Info("Using in-memory storage")
		return Repositories{
			Attendance:    store.Attendance,
			Balances:      store.Balances,
			Requests:      store.Requests,
			Notifications: store.Notifications,
			Transactor:    store.Transactor,
		}, func() {}, nil

	case config.StorageSQLite:
		db, err := sqlite.Open(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return Repositories{}, nil, fmt.Errorf("open sqlite %s: %w", cfg.Storage.SQLitePath, err)
		}
		store := sqlite.NewStore(db)
		slog.Info("Using SQLite storage", "path", cfg.Storage.SQLitePath)
		closeDB := func() {
			if err := db.Close(); err != nil {
				slog.Error("Failed to close sqlite", "error", err)
			}
		}
		return Repositories{
			Attendance:    store.Attendance,
			Balances:      store.Balances,
			Requests:      store.Requests,
			Notifications: store.Notifications,
			Transactor:    store.Transactor,
		}, closeDB, nil

	case config.StoragePostgres:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
			MaxConns: cfg.Database.MaxConns,
			MinConns: cfg.Database.MinConns,
		})
		if err != nil {
			return Repositories{}, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := postgresql.Migrate(ctx, db); err != nil {
			db.Close()
			return Repositories{}, nil, fmt.Errorf("migrate postgres: %w", err)
		}
		store := postgresql.NewStore(db)
		slog.Info("Using PostgreSQL storage", "host", cfg.Database.Host, "database", cfg.Database.Name)
		return Repositories{
			Attendance:    store.Attendance,
			Balances:      store.Balances,
			Requests:      store.Requests,
			Notifications: store.Notifications,
			Transactor:    store.Transactor,
		}, db.Close, nil
	}
	return Repositories{}, nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
}

func build(cfg *config.Config, repos Repositories) (*App, error) {
	jwtService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		return nil, fmt.Errorf("jwt: %w", err)
	}
	latePolicy, err := attendanceService.ParseLatePolicy(cfg.Attendance.LatePolicy)
	if err != nil {
		return nil, err
	}

	hub := sse.NewHub(cfg.Notification.SSEBuffer)
	notifier := notificationService.NewNotificationService(repos.Notifications, notificationService.Config{
		WorkerCount: cfg.Notification.Workers,
		QueueSize:   cfg.Notification.QueueSize,
	})
	sub := notifier.Subscribe(notificationService.HubSubscriber(hub))

	// balances double as the roster, approved requests as the leave calendar
	attendanceSvc := attendanceService.NewAttendanceService(repos.Attendance, repos.Balances, repos.Requests, notifier, attendanceService.Config{
		LateCutoff: cfg.Attendance.LateCutoff,
		LatePolicy: latePolicy,
		Location:   cfg.Attendance.Location,
	})
	ledger := leaveService.NewLedgerService(repos.Balances, repos.Transactor, notifier, cfg.Leave.Policy)
	workflow := leaveService.NewWorkflowService(repos.Requests, ledger, repos.Transactor, notifier)

	return &App{
		Config:          cfg,
		JWT:             jwtService,
		Hub:             hub,
		Notifier:        notifier,
		Attendance:      attendanceSvc,
		Ledger:          ledger,
		Workflow:        workflow,
		hubSubscription: sub,
	}, nil
}

// Router builds the HTTP API.
func (a *App) Router(version string) http.Handler {
	return appHTTP.NewRouter(appHTTP.RouterConfig{
		AllowedOrigins: a.Config.App.AllowedOrigins,
		Env:            a.Config.App.Env,
		Version:        version,
		LogLevel:       a.Config.SlogLevel(),
	}, a.JWT, appHTTP.Handlers{
		Attendance:   appHTTP.NewAttendanceHandler(a.Attendance, a.Config.Attendance.Location, time.Now),
		Leave:        appHTTP.NewLeaveHandler(a.Workflow, a.Ledger),
		Notification: appHTTP.NewNotificationHandler(a.Notifier, a.JWT, a.Hub),
	})
}

// Scheduler registers the background jobs. The caller starts and stops it.
func (a *App) Scheduler(ctx context.Context) *cron.Scheduler {
	scheduler := cron.NewScheduler(ctx)
	cron.NewAttendanceJobs(a.Attendance, a.Config.Attendance.Location).
		RegisterJobs(scheduler, a.Config.Attendance.RolloverInterval)
	return scheduler
}

// Close drains the notifier and releases the storage.
func (a *App) Close() {
	a.hubSubscription.Close()
	a.Notifier.Stop()
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
