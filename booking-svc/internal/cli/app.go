package cli

import (
	"database/sql"
	"log"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"tableside/booking-svc/internal/domain"
	"tableside/booking-svc/internal/locks"
	"tableside/booking-svc/internal/service"
	"tableside/booking-svc/internal/storage"
	"tableside/config"
)

// app holds everything a command needs, wired from one Config.
type app struct {
	cfg config.Config

	db       *sql.DB
	primary  *storage.PostgresStore
	fallback *storage.SQLiteStore
	store    *storage.DualStore
	redis    *redis.Client
	events   *kafka.Writer
	runLock  storage.RunLock

	reconciler   *storage.Reconciler
	orders       *service.OrderService
	reservations *service.ReservationService
	availability *service.AvailabilityService
	ledger       *service.ClientLedger
}

func newApp(cfg config.Config) (*app, error) {
	db, err := config.OpenPostgres(cfg)
	if err != nil {
		return nil, err
	}
	fallback, err := storage.OpenSQLite(cfg.FallbackPath)
	if err != nil {
		db.Close()
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		db:       db,
		primary:  storage.NewPostgresStore(db),
		fallback: fallback,
		redis:    config.NewRedis(cfg),
		events:   config.NewKafkaWriter(cfg),
	}
	a.store = storage.NewDualStore(a.primary, a.fallback, storage.DualStoreOptions{
		PrimaryTimeout:    cfg.PrimaryTimeout,
		PrimaryRetryAfter: cfg.PrimaryRetryAfter,
	})

	// One locker for every flow: admission and rule changes must share date locks.
	var locker locks.Locker = locks.NewKeyed()
	if a.redis != nil {
		shared := locks.NewRedis(a.redis, cfg.LockTTL)
		locker = locks.Chain{locker, shared}
		a.runLock = shared
	}
	a.reconciler = a.newReconciler(nil)

	var notifier service.Notifier
	if a.events != nil {
		notifier = storage.NewKafkaPublisher(a.events)
	}
	menu := storage.NewCachedMenu(storage.NewMenuCatalog(db), a.redis, cfg.MenuCacheTTL)
	qr := service.NewOrderLinkQR(cfg.PublicBaseURL, cfg.QRCodeSize)

	reservations := storage.NewReservations(a.store)
	a.ledger = service.NewClientLedger(storage.NewClients(a.store), locker)
	a.availability = service.NewAvailabilityService(storage.NewAvailabilityRules(a.store), reservations, locker, cfg.DefaultMaxReservations)
	a.orders = service.NewOrderService(storage.NewOrders(a.store), menu, a.ledger, notifier, qr, locker)
	a.reservations = service.NewReservationService(reservations, a.availability, a.ledger, notifier, locker)

	return a, nil
}

// newReconciler limits a pass to kinds, or covers every kind when empty.
func (a *app) newReconciler(kinds []domain.Kind) *storage.Reconciler {
	return storage.NewReconciler(a.primary, a.fallback, a.runLock, storage.ReconcilerOptions{
		SettleWindow: a.cfg.SettleWindow,
		Kinds:        kinds,
	})
}

// close waits for background mirror writes before releasing connections.
func (a *app) close() {
	a.store.Wait()
	if a.events != nil {
		if err := a.events.Close(); err != nil {
			log.Printf("Error closing event writer: %v", err)
		}
	}
	if a.redis != nil {
		a.redis.Close()
	}
	if err := a.fallback.Close(); err != nil {
		log.Printf("Error closing fallback database: %v", err)
	}
	a.db.Close()
}
