package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/DRSN-tech/online-store/internal/cfg"
	v1Http "github.com/DRSN-tech/online-store/internal/delivery/v1/http"
	"github.com/DRSN-tech/online-store/internal/infrastructure/kafka"
	minioInfra "github.com/DRSN-tech/online-store/internal/infrastructure/minio"
	s3Repo "github.com/DRSN-tech/online-store/internal/repository/minio"
	"github.com/DRSN-tech/online-store/internal/repository/pgdb"
	pgdbConv "github.com/DRSN-tech/online-store/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/online-store/internal/repository/redis"
	redisConv "github.com/DRSN-tech/online-store/internal/repository/redis/converter"
	"github.com/DRSN-tech/online-store/internal/usecase"
	"github.com/DRSN-tech/online-store/pkg/clients"
	"github.com/DRSN-tech/online-store/pkg/closer"
	"github.com/DRSN-tech/online-store/pkg/e"
	"github.com/DRSN-tech/online-store/pkg/logger"
	"github.com/DRSN-tech/online-store/pkg/postgres"
	"github.com/DRSN-tech/online-store/pkg/token"
	"github.com/DRSN-tech/online-store/pkg/tr"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
)

const shutdownTimeout = 10 * time.Second

// App собирает все зависимости приложения и управляет их жизненным циклом.
type App struct {
	cfg    *config.Config
	logger logger.Logger

	httpSrv      *v1Http.Server
	imagesInfra  *minioInfra.MinioInfrastructure
	outboxWorker *kafka.OutboxWorker
	closer       *closer.Closer

	// отменяется при начале graceful shutdown
	shutdownCancel context.CancelFunc
	workerCancel   context.CancelFunc
}

// NewApp инициализирует все подсистемы: базу с миграциями, кэш,
// объектное хранилище, брокер и HTTP-стек.
func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	app := &App{
		cfg:    cfg,
		logger: log,
		closer: closer.NewCloser(0),
	}

	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())
	app.shutdownCancel = shutdownCancel

	db, err := initPGDB(log, cfg)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	app.closer.Add(func(ctx context.Context) error {
		db.Close()
		log.Infof("database pool closed")
		return nil
	})

	productConv := pgdbConv.NewProductConverterImpl()
	reviewConv := pgdbConv.NewReviewConverterImpl()
	userConv := pgdbConv.NewUserConverterImpl()
	orderConv := pgdbConv.NewOrderConverterImpl()
	outboxConv := pgdbConv.NewOutboxEventConverterImpl()
	infoConv := redisConv.NewProductInfoConverterImpl()

	productRepo := pgdb.NewProductRepo(db.Pool, productConv, cfg.Db)
	reviewRepo := pgdb.NewReviewRepo(db.Pool, reviewConv, cfg.Db)
	userRepo := pgdb.NewUserRepo(db.Pool, userConv, cfg.Db)
	orderRepo := pgdb.NewOrderRepo(db.Pool, orderConv, cfg.Db)
	outboxRepo := pgdb.NewOutboxEventRepo(db.Pool, outboxConv)

	trManager := tr.NewPgxManager(db.Pool)

	redisClient := clients.NewRedisClient(cfg.Redis)
	redisCtx, redisCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer redisCancel()
	if err := redisClient.Ping(redisCtx); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	app.closer.Add(func(ctx context.Context) error {
		return redisClient.Client.Close()
	})
	cacheRepo := redis.NewCacheRepo(redisClient, infoConv, cfg.Redis, log)

	minioClient, err := clients.NewMinIOClient(cfg)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	minioCtx, minioCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer minioCancel()
	if err := clients.EnsureBucket(minioCtx, minioClient, cfg.Minio.BucketName); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	imageRepo := s3Repo.NewImageRepo(minioClient, cfg.Minio)
	app.imagesInfra = minioInfra.NewMinioInfrastructure(imageRepo, cfg.Minio, log, shutdownCtx)
	app.closer.Add(func(ctx context.Context) error {
		return app.imagesInfra.WaitForCleanup(ctx)
	})

	producer, err := kafka.NewProducer(log, cfg.Kafka)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if err := producer.EnsureTopic(10 * time.Second); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	app.closer.Add(func(ctx context.Context) error {
		return producer.Close()
	})

	workerCtx, workerCancel := context.WithCancel(context.Background())
	app.workerCancel = workerCancel
	app.outboxWorker = kafka.NewOutboxWorker(outboxRepo, log, producer, db.Dsn)
	app.outboxWorker.Start(workerCtx)
	app.closer.Add(func(ctx context.Context) error {
		workerCancel()
		app.outboxWorker.Stop()
		log.Infof("outbox worker stopped")
		return nil
	})

	tokens := token.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	authUC := usecase.NewAuthUC(userRepo, tokens, log)
	catalogUC := usecase.NewCatalogUC(productRepo, reviewRepo, cacheRepo, app.imagesInfra, cfg.Minio.PublicBaseURL, log)
	checkoutUC := usecase.NewCheckoutUC(productRepo, orderRepo, outboxRepo, cacheRepo, trManager, log)

	r := chi.NewRouter()
	router := v1Http.NewRouter(r, log)
	router.Init(authUC, catalogUC, checkoutUC)

	app.httpSrv = v1Http.NewServer(r, cfg.Http)

	return app, nil
}

// Run блокируется до получения сигнала завершения или фатальной ошибки сервера.
func (a *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Errorf(err, "HTTP server failed: %v", err)
			errCh <- err
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "HTTP server fatal error")
	case <-shutdown:
		a.logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	a.stop()

	return appErr
}

// stop останавливает HTTP-сервер и закрывает ресурсы в порядке LIFO.
func (a *App) stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.httpSrv.Stop(shutdownCtx); err != nil {
		a.logger.Errorf(err, "HTTP server shutdown error")
	} else {
		a.logger.Infof("HTTP server stopped")
	}

	// Фоновые компенсации получают сигнал завершения до закрытия клиентов
	a.shutdownCancel()

	if err := a.closer.Close(shutdownCtx); err != nil {
		a.logger.Warnf("shutdown finished with errors: %v", err)
	}

	a.logger.Infof("Application shutdown complete")
}

func initPGDB(logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(cfg.Db)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(logger); err != nil {
		logger.Errorf(err, "failed to run migrations")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.Ping(); err != nil {
		logger.Errorf(err, "failed to ping database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
