package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kpetrov/docflow/internal/auth/password"
	"github.com/kpetrov/docflow/internal/auth/token"
	"github.com/kpetrov/docflow/internal/config"
	"github.com/kpetrov/docflow/internal/core/ports"
	"github.com/kpetrov/docflow/internal/core/usecase"
	"github.com/kpetrov/docflow/internal/infrastructure/extractor"
	natsqueue "github.com/kpetrov/docflow/internal/infrastructure/queue/nats"
	"github.com/kpetrov/docflow/internal/infrastructure/provider/openai"
	"github.com/kpetrov/docflow/internal/infrastructure/repository/postgres"
	"github.com/kpetrov/docflow/internal/infrastructure/resilience"
	miniostorage "github.com/kpetrov/docflow/internal/infrastructure/storage/minio"
)

// App wires the full dependency graph once; api and worker mains pick the
// pieces they serve.
type App struct {
	Config config.Config

	AuthUC     ports.AuthService
	UploadUC   ports.DocumentUploader
	SearchUC   ports.DocumentSearcher
	StatusUC   *usecase.StatusUseCase
	DownloadUC ports.DownloadService
	Analytics  *usecase.AnalyticsUseCase

	ExtractionUC     ports.StageHandler
	MetadataUC       ports.StageHandler
	ClassificationUC ports.StageHandler
	NotificationUC   ports.StageHandler

	Tokens ports.TokenManager

	ExtractionQueue     ports.MessageQueue
	MetadataQueue       ports.MessageQueue
	ClassificationQueue ports.MessageQueue
	StatusQueue         ports.MessageQueue
	NotificationQueue   ports.MessageQueue

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger, clientName string) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	docs := postgres.NewDocumentStore(db)
	statusLog := postgres.NewStatusLogStore(db)
	users := postgres.NewUserStore(db)
	snapshots := postgres.NewAnalyticsStore(db)

	storage, err := miniostorage.New(ctx, miniostorage.Config{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	conn, err := natsqueue.Connect(cfg.NATSURL, clientName)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())
	extractionQueue := natsqueue.NewQueue(conn, cfg.ExtractionSubject, executor)
	metadataQueue := natsqueue.NewQueue(conn, cfg.MetadataSubject, executor)
	classificationQueue := natsqueue.NewQueue(conn, cfg.ClassificationSubject, executor)
	statusQueue := natsqueue.NewQueue(conn, cfg.StatusSubject, executor)
	notificationQueue := natsqueue.NewQueue(conn, cfg.NotificationSubject, executor)
	notificationTopic := natsqueue.NewTopic(conn, cfg.NotificationTopic)

	aiClient := openai.New(cfg.AIBaseURL, cfg.AIAPIKey, cfg.AIModel, cfg.AITimeout)
	metadataProvider := openai.NewMetadataProvider(aiClient)
	classifier := openai.NewClassifier(aiClient, usecase.CategoryVocabulary())

	textExtractor := extractor.New(logger)
	tokens := token.New(cfg.JWTSecret, cfg.TokenTTL)
	hasher := password.NewDefault()

	return &App{
		Config: cfg,

		AuthUC:     usecase.NewAuthUseCase(users, hasher, tokens),
		UploadUC:   usecase.NewUploadUseCase(docs, storage, extractionQueue),
		SearchUC:   usecase.NewSearchUseCase(docs, cfg.SearchDefaultLimit, cfg.SearchMaxLimit),
		StatusUC:   usecase.NewStatusUseCase(statusLog, docs),
		DownloadUC: usecase.NewDownloadUseCase(docs, storage, cfg.PresignTTL),
		Analytics:  usecase.NewAnalyticsUseCase(docs, snapshots),

		ExtractionUC:     usecase.NewExtractionUseCase(storage, textExtractor, metadataProvider, metadataQueue, cfg.ExcerptMaxChars),
		MetadataUC:       usecase.NewMetadataUseCase(docs, classificationQueue),
		ClassificationUC: usecase.NewClassificationUseCase(docs, classifier, statusQueue, notificationQueue),
		NotificationUC:   usecase.NewNotificationUseCase(notificationTopic),

		Tokens: tokens,

		ExtractionQueue:     extractionQueue,
		MetadataQueue:       metadataQueue,
		ClassificationQueue: classificationQueue,
		StatusQueue:         statusQueue,
		NotificationQueue:   notificationQueue,

		closeFn: func() {
			conn.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
