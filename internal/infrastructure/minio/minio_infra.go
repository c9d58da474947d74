package minio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/DRSN-tech/online-store/internal/cfg"
	"github.com/DRSN-tech/online-store/internal/domain"
	"github.com/DRSN-tech/online-store/internal/infrastructure"
	"github.com/DRSN-tech/online-store/internal/usecase"
	"github.com/DRSN-tech/online-store/pkg/e"
	"github.com/DRSN-tech/online-store/pkg/jitter"
	"github.com/DRSN-tech/online-store/pkg/logger"

	"github.com/google/uuid"
)

// MinioInfrastructure управляет загрузкой и очисткой изображений товаров в MinIO.
type MinioInfrastructure struct {
	minioRepo   usecase.ImageRepository
	cfg         *cfg.MinIOCfg
	logger      logger.Logger
	shutdownCtx context.Context
	wg          sync.WaitGroup
}

func NewMinioInfrastructure(minioRepo usecase.ImageRepository, cfg *cfg.MinIOCfg, logger logger.Logger, shutdownCtx context.Context) *MinioInfrastructure {
	return &MinioInfrastructure{
		minioRepo:   minioRepo,
		cfg:         cfg,
		logger:      logger,
		shutdownCtx: shutdownCtx,
	}
}

// UploadImage загружает изображение товара в MinIO и возвращает ключ объекта.
func (m *MinioInfrastructure) UploadImage(ctx context.Context, req *usecase.UploadImageReq) (string, error) {
	const op = "MinioInfrastructure.UploadImage"

	ext, err := infrastructure.GetExtensionFromMIME(req.Image.MimeType)
	if err != nil {
		return "", e.Wrap(op, err)
	}

	imageID := uuid.NewString()
	objKey := fmt.Sprintf("products/%d/%s.%s", req.ProductID, imageID, ext)
	newImage := domain.NewImage(imageID, m.cfg.BucketName, objKey, req.Image.Data, &req.Image.Size, &req.Image.MimeType)

	key, err := m.minioRepo.Upload(ctx, newImage)
	if err != nil {
		return "", e.Wrap(op, err)
	}

	return key, nil
}

// CleanupImage запускает фоновую очистку указанного ключа MinIO
func (m *MinioInfrastructure) CleanupImage(key string) {
	if key == "" {
		return
	}
	m.wg.Add(1)
	go m.cleanupUploadedKey(key)
}

// cleanupUploadedKey удаляет объект из MinIO с экспоненциальной задержкой и jitter.
func (m *MinioInfrastructure) cleanupUploadedKey(key string) {
	defer m.wg.Done() // сигнализируем завершение компенсации
	const op = "MinioInfrastructure.cleanupUploadedKey"
	m.logger.Infof("%s: Cleaning up uploaded key %s", op, key)

	// Создаём контекст с таймаутом на основе shutdownCtx
	ctx, cancel := context.WithTimeout(m.shutdownCtx, 30*time.Second)
	defer cancel()

	const base = time.Second
	for attempt := 0; attempt < 3; attempt++ {
		if err := m.minioRepo.Delete(ctx, key); err == nil {
			return // Успешно удалено
		}

		// Проверяем, не отменён ли контекст
		select {
		case <-ctx.Done():
			m.logger.Warnf("cleanup interrupted by shutdown, key=%v", key)
			return
		default:
		}

		if attempt < 2 {
			sleepTime := jitter.ExponentialBackoff(base, 10*time.Second, attempt, jitter.DefaultJitter)

			select {
			case <-time.After(sleepTime):
			case <-ctx.Done():
				m.logger.Warnf("cleanup interrupted by shutdown during backoff, key=%v", key)
				return
			}
		}
	}

	m.logger.Warnf("%s: failed to clean up key %s after retries", op, key)
}

// WaitForCleanup ожидает завершения всех фоновых задач очистки с учётом таймаута завершения приложения.
func (m *MinioInfrastructure) WaitForCleanup(shutdownTimeoutCtx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-shutdownTimeoutCtx.Done():
		return fmt.Errorf("minio cleanup timeout during shutdown: %w", shutdownTimeoutCtx.Err())
	}
}
