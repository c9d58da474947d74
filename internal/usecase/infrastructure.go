package usecase

import (
	"context"

	"github.com/DRSN-tech/online-store/pkg/token"
)

type MessageProducer interface {
	WriteRawMessage(ctx context.Context, req *WriteRawMessageReq) error
}

type ImagesInfra interface {
	// UploadImage сохраняет изображение и возвращает ключ объекта в хранилище.
	UploadImage(ctx context.Context, req *UploadImageReq) (string, error)
	CleanupImage(key string)
}

type TokenManager interface {
	Issue(userID int64, username, role string) (string, error)
	Parse(tokenStr string) (*token.Claims, error)
}
