package usecase

import (
	"context"

	"github.com/DRSN-tech/online-store/internal/domain"
	"github.com/DRSN-tech/online-store/pkg/token"
)

type AuthUC interface {
	Register(ctx context.Context, req *RegisterReq) (*AuthRes, error)
	Login(ctx context.Context, req *LoginReq) (*AuthRes, error)
	Verify(tokenStr string) (*token.Claims, error)
	CurrentUser(ctx context.Context, tokenStr string) (*domain.User, error)
}

type CatalogUC interface {
	ListProducts(ctx context.Context) ([]ProductInfo, error)
	GetProduct(ctx context.Context, id int64) (*ProductRes, error)
	CreateProduct(ctx context.Context, req *CreateProductReq) (*ProductInfo, error)
	UpdateProduct(ctx context.Context, id int64, upd *ProductUpdate) (*ProductInfo, error)
	DeleteProduct(ctx context.Context, id int64) error
	UploadProductImage(ctx context.Context, req *UploadImageReq) (*ProductInfo, error)
	AddReview(ctx context.Context, req *AddReviewReq) (*ReviewInfo, error)
}

type CheckoutUC interface {
	Checkout(ctx context.Context, req *CheckoutReq) (*OrderSummary, error)
	ListOrders(ctx context.Context) ([]OrderSummary, error)
}
