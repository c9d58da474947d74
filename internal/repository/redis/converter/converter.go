package converter

import (
	"github.com/DRSN-tech/online-store/internal/domain"
	"github.com/DRSN-tech/online-store/internal/usecase"
)

type ProductInfoConverter interface {
	ToRedisModel(entity *usecase.ProductInfo) *ProductInfoRedisModel
	ToUseCase(model *ProductInfoRedisModel) *usecase.ProductInfo
}

type ProductInfoConverterImpl struct{}

func NewProductInfoConverterImpl() *ProductInfoConverterImpl { return &ProductInfoConverterImpl{} }

func (c *ProductInfoConverterImpl) ToRedisModel(entity *usecase.ProductInfo) *ProductInfoRedisModel {
	return &ProductInfoRedisModel{
		ID:           entity.ID,
		Name:         entity.Name,
		Manufacturer: entity.Manufacturer,
		Category:     string(entity.Category),
		Description:  entity.Description,
		ImageURL:     entity.ImageURL,
		Price:        entity.Price,
		Stock:        entity.Stock,
	}
}

func (c *ProductInfoConverterImpl) ToUseCase(model *ProductInfoRedisModel) *usecase.ProductInfo {
	return &usecase.ProductInfo{
		ID:           model.ID,
		Name:         model.Name,
		Manufacturer: model.Manufacturer,
		Category:     domain.Category(model.Category),
		Description:  model.Description,
		ImageURL:     model.ImageURL,
		Price:        model.Price,
		Stock:        model.Stock,
	}
}
