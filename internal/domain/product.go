package domain

import "time"

// Category — категория товара из фиксированного набора витрины.
type Category string

const (
	CategoryDesktops    Category = "desktops"
	CategoryLaptops     Category = "laptops"
	CategoryAccessories Category = "accessories"
)

// ValidCategory сообщает, входит ли категория в допустимый набор.
func ValidCategory(c Category) bool {
	switch c {
	case CategoryDesktops, CategoryLaptops, CategoryAccessories:
		return true
	}
	return false
}

// Product описывает товар каталога.
// Инварианты: Price >= 0, Stock >= 0 (дублируются CHECK-ограничениями в БД).
type Product struct {
	ID           int64
	Name         string
	Manufacturer string
	Category     Category
	Description  string
	ImageURL     string
	Price        int64 // Цена хранится в центах
	Stock        int64
	CreatedAt    time.Time
	UpdatedAt    *time.Time
	IsArchived   bool
}

func NewProduct(name, manufacturer string, category Category, description, imageURL string, price, stock int64) *Product {
	return &Product{
		Name:         name,
		Manufacturer: manufacturer,
		Category:     category,
		Description:  description,
		ImageURL:     imageURL,
		Price:        price,
		Stock:        stock,
	}
}
