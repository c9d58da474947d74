package domain

import "time"

// Review — отзыв пользователя о товаре с оценкой от 1 до 5.
type Review struct {
	ID        int64
	ProductID int64
	Username  string
	Rating    int32
	Comment   string
	CreatedAt time.Time
}

func NewReview(productID int64, username string, rating int32, comment string) *Review {
	return &Review{
		ProductID: productID,
		Username:  username,
		Rating:    rating,
		Comment:   comment,
	}
}
