package converter

type ProductInfoRedisModel struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Manufacturer string `json:"manufacturer"`
	Category     string `json:"category"`
	Description  string `json:"description"`
	ImageURL     string `json:"image_url"`
	Price        int64  `json:"price"`
	Stock        int64  `json:"stock"`
}
