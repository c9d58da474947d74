package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/DRSN-tech/online-store/internal/domain"
	"github.com/DRSN-tech/online-store/internal/usecase"
	"github.com/DRSN-tech/online-store/pkg/e"
	"github.com/DRSN-tech/online-store/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type ProductHandler struct {
	catalogUsecase usecase.CatalogUC
	logger         logger.Logger
}

func NewProductHandler(catalogUsecase usecase.CatalogUC, logger logger.Logger) *ProductHandler {
	return &ProductHandler{catalogUsecase: catalogUsecase, logger: logger}
}

type productJSON struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Manufacturer string `json:"manufacturer"`
	Category     string `json:"category"`
	Description  string `json:"description"`
	ImageURL     string `json:"imageUrl"`
	Price        string `json:"price"`
	Stock        int64  `json:"stock"`
}

type reviewJSON struct {
	Username  string    `json:"username"`
	Rating    int32     `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

type createProductBody struct {
	Name         string     `json:"name"`
	Manufacturer string     `json:"manufacturer"`
	Category     string     `json:"category"`
	Description  string     `json:"description"`
	ImageURL     string     `json:"imageUrl"`
	Price        priceField `json:"price"`
	Stock        *int64     `json:"stock"`
}

type updateProductBody struct {
	Name         *string     `json:"name"`
	Manufacturer *string     `json:"manufacturer"`
	Category     *string     `json:"category"`
	Description  *string     `json:"description"`
	ImageURL     *string     `json:"imageUrl"`
	Price        *priceField `json:"price"`
	Stock        *int64      `json:"stock"`
}

type addReviewBody struct {
	Rating  int32  `json:"rating"`
	Comment string `json:"comment"`
}

func toProductJSON(info *usecase.ProductInfo) productJSON {
	return productJSON{
		ID:           info.ID,
		Name:         info.Name,
		Manufacturer: info.Manufacturer,
		Category:     string(info.Category),
		Description:  info.Description,
		ImageURL:     info.ImageURL,
		Price:        formatCents(info.Price),
		Stock:        info.Stock,
	}
}

func toReviewJSON(info *usecase.ReviewInfo) reviewJSON {
	return reviewJSON{
		Username:  info.Username,
		Rating:    info.Rating,
		Comment:   info.Comment,
		CreatedAt: info.CreatedAt,
	}
}

func productIDFromURL(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, e.ErrProductNotFound
	}
	return id, nil
}

func (p *ProductHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := p.catalogUsecase.ListProducts(r.Context())
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	result := make([]productJSON, 0, len(products))
	for i := range products {
		result = append(result, toProductJSON(&products[i]))
	}

	WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"products": result,
	})
}

func (p *ProductHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := productIDFromURL(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	res, err := p.catalogUsecase.GetProduct(r.Context(), id)
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	reviews := make([]reviewJSON, 0, len(res.Reviews))
	for i := range res.Reviews {
		reviews = append(reviews, toReviewJSON(&res.Reviews[i]))
	}

	WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"product": toProductJSON(&res.Product),
		"reviews": reviews,
	})
}

func (p *ProductHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var body createProductBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		p.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, e.ErrStatusBadRequest)
		return
	}

	priceCents, err := parsePriceToCents(string(body.Price))
	if err != nil {
		p.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	var stock int64
	if body.Stock != nil {
		stock = *body.Stock
	}

	info, err := p.catalogUsecase.CreateProduct(r.Context(), &usecase.CreateProductReq{
		Name:         body.Name,
		Manufacturer: body.Manufacturer,
		Category:     domain.Category(body.Category),
		Description:  body.Description,
		ImageURL:     body.ImageURL,
		Price:        priceCents,
		Stock:        stock,
	})
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"product": toProductJSON(info),
	})
}

func (p *ProductHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := productIDFromURL(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var body updateProductBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		p.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, e.ErrStatusBadRequest)
		return
	}

	upd := &usecase.ProductUpdate{
		Name:         body.Name,
		Manufacturer: body.Manufacturer,
		Description:  body.Description,
		ImageURL:     body.ImageURL,
		Stock:        body.Stock,
	}
	if body.Category != nil {
		category := domain.Category(*body.Category)
		upd.Category = &category
	}
	if body.Price != nil {
		priceCents, err := parsePriceToCents(string(*body.Price))
		if err != nil {
			p.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
			WriteError(w, err)
			return
		}
		upd.Price = &priceCents
	}

	info, err := p.catalogUsecase.UpdateProduct(r.Context(), id, upd)
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"product": toProductJSON(info),
	})
}

func (p *ProductHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := productIDFromURL(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := p.catalogUsecase.DeleteProduct(r.Context(), id); err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"success": true,
	})
}

func (p *ProductHandler) uploadProductImage(w http.ResponseWriter, r *http.Request) {
	const (
		maxTotalRequestSize = 20 << 20
		maxMemory           = 16 << 20
	)

	id, err := productIDFromURL(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxTotalRequestSize)

	if err := ensureMultipartForm(r, maxMemory); err != nil {
		p.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), r.Header.Get("Content-Type"))
		WriteError(w, err)
		return
	}

	image, err := parseImage(r.MultipartForm.File["image"])
	if err != nil {
		p.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	info, err := p.catalogUsecase.UploadProductImage(r.Context(), &usecase.UploadImageReq{
		ProductID: id,
		Image:     *image,
	})
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"product": toProductJSON(info),
	})
}

func (p *ProductHandler) addReview(w http.ResponseWriter, r *http.Request) {
	id, err := productIDFromURL(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var body addReviewBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		p.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, e.ErrStatusBadRequest)
		return
	}

	claims := claimsFromCtx(r.Context())

	info, err := p.catalogUsecase.AddReview(r.Context(), &usecase.AddReviewReq{
		ProductID: id,
		Username:  claims.Username,
		Rating:    body.Rating,
		Comment:   body.Comment,
	})
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"review":  toReviewJSON(info),
	})
}
