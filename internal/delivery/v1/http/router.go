package http

import (
	"github.com/DRSN-tech/online-store/internal/usecase"
	"github.com/DRSN-tech/online-store/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

func (r *Router) Init(authUC usecase.AuthUC, catalogUC usecase.CatalogUC, checkoutUC usecase.CheckoutUC) {
	r.router.Use(middleware.Recoverer)

	r.router.Route("/api/v1", func(v1 chi.Router) {
		authHandler := NewAuthHandler(authUC, r.logger)
		productHandler := NewProductHandler(catalogUC, r.logger)
		paymentHandler := NewPaymentHandler(checkoutUC, r.logger)

		registerAuthRoutes(v1, authHandler, authUC, r.logger)
		registerProductRoutes(v1, productHandler, authUC, r.logger)
		registerPaymentRoutes(v1, paymentHandler, authUC, r.logger)
	})
}

func registerAuthRoutes(router chi.Router, authHandler *AuthHandler, authUC usecase.AuthUC, logger logger.Logger) {
	router.Route("/auth", func(auth chi.Router) {
		auth.Post("/register", authHandler.register)
		auth.Post("/login", authHandler.login)

		auth.Group(func(private chi.Router) {
			private.Use(authMiddleware(authUC, logger))
			private.Get("/user", authHandler.currentUser)
		})
	})
}

func registerProductRoutes(router chi.Router, productHandler *ProductHandler, authUC usecase.AuthUC, logger logger.Logger) {
	router.Route("/products", func(pr chi.Router) {
		pr.Get("/", productHandler.listProducts)
		pr.Get("/{productID}", productHandler.getProduct)

		pr.Group(func(private chi.Router) {
			private.Use(authMiddleware(authUC, logger))
			private.Post("/{productID}/reviews", productHandler.addReview)

			private.Group(func(admin chi.Router) {
				admin.Use(adminOnly(logger))
				admin.Post("/", productHandler.createProduct)
				admin.Put("/{productID}", productHandler.updateProduct)
				admin.Delete("/{productID}", productHandler.deleteProduct)
				admin.Post("/{productID}/image", productHandler.uploadProductImage)
			})
		})
	})
}

func registerPaymentRoutes(router chi.Router, paymentHandler *PaymentHandler, authUC usecase.AuthUC, logger logger.Logger) {
	router.Route("/payment", func(pay chi.Router) {
		pay.Use(authMiddleware(authUC, logger))
		pay.Post("/checkout", paymentHandler.checkout)
		pay.Get("/orders", paymentHandler.listOrders)
	})
}
