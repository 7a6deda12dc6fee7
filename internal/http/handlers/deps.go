package handlers

import (
	"github.com/jmoiron/sqlx"

	"techhub/internal/config"
	"techhub/internal/repos"
	"techhub/internal/services"
)

type Deps struct {
	ProductHandler *ProductHandler
	CartHandler    *CartHandler
	OrderHandler   *OrderHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config) *Deps {
	prodRepo := repos.NewProductRepo(db)
	cartRepo := repos.NewCartRepo(db)
	orderRepo := repos.NewOrderRepo(db)

	catalogSvc := services.NewCatalogService(prodRepo)
	cartSvc := services.NewCartService(cartRepo, prodRepo)
	orderSvc := services.NewOrderService(cartRepo, orderRepo, cfg.OrderFailureRate, cfg.CatalogSeed)

	return &Deps{
		ProductHandler: &ProductHandler{Catalog: catalogSvc, PageSize: cfg.PageSize},
		CartHandler:    &CartHandler{Cart: cartSvc},
		OrderHandler:   &OrderHandler{Order: orderSvc},
	}
}
