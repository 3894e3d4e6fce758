package server

import (
	"net/http"

	"storefront/internal/config"
	"storefront/internal/middleware"
	"storefront/internal/repository"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository, h Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	//ログインが要るルートに付ける
	authn := []echo.MiddlewareFunc{
		middleware.AuthJWT(cfg.JWTSecret),
		middleware.TokenVersionGuard(userRepo),
	}

	h.Product.RegisterRoutes(e)
	h.Auth.RegisterRoutes(e, authn...)
	h.Cart.RegisterRoutes(e, authn...)
	h.Order.RegisterRoutes(e, authn...)
	h.AdminProduct.RegisterRoutes(e, authn...)
}
