package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"codefriend-store/internal/handler"
	"codefriend-store/internal/metrics"
	"codefriend-store/internal/middleware"
	"codefriend-store/internal/service"
)

type Server struct {
	echo           *echo.Echo
	jwtSecret      string
	orderHandler   *handler.OrderHandler
	adminHandler   *handler.AdminHandler
	productHandler *handler.ProductHandler
}

func NewServer(
	jwtSecret string,
	orderService service.OrderService,
	verifyService service.VerifyService,
	entitlementService service.EntitlementService,
	telemetryService service.TelemetryService,
) *Server {
	e := echo.New()

	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(metrics.Middleware())

	s := &Server{
		echo:           e,
		jwtSecret:      jwtSecret,
		orderHandler:   handler.NewOrderHandler(orderService),
		adminHandler:   handler.NewAdminHandler(verifyService, telemetryService),
		productHandler: handler.NewProductHandler(entitlementService, telemetryService),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// -------- customer orders --------
	orders := api.Group("/orders", middleware.Auth(s.jwtSecret))
	orders.POST("", s.orderHandler.Create)
	orders.GET("", s.orderHandler.ListMine)
	orders.POST("/:id/evidence", s.orderHandler.SubmitEvidence)
	orders.GET("/:id/license", s.orderHandler.GetLicense)

	// -------- staff back-office --------
	admin := api.Group("/admin", middleware.Auth(s.jwtSecret))
	admin.GET("/orders", s.adminHandler.ListOrders)
	admin.POST("/orders/:id/approve", s.adminHandler.Approve)
	admin.POST("/orders/:id/reject", s.adminHandler.Reject)
	admin.GET("/stats", s.adminHandler.Stats)

	// -------- public product surface --------
	products := api.Group("/products", middleware.OptionalAuth(s.jwtSecret))
	products.GET("/:id/download", s.productHandler.Download)
	products.POST("/:id/view", s.productHandler.RecordView)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

// ServeHTTP lets the server be driven directly as an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
