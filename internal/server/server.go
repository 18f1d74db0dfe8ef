package server

import (
	"context"
	"net/http"

	catalogdomain "github.com/fibrewavelabs/fibrewave/internal/catalog/domain"
	"github.com/fibrewavelabs/fibrewave/internal/config"
	invoicedomain "github.com/fibrewavelabs/fibrewave/internal/invoice/domain"
	"github.com/fibrewavelabs/fibrewave/internal/invoice/render"
	"github.com/fibrewavelabs/fibrewave/internal/observability"
	registrationdomain "github.com/fibrewavelabs/fibrewave/internal/registration/domain"
	settingsdomain "github.com/fibrewavelabs/fibrewave/internal/settings/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Log             *zap.Logger
	Config          config.Config
	DB              *gorm.DB
	Metrics         *observability.Metrics
	RegistrationSvc registrationdomain.Service
	InvoiceSvc      invoicedomain.Service
	CatalogSvc      catalogdomain.Service
	Settings        settingsdomain.Provider
	Renderer        *render.Renderer
}

type Server struct {
	log             *zap.Logger
	cfg             config.Config
	db              *gorm.DB
	metrics         *observability.Metrics
	registrationSvc registrationdomain.Service
	invoiceSvc      invoicedomain.Service
	catalogSvc      catalogdomain.Service
	settings        settingsdomain.Provider
	renderer        *render.Renderer

	http *http.Server
}

func NewServer(p Params) *Server {
	return &Server{
		log:             p.Log.Named("server"),
		cfg:             p.Config,
		db:              p.DB,
		metrics:         p.Metrics,
		registrationSvc: p.RegistrationSvc,
		invoiceSvc:      p.InvoiceSvc,
		catalogSvc:      p.CatalogSvc,
		settings:        p.Settings,
		renderer:        p.Renderer,
	}
}

func (s *Server) Router() *gin.Engine {
	if s.cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", s.Health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})))

	v1 := r.Group("/api/v1")

	// Public signup surface.
	v1.POST("/registrations", s.CreateRegistration)
	v1.GET("/catalog/service-types", s.ListServiceTypes)
	v1.GET("/catalog/service-types/:service_type/packages", s.ListPackages)

	// Admin surface.
	admin := v1.Group("/admin")
	{
		admin.GET("/registrations", s.ListRegistrations)
		admin.GET("/registrations/stats", s.RegistrationStats)
		admin.GET("/registrations/:id", s.GetRegistration)
		admin.PATCH("/registrations/:id", s.UpdateRegistration)
		admin.PUT("/registrations/:id/status", s.UpdateRegistrationStatus)
		admin.DELETE("/registrations/:id", s.DeleteRegistration)
		admin.GET("/registrations/:id/invoices", s.RegistrationInvoices)

		admin.GET("/invoices", s.ListInvoices)
		admin.POST("/invoices", s.CreateInvoice)
		admin.GET("/invoices/stats", s.InvoiceStats)
		admin.POST("/invoices/generate-recurring", s.GenerateRecurring)
		admin.POST("/invoices/send-automatic", s.SendAutomatic)
		admin.POST("/invoices/mark-overdue", s.MarkOverdue)
		admin.POST("/invoices/retry-failed", s.RetryFailed)
		admin.POST("/invoices/bulk-send", s.BulkSendInvoices)
		admin.GET("/invoices/:id", s.GetInvoice)
		admin.PATCH("/invoices/:id", s.UpdateInvoice)
		admin.DELETE("/invoices/:id", s.DeleteInvoice)
		admin.POST("/invoices/:id/send", s.SendInvoice)
		admin.POST("/invoices/:id/activate", s.ActivateInvoice)
		admin.POST("/invoices/:id/mark-paid", s.MarkInvoicePaid)
		admin.POST("/invoices/:id/cancel", s.CancelInvoice)
		admin.GET("/invoices/:id/email-logs", s.InvoiceEmailLogs)
		admin.GET("/invoices/:id/html", s.InvoiceHTML)
		admin.GET("/invoices/:id/pdf", s.InvoicePDF)

		admin.GET("/package-prices", s.ListPackagePrices)
		admin.POST("/package-prices", s.CreatePackagePrice)
		admin.PATCH("/package-prices/:id", s.UpdatePackagePrice)
		admin.DELETE("/package-prices/:id", s.DeletePackagePrice)

		admin.GET("/settings", s.ListSettings)
		admin.PUT("/settings/:key", s.SetSetting)
		admin.DELETE("/settings/:key", s.DeleteSetting)
	}

	return r
}

func (s *Server) Start(ctx context.Context) error {
	s.http = &http.Server{
		Addr:    s.cfg.Server.Addr,
		Handler: s.Router(),
	}
	go func() {
		s.log.Info("http server listening", zap.String("addr", s.cfg.Server.Addr))
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("http server stopped", zap.Error(err))
		}
	}()
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) Health(c *gin.Context) {
	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

var Module = fx.Module("server",
	fx.Provide(NewServer),
)
