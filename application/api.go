package application

import (
	"context"
	"errors"
	"net/http"
	"time"

	configs "github.com/freitasmatheusrn/supplier-sync/configs"
	"github.com/freitasmatheusrn/supplier-sync/internal/catalog"
	"github.com/freitasmatheusrn/supplier-sync/internal/constants"
	"github.com/freitasmatheusrn/supplier-sync/internal/database/postgres"
	redisdb "github.com/freitasmatheusrn/supplier-sync/internal/database/redis"
	"github.com/freitasmatheusrn/supplier-sync/internal/email"
	"github.com/freitasmatheusrn/supplier-sync/internal/email/mailjet"
	"github.com/freitasmatheusrn/supplier-sync/internal/email/smtp"
	"github.com/freitasmatheusrn/supplier-sync/internal/rules"
	"github.com/freitasmatheusrn/supplier-sync/internal/scheduler"
	"github.com/freitasmatheusrn/supplier-sync/internal/session"
	"github.com/freitasmatheusrn/supplier-sync/internal/subclass"
	"github.com/freitasmatheusrn/supplier-sync/internal/synthesis"
	"github.com/freitasmatheusrn/supplier-sync/pkg/rest"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

type Application struct {
	Config configs.Configs
	Logger *zap.Logger
	DB     *pgxpool.Pool
	Redis  *redisdb.Client

	scheduler *scheduler.Scheduler
}

func (app *Application) Mount() http.Handler {
	mail := app.newEmail()

	e := echo.New()
	e.HTTPErrorHandler = app.CustomErrorHandler
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: app.Config.AllowedOrigins,
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
		},
		ExposeHeaders: []string{echo.HeaderContentDisposition},
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogLatency:  true,
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {

			status := v.Status
			if v.Error != nil {
				switch err := v.Error.(type) {
				case *echo.HTTPError:
					status = err.Code
				case *rest.ApiErr:
					status = err.Code
				}
			}

			fields := []zap.Field{
				zap.Duration("latency", v.Latency),
				zap.Int("status", status),
				zap.String("uri", v.URI),
				zap.String("method", v.Method),
			}

			switch {
			case status >= 500:
				app.Logger.Error("request", fields...)
			case status >= 400:
				app.Logger.Warn("request", fields...)
			default:
				app.Logger.Info("request", fields...)
			}
			return nil
		},
	}))

	// Initialize repositories
	queries := postgres.New(app.DB)
	store := postgres.NewStore(app.DB)

	// Initialize constants service and handler
	constantService := constants.NewService(queries, app.Redis, app.Config.ConstantsTTL, app.Logger)
	constantHandler := constants.NewHandler(constantService)

	// Initialize sub-class service and handler
	subClassService := subclass.NewService(queries, app.Logger)
	subClassHandler := subclass.NewHandler(subClassService)

	// Initialize catalog service and handler
	catalogService := catalog.NewService(queries, app.Logger)
	catalogHandler := catalog.NewHandler(catalogService)

	// Initialize session workflow
	engine := rules.NewEngine(app.Logger)
	masterData := session.NewPostgresMasterData(queries)
	sessionService := session.NewService(session.Deps{
		Store:       session.NewRedisStore(app.Redis, app.Config.SessionTTL),
		Master:      masterData,
		Gateway:     session.NewPostgresGateway(store, app.Config.SubmitWorkers),
		Constants:   constantService,
		SubClasses:  subClassService,
		Catalog:     catalogService,
		Engine:      engine,
		Synthesizer: synthesis.NewSynthesizer(engine, app.Logger),
		Email:       mail,
		Logger:      app.Logger,
	}, session.Config{
		ChunkSize:       app.Config.SubmitChunkSize,
		ItemIDMin:       app.Config.ItemIDMin,
		ItemIDMax:       app.Config.ItemIDMax,
		MaxAttempts:     app.Config.IDMaxAttempts,
		AlertRecipients: app.Config.AlertRecipients,
	})
	sessionHandler := session.NewHandler(sessionService)

	// Initialize and start scheduler for cache refresh and id capacity checks
	app.scheduler = scheduler.NewScheduler(constantService, masterData, app.Logger, mail, scheduler.Config{
		AlertRecipients:   app.Config.AlertRecipients,
		ItemIDMin:         app.Config.ItemIDMin,
		ItemIDMax:         app.Config.ItemIDMax,
		CapacityThreshold: app.Config.IDCapacityAlert,
	})
	if err := app.scheduler.Start(app.Config.CronExpression); err != nil {
		app.Logger.Fatal("failed to start scheduler", zap.Error(err))
	}

	e.GET("/health", app.Health)

	// Constants API routes
	e.GET("/constants", constantHandler.List)
	e.POST("/constants", constantHandler.Create)
	e.GET("/constants/:id", constantHandler.Get)
	e.PUT("/constants/:id", constantHandler.Update)
	e.DELETE("/constants/:id", constantHandler.Delete)

	// Sub-class API routes
	e.GET("/sub-classes", subClassHandler.List)
	e.POST("/sub-classes", subClassHandler.Create)
	e.GET("/sub-classes/:id", subClassHandler.Get)
	e.GET("/sub-classes/:id/attribute-modifications", subClassHandler.GetAttributeModifications)
	e.PUT("/sub-classes/:id/attribute-modifications", subClassHandler.SaveAttributeModifications)
	e.GET("/sub-classes/:id/dimension-operations", subClassHandler.GetDimensionOperations)
	e.PUT("/sub-classes/:id/dimension-operations", subClassHandler.SaveDimensionOperations)

	// Catalog API routes
	e.GET("/catalog/products", catalogHandler.ListProducts)
	e.POST("/catalog/products", catalogHandler.AddProduct)
	e.GET("/catalog/products/:id", catalogHandler.GetProduct)

	// Master data API routes
	e.GET("/master/search", sessionHandler.SearchParents)

	// Session API routes
	e.POST("/sessions/upload", sessionHandler.Upload)
	e.POST("/sessions/from-product/:id", sessionHandler.FromProduct)
	e.POST("/sessions/from-sub-class/:id", sessionHandler.FromSubClass)
	e.GET("/sessions/:id", sessionHandler.Get)
	e.DELETE("/sessions/:id", sessionHandler.Delete)
	e.PUT("/sessions/:id/rules", sessionHandler.SetRules)
	e.POST("/sessions/:id/move-column", sessionHandler.MoveColumn)
	e.POST("/sessions/:id/compare", sessionHandler.Compare)
	e.POST("/sessions/:id/synthesize", sessionHandler.Synthesize)
	e.POST("/sessions/:id/dimension-operations", sessionHandler.ApplyDimensionOperations)
	e.POST("/sessions/:id/submit", sessionHandler.Submit)
	e.POST("/sessions/:id/submit-stream", sessionHandler.SubmitStream)
	e.PUT("/sessions/:id/common/update", sessionHandler.UpdateCommon)
	e.GET("/sessions/:id/export", sessionHandler.Export)

	return e
}

// newEmail picks the delivery provider for alert emails.
func (app *Application) newEmail() email.Email {
	from := app.Config.EmailFrom
	if from == "" {
		from = app.Config.SMTPUser
	}
	if app.Config.EmailProvider == "mailjet" {
		return mailjet.New(app.Config.MailjetAPIKey, app.Config.MailjetSecret, from, app.Config.EmailFromName)
	}
	return smtp.New(from, app.Config.SMTPHost, app.Config.SMTPUser, app.Config.SMTPPass, app.Config.SMTPPort)
}

// Health handles GET /health
func (app *Application) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := app.DB.Ping(ctx); err != nil {
		app.Logger.Warn("database health check failed", zap.Error(err))
		return rest.NewServiceUnavailableError("banco de dados indisponivel")
	}
	if err := app.Redis.HealthCheck(ctx); err != nil {
		app.Logger.Warn("redis health check failed", zap.Error(err))
		return rest.NewServiceUnavailableError("redis indisponivel")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Run serves h until ctx is cancelled, then drains in-flight requests and
// stops the scheduler.
func (app *Application) Run(ctx context.Context, h http.Handler) error {
	srv := &http.Server{
		Addr:         app.Config.WebServerPort,
		Handler:      h,
		WriteTimeout: time.Minute * 5,
		ReadTimeout:  time.Second * 30,
		IdleTimeout:  time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		app.Logger.Info("server has started", zap.String("addr", app.Config.WebServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.Logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if app.scheduler != nil {
		<-app.scheduler.Stop().Done()
	}
	return srv.Shutdown(shutdownCtx)
}
