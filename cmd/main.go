package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"golang.org/x/sync/errgroup"

	httpctx "github.com/dtroode/account-service/internal/api/http/context"
	"github.com/dtroode/account-service/internal/api/http/handler"
	"github.com/dtroode/account-service/internal/api/http/router"
	httpserver "github.com/dtroode/account-service/internal/api/http/server"
	"github.com/dtroode/account-service/internal/config"
	"github.com/dtroode/account-service/internal/logger"
	"github.com/dtroode/account-service/internal/model"
	"github.com/dtroode/account-service/internal/notify"
	"github.com/dtroode/account-service/internal/password"
	"github.com/dtroode/account-service/internal/repository/memory"
	"github.com/dtroode/account-service/internal/repository/postgres"
	"github.com/dtroode/account-service/internal/sentry"
	"github.com/dtroode/account-service/internal/server"
	"github.com/dtroode/account-service/internal/service"
	"github.com/dtroode/account-service/internal/storage/minio"
	"github.com/dtroode/account-service/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

const shutdownTimeout = 10 * time.Second

// stores bundles the persistence chosen by config.
type stores struct {
	accounts      model.AccountStore
	refreshTokens model.RefreshTokenStore
	pinger        handler.Pinger
	close         func() error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	reporter, err := sentry.New(sentry.Options{
		DSN:         cfg.Sentry.DSN,
		Environment: cfg.AppEnv,
		Release:     buildVersion,
		SampleRate:  cfg.Sentry.SampleRate,
	})
	if err != nil {
		logger.Fatal("failed to initialize error reporting", "error", err)
	}
	defer reporter.Flush(2 * time.Second)

	st, err := openStores(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer func() {
		if err := st.close(); err != nil {
			logger.Error("failed to close storage", "error", err)
		}
	}()

	tokenManager := token.NewJWT(token.Options{
		AccessSecret:  cfg.JWT.AccessSecret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
		Issuer:        cfg.JWT.Issuer,
	})

	var refreshStore model.RefreshTokenStore
	if cfg.JWT.RefreshRotation {
		refreshStore = st.refreshTokens
	}

	credentials := service.NewCredentials(st.accounts, password.NewBcrypt(cfg.Security.BcryptCost), logger)
	tokenService := service.NewTokenService(tokenManager, refreshStore, cfg.JWT.RefreshTTL, logger)
	mailer := service.NewMailer(newNotifier(cfg.Mail, cfg.Security.ResetTokenTTL, logger), cfg.Mail.SendTimeout, logger)

	var avatars model.Storage
	if cfg.Storage.Enabled {
		client, err := minio.Open(ctx, minio.Options{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			UseSSL:    cfg.Storage.UseSSL,
		})
		if err != nil {
			logger.Fatal("failed to initialize storage client", "error", err)
		}
		avatars = client
	}

	authService := service.NewAuth(credentials, tokenService, mailer, cfg.Security.ResetTokenTTL, logger)
	accountService := service.NewAccounts(credentials, tokenService, avatars, logger)

	r := router.New(authService, accountService, st.pinger, reporter, httpctx.NewManager(), router.Options{
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		Cookies: handler.CookieOptions{
			Secure:     cfg.IsProduction(),
			AccessTTL:  cfg.JWT.AccessTTL,
			RefreshTTL: cfg.JWT.RefreshTTL,
		},
		ExposeErrorDetail: !cfg.IsProduction(),
	}, logger)

	httpServer := httpserver.NewHTTPServer(r.Register(), fmt.Sprintf(":%s", cfg.HTTP.Port), logger)

	var sl model.SecurityLayer
	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	logAppVersion()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting server on", "address", httpServer.Address(), "env", cfg.AppEnv, "driver", cfg.Database.Driver)
		if err := httpServer.Start(sl); err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("received interruption signal, shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		if err := httpServer.Stop(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop server: %w", err))
		}
		if err := mailer.Wait(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("failed to drain mailer: %w", err))
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", "error", err)
		reporter.CaptureException(err)
	}
	logger.Info("shutdown complete")
}

func openStores(ctx context.Context, cfg config.Database, logger *logger.Logger) (*stores, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		logger.Warn("using in-memory storage, data is lost on restart")
		db := memory.NewDB()
		accounts := memory.NewAccountRepository(db)
		return &stores{
			accounts:      accounts,
			refreshTokens: memory.NewRefreshTokenRepository(db),
			pinger:        accounts,
			close:         db.Close,
		}, nil
	default:
		conn, err := postgres.NewConnection(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return &stores{
			accounts:      postgres.NewAccountRepository(conn),
			refreshTokens: postgres.NewRefreshTokenRepository(conn),
			pinger:        conn,
			close:         conn.Close,
		}, nil
	}
}

func newNotifier(cfg config.Mail, resetTTL time.Duration, logger *logger.Logger) model.Notifier {
	if cfg.APIKey == "" {
		logger.Warn("mail API key not set, emails are logged instead of sent")
		return notify.NewLog(logger)
	}
	return notify.NewMailtrap(notify.MailtrapOptions{
		APIURL:      cfg.APIURL,
		APIKey:      cfg.APIKey,
		FromEmail:   cfg.FromEmail,
		FromName:    cfg.FromName,
		FrontendURL: cfg.FrontendURL,
		ResetTTL:    resetTTL,
	}, &http.Client{Timeout: cfg.SendTimeout}, logger)
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
