package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/bookmandala/bookstore/internal/config"
	"github.com/bookmandala/bookstore/internal/handlers"
	"github.com/bookmandala/bookstore/internal/handlers/cart"
	"github.com/bookmandala/bookstore/internal/logging"
	"github.com/bookmandala/bookstore/internal/middleware/auth"
	"github.com/bookmandala/bookstore/internal/session"
	"github.com/bookmandala/bookstore/internal/stock"
	"github.com/bookmandala/bookstore/internal/token"
	httpserver "github.com/bookmandala/bookstore/internal/transport/http"
	"github.com/bookmandala/bookstore/internal/uploader"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		bootLog := logging.New("info")
		bootLog.Fatal().Err(err).Msg("could not load config")
	}

	log := logging.New(cfg.LOG_LEVEL)

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("could not connect to database")
	}

	redisClient, err := config.InitRedis(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("could not connect to redis")
	}

	sessions := session.NewRedisStore(redisClient)
	tokens := token.NewManager([]byte(cfg.JWT_SECRET), cfg.TOKEN_TTL)
	uploads := uploader.NewCloudinary(
		cfg.CLOUDINARY_CLOUD_NAME,
		cfg.CLOUDINARY_API_KEY,
		cfg.CLOUDINARY_API_SECRET,
		cfg.CLOUDINARY_FOLDER,
	)

	oauthConfig := &oauth2.Config{
		ClientID:     cfg.GOOGLE_CLIENT_ID,
		ClientSecret: cfg.GOOGLE_CLIENT_SECRET,
		RedirectURL:  cfg.GOOGLE_REDIRECT_URL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}

	authMW := &auth.Middleware{DB: db, Tokens: tokens, Sessions: sessions}

	deps := httpserver.Deps{
		Auth:         authMW,
		AuthHandler:  &handlers.AuthHandler{DB: db, Tokens: tokens, Sessions: sessions, Uploads: uploads},
		OAuthHandler: &handlers.OAuthHandler{
			DB:         db,
			Tokens:     tokens,
			Sessions:   sessions,
			OAuth:      oauthConfig,
			SuccessURL: cfg.OAUTH_SUCCESS_URL,
			FailureURL: cfg.OAUTH_FAILURE_URL,
		},
		BookHandler:     &handlers.BookHandler{DB: db, Uploads: uploads},
		GenreHandler:    &handlers.GenreHandler{DB: db, Uploads: uploads},
		ReviewHandler:   &handlers.ReviewHandler{DB: db},
		CurrencyHandler: &handlers.CurrencyHandler{DB: db},
		CartHandler:     &cart.Handler{DB: db, Stock: stock.NewLedger(db)},
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), logging.RequestLogger(log))

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + cfg.PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	if err := redisClient.Close(); err != nil {
		log.Error().Err(err).Msg("redis close error")
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Error().Err(err).Msg("db close error")
		}
	} else {
		log.Error().Err(err).Msg("db handle error")
	}

	log.Info().Msg("shutdown complete")
}
