package main

import (
	"net/http"
	"os"
	"time"

	"pet-municipal-registry/internal/adapters/auth/jwtauth"
	"pet-municipal-registry/internal/platform/logger"
	"pet-municipal-registry/internal/platform/metrics"
	"pet-municipal-registry/internal/ports/auth"
	"pet-municipal-registry/internal/router"

	"github.com/joho/godotenv"
)

func main() {
	// .env es opcional; en despliegue las vars vienen del entorno.
	_ = godotenv.Load()

	log := logger.New("pet-municipal-registry")

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	var verifier auth.AuthVerifier
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		verifier = jwtauth.NewVerifier(secret)
	} else {
		log.Warn("JWT_SECRET not set, running in dev mode (X-Debug headers)")
	}

	r := router.NewRouter(router.Options{
		AuthVerifier: verifier,
		BaseURL:      os.Getenv("BASE_URL"),
		Metrics:      metrics.New("api"),
		Logger:       log,
	})

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.WithField("addr", addr).Info("starting server")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server error")
	}
}
