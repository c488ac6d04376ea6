package router

import (
	"database/sql"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	mem "pet-municipal-registry/internal/adapters/storage/memory"
	my "pet-municipal-registry/internal/adapters/storage/mysql"
	"pet-municipal-registry/internal/domain/animals"
	"pet-municipal-registry/internal/domain/persons"
	"pet-municipal-registry/internal/domain/reports"
	"pet-municipal-registry/internal/middleware"
	"pet-municipal-registry/internal/platform/logger"
	"pet-municipal-registry/internal/platform/metrics"
	"pet-municipal-registry/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa MySQL. Si no, in-memory.
	DB *sql.DB

	// BaseURL pública para las URLs de verificación del carnet.
	BaseURL string

	// Opcional: área de cobertura; zero value = extensión de Puno.
	ServiceArea reports.ServiceArea

	// Opcional: métricas del servicio. Nil = sin instrumentar (tests).
	Metrics *metrics.Metrics

	// Opcional: logger del servicio. Nil = sin log de requests (tests).
	Logger *logger.Logger
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if opts.Logger != nil {
		r.Use(middleware.RequestLogger(opts.Logger))
	}
	if opts.Metrics != nil {
		r.Use(middleware.Metrics(opts.Metrics))
	}
	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	var (
		personsRepo persons.Repository
		animalsRepo animals.Repository
		reportsRepo reports.Repository
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := my.Open(dsn)
			if err == nil {
				db = opened
			}
		}
	}

	if db != nil {
		personsRepo = my.NewPersonsRepo(db)
		animalsRepo = my.NewAnimalsRepo(db)
		reportsRepo = my.NewReportsRepo(db)
	} else {
		personsRepo = mem.NewPersonsRepo()
		animalsRepo = mem.NewAnimalsRepo()
		reportsRepo = mem.NewReportsRepo()

		// Admin de arranque para modo dev: sin BD no existe quién dé de
		// alta al primer admin.
		now := time.Now()
		_ = mem.Seed(personsRepo, persons.Person{
			ID:        "admin-dev",
			Name:      "Admin Dev",
			Role:      persons.RoleSuperAdmin,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	area := opts.ServiceArea
	if area == (reports.ServiceArea{}) {
		area = serviceAreaFromEnv()
	}

	// Services por módulo
	personsSvc := persons.NewService(personsRepo)
	animalsSvc := animals.NewService(animalsRepo)
	reportsSvc := reports.NewService(reportsRepo, personsSvc, area)

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = os.Getenv("BASE_URL")
	}
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	// Rutas por módulo
	persons.RegisterRoutes(r, personsSvc)
	animals.RegisterRoutes(r, animalsSvc, personsSvc, animals.RouteOptions{BaseURL: baseURL})
	reports.RegisterRoutes(r, reportsSvc, personsSvc)

	return r
}

// serviceAreaFromEnv lee SERVICE_AREA con formato
// "minLat,maxLat,minLon,maxLon". Vacío o malformado => zero value (el
// service cae al área default).
func serviceAreaFromEnv() reports.ServiceArea {
	raw := strings.TrimSpace(os.Getenv("SERVICE_AREA"))
	if raw == "" {
		return reports.ServiceArea{}
	}

	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return reports.ServiceArea{}
	}

	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return reports.ServiceArea{}
		}
		vals[i] = v
	}

	return reports.ServiceArea{
		MinLat: vals[0], MaxLat: vals[1],
		MinLon: vals[2], MaxLon: vals[3],
	}
}
