package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefronts/api/controllers"
	"github.com/angelmondragon/storefronts/api/middleware"
	"github.com/angelmondragon/storefronts/internal/storefronts"
	"github.com/angelmondragon/storefronts/pkg/config"
	"github.com/angelmondragon/storefronts/pkg/logger"
)

// RunService provisions and regenerates storefronts.
type RunService interface {
	controllers.Provisioner
	controllers.Regenerator
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	checks []controllers.ReadinessCheck,
	gatherer prometheus.Gatherer,
	storefrontService storefronts.Service,
	runService RunService,
	imageService controllers.ImageService,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, checks, logg))
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/admin/v1/storefronts", func(r chi.Router) {
		r.Get("/", controllers.AdminListStorefronts(storefrontService, logg))
		r.Post("/", controllers.AdminProvisionStorefront(runService, logg))

		r.Route("/{"+middleware.StorefrontParam+"}", func(r chi.Router) {
			r.Use(middleware.StorefrontContext(logg))
			r.Get("/", controllers.AdminGetStorefront(storefrontService, logg))
			r.Post("/regenerate", controllers.AdminRegenerateStorefront(runService, logg))

			r.Route("/images", func(r chi.Router) {
				r.Get("/", controllers.AdminListImages(imageService, logg))
				r.Post("/", controllers.AdminUploadImage(imageService, cfg.Media.MaxUploadBytes(), logg))
				r.Post("/{imageId}/promote", controllers.AdminPromoteImage(imageService, logg))
				r.Delete("/{imageId}", controllers.AdminDeleteImage(imageService, logg))
			})
		})
	})

	return r
}
