package controllers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/storefronts/api/responses"
	"github.com/angelmondragon/storefronts/pkg/config"
	pkgerrors "github.com/angelmondragon/storefronts/pkg/errors"
	"github.com/angelmondragon/storefronts/pkg/logger"
)

const readinessTimeout = 3 * time.Second

// Pinger is any dependency that can report its reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadinessCheck names a dependency checked by /health/ready.
type ReadinessCheck struct {
	Name   string
	Pinger Pinger
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Storefronts-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every check concurrently and fails with the names of the
// unreachable dependencies.
func HealthReady(cfg *config.Config, checks []ReadinessCheck, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Storefronts-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		var (
			mu     sync.Mutex
			failed = map[string]string{}
		)
		var g errgroup.Group
		for _, check := range checks {
			if check.Pinger == nil {
				continue
			}
			check := check
			g.Go(func() error {
				if err := check.Pinger.Ping(ctx); err != nil {
					mu.Lock()
					failed[check.Name] = err.Error()
					mu.Unlock()
				}
				return nil
			})
		}
		_ = g.Wait()

		if len(failed) > 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").WithDetails(failed))
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
