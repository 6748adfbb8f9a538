package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/storefronts/api/responses"
	pkgerrors "github.com/angelmondragon/storefronts/pkg/errors"
	"github.com/angelmondragon/storefronts/pkg/logger"
)

// StorefrontParam is the route parameter holding the storefront id.
const StorefrontParam = "storefrontId"

// StorefrontContext parses {storefrontId} and attaches it to the request
// context and the log fields.
func StorefrontContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := uuid.Parse(chi.URLParam(r, StorefrontParam))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid storefront id"))
				return
			}
			ctx := WithStorefrontID(r.Context(), id)
			if logg != nil {
				ctx = logg.WithStorefrontID(ctx, id.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
