package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefronts/api/middleware"
	"github.com/angelmondragon/storefronts/api/responses"
	"github.com/angelmondragon/storefronts/api/validators"
	"github.com/angelmondragon/storefronts/internal/regeneration"
	"github.com/angelmondragon/storefronts/internal/storefronts"
	pkgerrors "github.com/angelmondragon/storefronts/pkg/errors"
	"github.com/angelmondragon/storefronts/pkg/logger"
	"github.com/angelmondragon/storefronts/pkg/pagination"
)

// Provisioner creates storefronts from directory records.
type Provisioner interface {
	Provision(ctx context.Context, in regeneration.ProvisionInput) (*regeneration.Summary, error)
}

// Regenerator re-synchronizes existing storefronts.
type Regenerator interface {
	Regenerate(ctx context.Context, storefrontID uuid.UUID) (*regeneration.Summary, error)
}

type provisionRequest struct {
	PlaceID        string   `json:"place_id" validate:"required,max=255"`
	OwnerID        *string  `json:"owner_id" validate:"omitempty,uuid"`
	Differentiator *string  `json:"differentiator" validate:"omitempty,max=500"`
	ServiceAreas   []string `json:"service_areas" validate:"omitempty,max=20,dive,required,max=120"`
	WhatsApp       *string  `json:"whatsapp" validate:"omitempty,max=32"`
	Activate       bool     `json:"activate"`
}

func (r provisionRequest) toInput() (regeneration.ProvisionInput, error) {
	in := regeneration.ProvisionInput{
		PlaceID:  strings.TrimSpace(r.PlaceID),
		Activate: r.Activate,
	}
	if r.OwnerID != nil {
		id, err := uuid.Parse(*r.OwnerID)
		if err != nil {
			return in, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid owner_id")
		}
		in.OwnerID = &id
	}
	if r.Differentiator != nil {
		if v := validators.SanitizeString(*r.Differentiator, 500); v != "" {
			in.Differentiator = &v
		}
	}
	if r.WhatsApp != nil {
		if v := validators.SanitizeString(*r.WhatsApp, 32); v != "" {
			in.WhatsApp = &v
		}
	}
	for _, area := range r.ServiceAreas {
		if v := validators.SanitizeString(area, 120); v != "" {
			in.ServiceAreas = append(in.ServiceAreas, v)
		}
	}
	return in, nil
}

// AdminProvisionStorefront creates a storefront from a place id and runs
// the full sync.
func AdminProvisionStorefront(svc Provisioner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "provisioning unavailable"))
			return
		}

		var payload provisionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Provision(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, summary)
	}
}

func AdminGetStorefront(svc storefronts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := middleware.StorefrontIDFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "storefront id missing"))
			return
		}
		sf, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newStorefrontDTO(sf))
	}
}

func AdminListStorefronts(svc storefronts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.List(r.Context(), pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		resp := storefrontListResponse{Items: make([]storefrontDTO, 0, len(page.Items)), NextCursor: page.NextCursor}
		for i := range page.Items {
			resp.Items = append(resp.Items, newStorefrontDTO(&page.Items[i]))
		}
		responses.WriteSuccess(w, resp)
	}
}

// AdminRegenerateStorefront runs a synchronous regeneration and returns
// the run summary. Stage errors after the fetch are reported in the summary
// with a 200.
func AdminRegenerateStorefront(svc Regenerator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "regeneration unavailable"))
			return
		}
		id, ok := middleware.StorefrontIDFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "storefront id missing"))
			return
		}
		summary, err := svc.Regenerate(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
