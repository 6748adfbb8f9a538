package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefronts/api/middleware"
	"github.com/angelmondragon/storefronts/internal/regeneration"
	"github.com/angelmondragon/storefronts/pkg/db/models"
	"github.com/angelmondragon/storefronts/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefronts/pkg/errors"
	"github.com/angelmondragon/storefronts/pkg/logger"
	"github.com/angelmondragon/storefronts/pkg/pagination"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

type stubProvisioner struct {
	in  regeneration.ProvisionInput
	err error
}

func (s *stubProvisioner) Provision(ctx context.Context, in regeneration.ProvisionInput) (*regeneration.Summary, error) {
	s.in = in
	if s.err != nil {
		return nil, s.err
	}
	return &regeneration.Summary{StorefrontID: uuid.New(), Slug: "plomeria-nunez", Stage: enums.StageDone}, nil
}

type stubRegenerator struct {
	id  uuid.UUID
	err error
}

func (s *stubRegenerator) Regenerate(ctx context.Context, id uuid.UUID) (*regeneration.Summary, error) {
	s.id = id
	if s.err != nil {
		return nil, s.err
	}
	return &regeneration.Summary{StorefrontID: id, Stage: enums.StageDone}, nil
}

type stubStorefrontService struct {
	sf     *models.Storefront
	page   pagination.Page[models.Storefront]
	params pagination.Params
}

func (s *stubStorefrontService) Get(ctx context.Context, id uuid.UUID) (*models.Storefront, error) {
	if s.sf == nil || s.sf.ID != id {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "storefront not found")
	}
	return s.sf, nil
}

func (s *stubStorefrontService) List(ctx context.Context, params pagination.Params) (pagination.Page[models.Storefront], error) {
	s.params = params
	return s.page, nil
}

func TestAdminProvisionStorefront(t *testing.T) {
	logg := testLogger()

	t.Run("missing place id", func(t *testing.T) {
		stub := &stubProvisioner{}
		req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/storefronts", strings.NewReader(`{"activate":true}`))
		rec := httptest.NewRecorder()
		AdminProvisionStorefront(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "place_id") {
			t.Fatalf("expected field name in details: %s", rec.Body.String())
		}
	})

	t.Run("invalid owner id", func(t *testing.T) {
		stub := &stubProvisioner{}
		req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/storefronts", strings.NewReader(`{"place_id":"abc","owner_id":"nope"}`))
		rec := httptest.NewRecorder()
		AdminProvisionStorefront(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		stub := &stubProvisioner{}
		body := `{"place_id":" ChIJ123 ","differentiator":"  24/7  ","service_areas":["Centro"," "],"activate":true}`
		req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/storefronts", strings.NewReader(body))
		rec := httptest.NewRecorder()
		AdminProvisionStorefront(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.in.PlaceID != "ChIJ123" || !stub.in.Activate {
			t.Fatalf("unexpected input %+v", stub.in)
		}
		if stub.in.Differentiator == nil || *stub.in.Differentiator != "24/7" {
			t.Fatalf("expected trimmed differentiator")
		}
		if len(stub.in.ServiceAreas) != 1 || stub.in.ServiceAreas[0] != "Centro" {
			t.Fatalf("expected blank service areas dropped, got %v", stub.in.ServiceAreas)
		}
	})

	t.Run("conflict", func(t *testing.T) {
		stub := &stubProvisioner{err: pkgerrors.New(pkgerrors.CodeConflict, "place already linked")}
		req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/storefronts", strings.NewReader(`{"place_id":"abc"}`))
		rec := httptest.NewRecorder()
		AdminProvisionStorefront(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})
}

func TestAdminGetStorefront(t *testing.T) {
	rating := decimal.RequireFromString("4.6")
	sf := &models.Storefront{ID: uuid.New(), Slug: "plomeria-nunez", Name: "Plomería Núñez", ExternalRating: &rating}
	svc := &stubStorefrontService{sf: sf}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(middleware.WithStorefrontID(req.Context(), sf.ID))
	rec := httptest.NewRecorder()
	AdminGetStorefront(svc, testLogger()).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Data storefrontDTO `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Slug != "plomeria-nunez" || resp.Data.ExternalRating == nil || *resp.Data.ExternalRating != 4.6 {
		t.Fatalf("unexpected body %+v", resp.Data)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(middleware.WithStorefrontID(req.Context(), uuid.New()))
	rec = httptest.NewRecorder()
	AdminGetStorefront(svc, testLogger()).ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAdminListStorefronts(t *testing.T) {
	svc := &stubStorefrontService{page: pagination.Page[models.Storefront]{
		Items:      []models.Storefront{{ID: uuid.New(), Slug: "a"}},
		NextCursor: "next",
	}}

	req := httptest.NewRequest(http.MethodGet, "/?limit=10&cursor=abc", nil)
	rec := httptest.NewRecorder()
	AdminListStorefronts(svc, testLogger()).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.params.Limit != 10 || svc.params.Cursor != "abc" {
		t.Fatalf("unexpected params %+v", svc.params)
	}
	if !strings.Contains(rec.Body.String(), `"next_cursor":"next"`) {
		t.Fatalf("expected next cursor in body: %s", rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/?limit=1000", nil)
	rec = httptest.NewRecorder()
	AdminListStorefronts(svc, testLogger()).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for out of range limit, got %d", rec.Code)
	}
}

func TestAdminRegenerateStorefront(t *testing.T) {
	id := uuid.New()

	t.Run("success", func(t *testing.T) {
		stub := &stubRegenerator{}
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req = req.WithContext(middleware.WithStorefrontID(req.Context(), id))
		rec := httptest.NewRecorder()
		AdminRegenerateStorefront(stub, testLogger()).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK || stub.id != id {
			t.Fatalf("expected 200 for %s, got %d", id, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"stage":"done"`) {
			t.Fatalf("expected summary stage in body: %s", rec.Body.String())
		}
	})

	t.Run("run in progress", func(t *testing.T) {
		stub := &stubRegenerator{err: pkgerrors.New(pkgerrors.CodeConflict, "regeneration already running")}
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req = req.WithContext(middleware.WithStorefrontID(req.Context(), id))
		rec := httptest.NewRecorder()
		AdminRegenerateStorefront(stub, testLogger()).ServeHTTP(rec, req)
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})

	t.Run("directory failure", func(t *testing.T) {
		stub := &stubRegenerator{err: pkgerrors.New(pkgerrors.CodeDependency, "places unavailable")}
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req = req.WithContext(middleware.WithStorefrontID(req.Context(), id))
		rec := httptest.NewRecorder()
		AdminRegenerateStorefront(stub, testLogger()).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadGateway {
			t.Fatalf("expected 502, got %d", rec.Code)
		}
	})
}
