package controllers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/storefronts/api/middleware"
	"github.com/angelmondragon/storefronts/pkg/db/models"
	"github.com/angelmondragon/storefronts/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefronts/pkg/errors"
)

type stubImageService struct {
	images   map[uuid.UUID]*models.StoreImage
	uploaded []byte
	alt      string
	promoted uuid.UUID
	deleted  uuid.UUID
}

func (s *stubImageService) List(ctx context.Context, storefrontID uuid.UUID) ([]models.StoreImage, error) {
	var out []models.StoreImage
	for _, img := range s.images {
		if img.StorefrontID == storefrontID {
			out = append(out, *img)
		}
	}
	return out, nil
}

func (s *stubImageService) Get(ctx context.Context, imageID uuid.UUID) (*models.StoreImage, error) {
	img, ok := s.images[imageID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "image not found")
	}
	return img, nil
}

func (s *stubImageService) UploadImage(ctx context.Context, storefrontID uuid.UUID, data []byte, alt string) (*models.StoreImage, error) {
	s.uploaded = data
	s.alt = alt
	return &models.StoreImage{ID: uuid.New(), StorefrontID: storefrontID, Role: enums.ImageRoleHero}, nil
}

func (s *stubImageService) PromoteToHero(ctx context.Context, imageID uuid.UUID) (*models.StoreImage, error) {
	s.promoted = imageID
	img := *s.images[imageID]
	img.Role = enums.ImageRoleHero
	img.Order = 0
	return &img, nil
}

func (s *stubImageService) DeleteImage(ctx context.Context, imageID uuid.UUID) error {
	s.deleted = imageID
	return nil
}

func imageRouter(svc ImageService, maxBytes int64) http.Handler {
	r := chi.NewRouter()
	r.Route("/storefronts/{storefrontId}/images", func(r chi.Router) {
		r.Use(middleware.StorefrontContext(nil))
		r.Get("/", AdminListImages(svc, nil))
		r.Post("/", AdminUploadImage(svc, maxBytes, nil))
		r.Post("/{imageId}/promote", AdminPromoteImage(svc, nil))
		r.Delete("/{imageId}", AdminDeleteImage(svc, nil))
	})
	return r
}

func multipartBody(t *testing.T, data []byte, alt string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "photo.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.WriteField("alt_text", alt); err != nil {
		t.Fatalf("write field: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestAdminUploadImage(t *testing.T) {
	storefrontID := uuid.New()

	t.Run("success", func(t *testing.T) {
		svc := &stubImageService{}
		body, contentType := multipartBody(t, []byte("image-bytes"), "  Fachada  ")
		req := httptest.NewRequest(http.MethodPost, "/storefronts/"+storefrontID.String()+"/images", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		imageRouter(svc, 1<<20).ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if string(svc.uploaded) != "image-bytes" || svc.alt != "Fachada" {
			t.Fatalf("unexpected upload %q alt %q", svc.uploaded, svc.alt)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		svc := &stubImageService{}
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		_ = mw.WriteField("alt_text", "x")
		_ = mw.Close()
		req := httptest.NewRequest(http.MethodPost, "/storefronts/"+storefrontID.String()+"/images", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()
		imageRouter(svc, 1<<20).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("body over limit", func(t *testing.T) {
		svc := &stubImageService{}
		body, contentType := multipartBody(t, bytes.Repeat([]byte("a"), 3<<20), "big")
		req := httptest.NewRequest(http.MethodPost, "/storefronts/"+storefrontID.String()+"/images", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		imageRouter(svc, 1024).ServeHTTP(rec, req)
		if rec.Code != http.StatusRequestEntityTooLarge {
			t.Fatalf("expected 413, got %d", rec.Code)
		}
		if svc.uploaded != nil {
			t.Fatalf("service must not be called")
		}
	})
}

func TestAdminImageOwnership(t *testing.T) {
	storefrontID := uuid.New()
	other := uuid.New()
	own := &models.StoreImage{ID: uuid.New(), StorefrontID: storefrontID, Role: enums.ImageRoleGallery, Order: 2}
	foreign := &models.StoreImage{ID: uuid.New(), StorefrontID: other, Role: enums.ImageRoleGallery, Order: 1}
	svc := &stubImageService{images: map[uuid.UUID]*models.StoreImage{own.ID: own, foreign.ID: foreign}}
	base := "/storefronts/" + storefrontID.String() + "/images/"

	rec := httptest.NewRecorder()
	imageRouter(svc, 0).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, base+own.ID.String()+"/promote", nil))
	if rec.Code != http.StatusOK || svc.promoted != own.ID {
		t.Fatalf("expected promote of own image, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	imageRouter(svc, 0).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, base+foreign.ID.String()+"/promote", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign image, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	imageRouter(svc, 0).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, base+"not-a-uuid", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	imageRouter(svc, 0).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, base+foreign.ID.String(), nil))
	if rec.Code != http.StatusNotFound || svc.deleted != uuid.Nil {
		t.Fatalf("expected foreign delete refused, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	imageRouter(svc, 0).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, base+own.ID.String(), nil))
	if rec.Code != http.StatusNoContent || svc.deleted != own.ID {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestAdminListImages(t *testing.T) {
	storefrontID := uuid.New()
	img := &models.StoreImage{ID: uuid.New(), StorefrontID: storefrontID, Role: enums.ImageRoleHero, URL: "https://cdn.test/a.jpg"}
	svc := &stubImageService{images: map[uuid.UUID]*models.StoreImage{img.ID: img}}

	rec := httptest.NewRecorder()
	imageRouter(svc, 0).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/storefronts/"+storefrontID.String()+"/images", nil))
	if rec.Code != http.StatusOK || !bytes.Contains(rec.Body.Bytes(), []byte("https://cdn.test/a.jpg")) {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}
