package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/storefronts/api/middleware"
	"github.com/angelmondragon/storefronts/api/responses"
	"github.com/angelmondragon/storefronts/api/validators"
	"github.com/angelmondragon/storefronts/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefronts/pkg/errors"
	"github.com/angelmondragon/storefronts/pkg/logger"
)

const (
	imageIDParam      = "imageId"
	uploadFormField   = "file"
	uploadAltField    = "alt_text"
	multipartOverhead = 1 << 20
	multipartMemory   = 8 << 20
)

// ImageService is the operator image surface of the media pipeline.
type ImageService interface {
	List(ctx context.Context, storefrontID uuid.UUID) ([]models.StoreImage, error)
	Get(ctx context.Context, imageID uuid.UUID) (*models.StoreImage, error)
	UploadImage(ctx context.Context, storefrontID uuid.UUID, data []byte, alt string) (*models.StoreImage, error)
	PromoteToHero(ctx context.Context, imageID uuid.UUID) (*models.StoreImage, error)
	DeleteImage(ctx context.Context, imageID uuid.UUID) error
}

func AdminListImages(svc ImageService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storefrontID, ok := middleware.StorefrontIDFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "storefront id missing"))
			return
		}
		images, err := svc.List(r.Context(), storefrontID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]imageDTO, 0, len(images))
		for i := range images {
			out = append(out, newImageDTO(&images[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// AdminUploadImage accepts a multipart upload. The first image of a
// storefront becomes its hero.
func AdminUploadImage(svc ImageService, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storefrontID, ok := middleware.StorefrontIDFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "storefront id missing"))
			return
		}

		if maxBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)
		}
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			responses.WriteError(r.Context(), logg, w, uploadError(err))
			return
		}
		file, _, err := r.FormFile(uploadFormField)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file is required"))
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, uploadError(err))
			return
		}
		alt := validators.SanitizeString(r.FormValue(uploadAltField), 255)

		img, err := svc.UploadImage(r.Context(), storefrontID, data, alt)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newImageDTO(img))
	}
}

func AdminPromoteImage(svc ImageService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		imageID, err := ownedImage(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		img, err := svc.PromoteToHero(r.Context(), imageID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newImageDTO(img))
	}
}

func AdminDeleteImage(svc ImageService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		imageID, err := ownedImage(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteImage(r.Context(), imageID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// ownedImage resolves {imageId} and checks it belongs to the storefront in
// the route. Images of other storefronts read as not found.
func ownedImage(r *http.Request, svc ImageService) (uuid.UUID, error) {
	storefrontID, ok := middleware.StorefrontIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "storefront id missing")
	}
	imageID, err := uuid.Parse(chi.URLParam(r, imageIDParam))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid image id")
	}
	img, err := svc.Get(r.Context(), imageID)
	if err != nil {
		return uuid.Nil, err
	}
	if img.StorefrontID != storefrontID {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeNotFound, "image not found")
	}
	return imageID, nil
}

func uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return pkgerrors.Wrap(pkgerrors.CodePayloadTooLarge, err, "upload exceeds the size limit")
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart upload")
}
