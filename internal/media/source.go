package media

import (
	"context"
	"fmt"

	pkgerrors "github.com/angelmondragon/storefronts/pkg/errors"
)

// Source yields the original bytes of one image.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	// ExternalRef is the directory photo reference, or nil for operator uploads.
	ExternalRef() *string
	AltText() string
}

// PhotoFetcher downloads directory photos.
type PhotoFetcher interface {
	PhotoBytes(ctx context.Context, photoName string, maxWidth int) ([]byte, string, error)
}

// PlacePhotoSource is a photo hosted by the business directory.
type PlacePhotoSource struct {
	Fetcher  PhotoFetcher
	Name     string
	MaxWidth int
	Alt      string
}

func (s PlacePhotoSource) Fetch(ctx context.Context) ([]byte, error) {
	if s.Fetcher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "photo fetcher not configured")
	}
	data, _, err := s.Fetcher.PhotoBytes(ctx, s.Name, s.MaxWidth)
	if err != nil {
		return nil, err
	}
	if _, err := sniffImageType(data); err != nil {
		return nil, err
	}
	return data, nil
}

func (s PlacePhotoSource) ExternalRef() *string {
	ref := s.Name
	return &ref
}

func (s PlacePhotoSource) AltText() string {
	return s.Alt
}

// UploadSource is an operator-supplied file.
type UploadSource struct {
	Data     []byte
	Alt      string
	MaxBytes int64
}

func (s UploadSource) Fetch(context.Context) ([]byte, error) {
	if s.MaxBytes > 0 && int64(len(s.Data)) > s.MaxBytes {
		return nil, pkgerrors.New(pkgerrors.CodePayloadTooLarge, fmt.Sprintf("image exceeds %d bytes", s.MaxBytes))
	}
	if _, err := sniffImageType(s.Data); err != nil {
		return nil, err
	}
	return s.Data, nil
}

func (s UploadSource) ExternalRef() *string {
	return nil
}

func (s UploadSource) AltText() string {
	return s.Alt
}
