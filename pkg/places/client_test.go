package places

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/storefronts/pkg/errors"
)

const detailsBody = `{
  "id": "place_123",
  "displayName": {"text": "Plomería Núñez"},
  "formattedAddress": "Av. Juárez 10, Centro, 64000 Monterrey, N.L., México",
  "location": {"latitude": 25.67, "longitude": -100.31},
  "addressComponents": [
    {"longText": "Monterrey", "shortText": "Monterrey", "types": ["locality", "political"]},
    {"longText": "Nuevo León", "shortText": "N.L.", "types": ["administrative_area_level_1"]},
    {"longText": "64000", "shortText": "64000", "types": ["postal_code"]}
  ],
  "nationalPhoneNumber": "81 1234 5678",
  "rating": 4.6,
  "userRatingCount": 87,
  "primaryType": "plumber",
  "primaryTypeDisplayName": {"text": "Plomero"},
  "regularOpeningHours": {
    "weekdayDescriptions": ["lunes: 9:00–18:00"],
    "periods": [{"open": {"day": 1, "hour": 9, "minute": 0}, "close": {"day": 1, "hour": 18, "minute": 0}}]
  },
  "photos": [{"name": "places/place_123/photos/AAA", "widthPx": 4032, "heightPx": 3024}],
  "reviews": [
    {"rating": 5, "text": {"text": "Excelente servicio"}, "authorAttribution": {"displayName": "Ana", "photoUri": "https://x/ana.jpg"}},
    {"rating": 4, "originalText": {"text": "Muy bien"}, "authorAttribution": {"displayName": "Luis"}}
  ]
}`

func TestGetPlaceDetailsRequestAndMapping(t *testing.T) {
	var captured *http.Request
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		captured = req
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(detailsBody)),
			Header:     http.Header{},
		}, nil
	})

	client, err := NewClient("test-key", WithBaseURL("http://places.test/v1"), WithHTTPClient(&http.Client{Transport: rt}), WithLanguage("es"))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	details, err := client.GetPlaceDetails(context.Background(), "place_123")
	if err != nil {
		t.Fatalf("get details: %v", err)
	}
	if got := captured.URL.String(); got != "http://places.test/v1/places/place_123?languageCode=es" {
		t.Fatalf("unexpected URL %q", got)
	}
	if captured.Header.Get("X-Goog-Api-Key") != "test-key" {
		t.Fatalf("api key header missing")
	}
	if captured.Header.Get("X-Goog-FieldMask") != detailsFieldMask {
		t.Fatalf("unexpected field mask %q", captured.Header.Get("X-Goog-FieldMask"))
	}

	if details.Name != "Plomería Núñez" || details.PrimaryTypeLabel != "Plomero" {
		t.Fatalf("unexpected identity %+v", details)
	}
	if details.City() != "Monterrey" || details.Component("postal_code") != "64000" {
		t.Fatalf("unexpected address components %+v", details.AddressComponents)
	}
	if details.Location == nil || details.Location.Latitude != 25.67 {
		t.Fatalf("unexpected location %+v", details.Location)
	}
	if details.Rating != 4.6 || details.UserRatingCount != 87 {
		t.Fatalf("unexpected rating %v/%d", details.Rating, details.UserRatingCount)
	}
	if len(details.OpeningHours.Periods) != 1 || details.OpeningHours.Periods[0].Close == nil || details.OpeningHours.Periods[0].Close.Hour != 18 {
		t.Fatalf("unexpected hours %+v", details.OpeningHours)
	}
	if len(details.Photos) != 1 || details.Photos[0].Name != "places/place_123/photos/AAA" {
		t.Fatalf("unexpected photos %+v", details.Photos)
	}
	if len(details.Reviews) != 2 || details.Reviews[0].AuthorName != "Ana" || details.Reviews[1].Text != "Muy bien" {
		t.Fatalf("unexpected reviews %+v", details.Reviews)
	}
}

func TestGetPlaceDetailsNotFoundMapsToNotFound(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusNotFound,
			Body:       io.NopCloser(strings.NewReader(`{"error":{"status":"NOT_FOUND"}}`)),
			Header:     http.Header{},
		}, nil
	})
	client, _ := NewClient("k", WithHTTPClient(&http.Client{Transport: rt}))

	_, err := client.GetPlaceDetails(context.Background(), "missing")
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetPlaceDetailsUpstreamFailureIsDependency(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusInternalServerError,
			Body:       io.NopCloser(strings.NewReader("boom")),
			Header:     http.Header{},
		}, nil
	})
	client, _ := NewClient("k", WithHTTPClient(&http.Client{Transport: rt}))

	_, err := client.GetPlaceDetails(context.Background(), "p")
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if _, err := client.GetPlaceDetails(context.Background(), "  "); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for blank id, got %v", err)
	}
}

func TestPhotoBytes(t *testing.T) {
	var capturedURL string
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader("image-bytes")),
			Header:     http.Header{"Content-Type": {"image/jpeg"}},
		}, nil
	})
	client, _ := NewClient("test-key", WithBaseURL("http://places.test/v1"), WithHTTPClient(&http.Client{Transport: rt}))

	data, contentType, err := client.PhotoBytes(context.Background(), "places/p/photos/AAA", 1920)
	if err != nil {
		t.Fatalf("photo bytes: %v", err)
	}
	if capturedURL != "http://places.test/v1/places/p/photos/AAA/media?key=test-key&maxWidthPx=1920" {
		t.Fatalf("unexpected URL %q", capturedURL)
	}
	if string(data) != "image-bytes" || contentType != "image/jpeg" {
		t.Fatalf("unexpected payload %q %q", data, contentType)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient("  "); err == nil {
		t.Fatal("expected error for empty api key")
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
