package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/storefronts/pkg/errors"
)

const (
	defaultBaseURL   = "https://places.googleapis.com/v1"
	detailsFieldMask = "id,displayName,formattedAddress,location,addressComponents," +
		"nationalPhoneNumber,internationalPhoneNumber,websiteUri,rating,userRatingCount," +
		"primaryType,primaryTypeDisplayName,regularOpeningHours,photos,reviews"
	requestBodyReadLimit int64 = 1024
	maxPhotoBytes        int64 = 20 << 20
)

var (
	errAPIKeyRequired = errors.New("google places api key is required")
)

// Client wraps the Google Places API (New) endpoints used to ingest a business.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	languageCode string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured Places base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithLanguage sets the languageCode used for localized fields and reviews.
func WithLanguage(code string) Option {
	return func(c *Client) {
		c.languageCode = strings.TrimSpace(code)
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 && c.httpClient != nil {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient builds the Places client given an API key.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	trimmedKey := strings.TrimSpace(apiKey)
	if trimmedKey == "" {
		return nil, errAPIKeyRequired
	}

	client := &Client{
		apiKey:     trimmedKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if client.baseURL == "" {
		client.baseURL = defaultBaseURL
	}

	return client, nil
}

// PlaceDetails is the normalized business record returned by the directory.
type PlaceDetails struct {
	PlaceID            string
	Name               string
	FormattedAddress   string
	Location           *LatLng
	AddressComponents  []AddressComponent
	Phone              string
	InternationalPhone string
	Website            string
	Rating             float64
	UserRatingCount    int
	PrimaryType        string
	PrimaryTypeLabel   string
	OpeningHours       OpeningHours
	Photos             []Photo
	Reviews            []Review
}

// LatLng is the latitude/longitude pair returned by Google.
type LatLng struct {
	Latitude  float64
	Longitude float64
}

// AddressComponent mirrors Google's address component payload.
type AddressComponent struct {
	LongName  string
	ShortName string
	Types     []string
}

// OpeningHours holds the regular weekly schedule.
type OpeningHours struct {
	WeekdayDescriptions []string
	Periods             []Period
}

// Period is one open interval. Day is 0 (Sunday) .. 6.
type Period struct {
	OpenDay    int
	OpenHour   int
	OpenMinute int
	// Close is nil for places open 24 hours.
	Close *PeriodPoint
}

// PeriodPoint is a day/time boundary of a Period.
type PeriodPoint struct {
	Day    int
	Hour   int
	Minute int
}

// Photo references a directory photo; Name feeds PhotoBytes.
type Photo struct {
	Name     string
	WidthPx  int
	HeightPx int
}

// Review is a single public review.
type Review struct {
	AuthorName     string
	AuthorPhotoURI string
	Rating         int
	Text           string
	PublishedAt    string
}

// Component returns the long name of the first component tagged with typ.
func (p *PlaceDetails) Component(typ string) string {
	if p == nil {
		return ""
	}
	for _, comp := range p.AddressComponents {
		for _, t := range comp.Types {
			if t == typ {
				return comp.LongName
			}
		}
	}
	return ""
}

// City prefers the locality and falls back to the second-level admin area.
func (p *PlaceDetails) City() string {
	if city := p.Component("locality"); city != "" {
		return city
	}
	return p.Component("administrative_area_level_2")
}

// GetPlaceDetails fetches the business record for placeID.
func (c *Client) GetPlaceDetails(ctx context.Context, placeID string) (*PlaceDetails, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "places client not configured")
	}
	trimmed := strings.TrimSpace(placeID)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "place ID is required")
	}

	endpoint := c.buildURL("places/" + url.PathEscape(trimmed))
	if c.languageCode != "" {
		endpoint += "?languageCode=" + url.QueryEscape(c.languageCode)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build place details request")
	}

	httpReq.Header.Set("X-Goog-Api-Key", c.apiKey)
	httpReq.Header.Set("X-Goog-FieldMask", detailsFieldMask)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute place details request")
	}
	defer func() { _ = resp.Body.Close() }()

	if err := statusError(resp, "place details request failed"); err != nil {
		return nil, err
	}

	var apiResp placeResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode place details response")
	}
	return apiResp.toDetails(), nil
}

// PhotoBytes downloads a directory photo scaled to at most maxWidth pixels.
// It returns the raw bytes and the content type reported by the CDN.
func (c *Client) PhotoBytes(ctx context.Context, photoName string, maxWidth int) ([]byte, string, error) {
	if c == nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeDependency, "places client not configured")
	}
	trimmed := strings.Trim(strings.TrimSpace(photoName), "/")
	if trimmed == "" {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "photo name is required")
	}
	if maxWidth <= 0 {
		maxWidth = 1920
	}

	q := url.Values{}
	q.Set("maxWidthPx", strconv.Itoa(maxWidth))
	q.Set("key", c.apiKey)
	endpoint := c.buildURL(trimmed+"/media") + "?" + q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build photo request")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute photo request")
	}
	defer func() { _ = resp.Body.Close() }()

	if err := statusError(resp, "photo request failed"); err != nil {
		return nil, "", err
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes+1))
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read photo body")
	}
	if int64(len(data)) > maxPhotoBytes {
		return nil, "", pkgerrors.New(pkgerrors.CodePayloadTooLarge, "photo exceeds download limit")
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func statusError(resp *http.Response, message string) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, requestBodyReadLimit))
	cause := fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	if resp.StatusCode == http.StatusNotFound {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, cause, message)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, cause, message)
}

func (c *Client) buildURL(path string) string {
	trimmed := strings.TrimRight(c.baseURL, "/")
	path = strings.TrimLeft(path, "/")
	return fmt.Sprintf("%s/%s", trimmed, path)
}

type localizedText struct {
	Text string `json:"text"`
}

type periodPoint struct {
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

type placeResponse struct {
	ID               string        `json:"id"`
	DisplayName      localizedText `json:"displayName"`
	FormattedAddress string        `json:"formattedAddress"`
	Location         *struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location"`
	AddressComponents []struct {
		LongName  string   `json:"longText"`
		ShortName string   `json:"shortText"`
		Types     []string `json:"types"`
	} `json:"addressComponents"`
	NationalPhoneNumber      string        `json:"nationalPhoneNumber"`
	InternationalPhoneNumber string        `json:"internationalPhoneNumber"`
	WebsiteURI               string        `json:"websiteUri"`
	Rating                   float64       `json:"rating"`
	UserRatingCount          int           `json:"userRatingCount"`
	PrimaryType              string        `json:"primaryType"`
	PrimaryTypeDisplayName   localizedText `json:"primaryTypeDisplayName"`
	RegularOpeningHours      *struct {
		WeekdayDescriptions []string `json:"weekdayDescriptions"`
		Periods             []struct {
			Open  periodPoint  `json:"open"`
			Close *periodPoint `json:"close"`
		} `json:"periods"`
	} `json:"regularOpeningHours"`
	Photos []struct {
		Name     string `json:"name"`
		WidthPx  int    `json:"widthPx"`
		HeightPx int    `json:"heightPx"`
	} `json:"photos"`
	Reviews []struct {
		Rating            int           `json:"rating"`
		Text              localizedText `json:"text"`
		OriginalText      localizedText `json:"originalText"`
		PublishTime       string        `json:"publishTime"`
		AuthorAttribution struct {
			DisplayName string `json:"displayName"`
			PhotoURI    string `json:"photoUri"`
		} `json:"authorAttribution"`
	} `json:"reviews"`
}

func (r placeResponse) toDetails() *PlaceDetails {
	details := &PlaceDetails{
		PlaceID:            r.ID,
		Name:               r.DisplayName.Text,
		FormattedAddress:   r.FormattedAddress,
		Phone:              r.NationalPhoneNumber,
		InternationalPhone: r.InternationalPhoneNumber,
		Website:            r.WebsiteURI,
		Rating:             r.Rating,
		UserRatingCount:    r.UserRatingCount,
		PrimaryType:        r.PrimaryType,
		PrimaryTypeLabel:   r.PrimaryTypeDisplayName.Text,
	}
	if r.Location != nil {
		details.Location = &LatLng{Latitude: r.Location.Latitude, Longitude: r.Location.Longitude}
	}

	details.AddressComponents = make([]AddressComponent, 0, len(r.AddressComponents))
	for _, comp := range r.AddressComponents {
		details.AddressComponents = append(details.AddressComponents, AddressComponent{
			LongName:  comp.LongName,
			ShortName: comp.ShortName,
			Types:     comp.Types,
		})
	}

	if r.RegularOpeningHours != nil {
		details.OpeningHours.WeekdayDescriptions = r.RegularOpeningHours.WeekdayDescriptions
		for _, p := range r.RegularOpeningHours.Periods {
			period := Period{OpenDay: p.Open.Day, OpenHour: p.Open.Hour, OpenMinute: p.Open.Minute}
			if p.Close != nil {
				period.Close = &PeriodPoint{Day: p.Close.Day, Hour: p.Close.Hour, Minute: p.Close.Minute}
			}
			details.OpeningHours.Periods = append(details.OpeningHours.Periods, period)
		}
	}

	for _, photo := range r.Photos {
		details.Photos = append(details.Photos, Photo{Name: photo.Name, WidthPx: photo.WidthPx, HeightPx: photo.HeightPx})
	}

	for _, rev := range r.Reviews {
		text := rev.Text.Text
		if text == "" {
			text = rev.OriginalText.Text
		}
		details.Reviews = append(details.Reviews, Review{
			AuthorName:     rev.AuthorAttribution.DisplayName,
			AuthorPhotoURI: rev.AuthorAttribution.PhotoURI,
			Rating:         rev.Rating,
			Text:           text,
			PublishedAt:    rev.PublishTime,
		})
	}
	return details
}
