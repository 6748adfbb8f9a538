package gcs

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func staticToken() *tokenSource {
	return &tokenSource{fetch: func(context.Context) (string, time.Time, error) {
		return "token", time.Now().Add(time.Hour), nil
	}}
}

func TestPutUploadsMultipartAndReturnsPublicURL(t *testing.T) {
	t.Parallel()

	var gotMeta map[string]string
	var gotMedia []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/upload/storage/v1/b/bucket/o" || r.URL.Query().Get("uploadType") != "multipart" {
			t.Errorf("unexpected upload url %s", r.URL.String())
		}
		if r.Header.Get("Authorization") != "Bearer token" {
			t.Errorf("unexpected auth %q", r.Header.Get("Authorization"))
		}
		mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mediaType != "multipart/related" {
			t.Errorf("unexpected content type %q", r.Header.Get("Content-Type"))
			return
		}
		reader := multipart.NewReader(r.Body, params["boundary"])
		metaPart, err := reader.NextPart()
		if err != nil {
			t.Errorf("metadata part: %v", err)
			return
		}
		_ = json.NewDecoder(metaPart).Decode(&gotMeta)
		mediaPart, err := reader.NextPart()
		if err != nil {
			t.Errorf("media part: %v", err)
			return
		}
		gotMedia, _ = io.ReadAll(mediaPart)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"name":"x"}`))
	}))
	defer srv.Close()

	client := &Client{
		httpClient:    srv.Client(),
		apiBase:       srv.URL,
		defaultBucket: "bucket",
		publicBaseURL: "https://cdn.example.com",
		cacheControl:  "public, max-age=60",
		tokenSource:   staticToken(),
	}

	url, err := client.Put(context.Background(), "storefronts/abc/hero/deadbeef.jpg", []byte("jpeg-bytes"), "image/jpeg")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if url != "https://cdn.example.com/bucket/storefronts/abc/hero/deadbeef.jpg" {
		t.Fatalf("unexpected url %s", url)
	}
	if gotMeta["name"] != "storefronts/abc/hero/deadbeef.jpg" || gotMeta["contentType"] != "image/jpeg" || gotMeta["cacheControl"] != "public, max-age=60" {
		t.Fatalf("unexpected metadata %+v", gotMeta)
	}
	if string(gotMedia) != "jpeg-bytes" {
		t.Fatalf("unexpected media payload %q", gotMedia)
	}
}

func TestPutSurfacesUpstreamErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := &Client{httpClient: srv.Client(), apiBase: srv.URL, defaultBucket: "bucket", tokenSource: staticToken()}
	_, err := client.Put(context.Background(), "k.jpg", []byte("x"), "image/jpeg")
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("expected upstream error body in message, got %v", err)
	}
}

func TestPutRequiresKey(t *testing.T) {
	client := &Client{defaultBucket: "bucket", tokenSource: staticToken()}
	if _, err := client.Put(context.Background(), "", []byte("x"), "image/jpeg"); err == nil {
		t.Fatal("expected error for empty key")
	}
	if _, err := (&Client{}).Put(context.Background(), "k", nil, ""); err == nil {
		t.Fatal("expected error for uninitialized client")
	}
}

func TestDeleteObject(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{"deleted", http.StatusNoContent, false},
		{"missing", http.StatusNotFound, false},
		{"forbidden", http.StatusForbidden, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodDelete {
					t.Errorf("expected DELETE, got %s", r.Method)
				}
				if !strings.HasPrefix(r.URL.EscapedPath(), "/storage/v1/b/bucket/o/") {
					t.Errorf("unexpected path %s", r.URL.EscapedPath())
				}
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			client := &Client{httpClient: srv.Client(), apiBase: srv.URL, defaultBucket: "bucket", tokenSource: staticToken()}
			err := client.DeleteObject(context.Background(), "storefronts/a/gallery/b.jpg")
			if (err != nil) != tc.wantErr {
				t.Fatalf("wantErr=%v got %v", tc.wantErr, err)
			}
		})
	}
}

func TestPublicURLDefaultsToStorageHost(t *testing.T) {
	client := &Client{defaultBucket: "bucket"}
	if got := client.PublicURL("/a/b.jpg"); got != "https://storage.googleapis.com/bucket/a/b.jpg" {
		t.Fatalf("unexpected url %s", got)
	}
}

func TestServiceAccountTokenSourceSignsAssertion(t *testing.T) {
	t.Parallel()

	key := mustGenerateKey(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		assertion := r.PostForm.Get("assertion")
		parsed, err := jwt.Parse(assertion, func(*jwt.Token) (any, error) {
			return &key.PublicKey, nil
		}, jwt.WithValidMethods([]string{"RS256"}))
		if err != nil || parsed == nil || !parsed.Valid {
			t.Errorf("assertion did not verify: %v", err)
			http.Error(w, "bad assertion", http.StatusBadRequest)
			return
		}
		claims, _ := parsed.Claims.(jwt.MapClaims)
		if claims["iss"] != "signer@example.com" || claims["scope"] != scope {
			t.Errorf("unexpected claims %+v", claims)
		}
		_, _ = w.Write([]byte(`{"access_token":"abc","expires_in":3600}`))
	}))
	defer srv.Close()

	pemKey := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	creds, _ := json.Marshal(map[string]string{
		"client_email": "signer@example.com",
		"private_key":  string(pemKey),
		"token_uri":    srv.URL,
	})

	ts, err := newServiceAccountTokenSource(srv.Client(), string(creds))
	if err != nil {
		t.Fatalf("token source: %v", err)
	}
	token, err := ts.Token(context.Background())
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if token != "abc" {
		t.Fatalf("unexpected token %s", token)
	}
}

func TestServiceAccountTokenSourceRejectsBadCredentials(t *testing.T) {
	if _, err := newServiceAccountTokenSource(http.DefaultClient, `{"client_email":""}`); err == nil {
		t.Fatal("expected error for missing fields")
	}
	if _, err := newServiceAccountTokenSource(http.DefaultClient, `{"client_email":"a","private_key":"nope"}`); err == nil {
		t.Fatal("expected error for invalid key")
	}
}

func mustGenerateKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}
	return key
}
