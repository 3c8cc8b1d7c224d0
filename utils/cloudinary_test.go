package utils

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sethshivam11/project-store-backend/models"
	"github.com/sony/gobreaker"
)

func newTestClient(baseURL string, httpClient *http.Client) *CloudinaryClient {
	return &CloudinaryClient{
		HTTPClient:   httpClient,
		Breaker:      gobreaker.NewCircuitBreaker(gobreaker.Settings{Name: "test-cb"}),
		BaseURL:      baseURL,
		CloudName:    "demo",
		APIKey:       "key",
		APISecret:    "secret",
		UploadPreset: "project-store",
	}
}

func TestPublicIDFromURL(t *testing.T) {
	client := newTestClient("", nil)

	tests := []struct {
		url  string
		want string
	}{
		{
			"https://res.cloudinary.com/demo/image/upload/v123/project-store/avatars/abc.png",
			"project-store/avatars/abc",
		},
		{
			"https://res.cloudinary.com/demo/image/upload/project-store/xyz.jpg",
			"project-store/xyz",
		},
		{
			"https://res.cloudinary.com/demo/image/upload/elsewhere/xyz.jpg",
			"",
		},
	}

	for _, tt := range tests {
		if got := client.publicIDFromURL(tt.url); got != tt.want {
			t.Errorf("publicIDFromURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if !strings.HasSuffix(r.URL.Path, "/demo/auto/upload") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if preset := r.FormValue("upload_preset"); preset != "project-store" {
			t.Errorf("upload_preset = %q", preset)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"secure_url": "https://res.cloudinary.com/demo/image/upload/project-store/abc.png",
		})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, srv.Client())

	url, err := client.Upload(context.Background(), "abc.png", strings.NewReader("fake image bytes"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if url != "https://res.cloudinary.com/demo/image/upload/project-store/abc.png" {
		t.Errorf("url = %q", url)
	}
}

func TestUploadSurfacesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, srv.Client())

	if _, err := client.Upload(context.Background(), "abc.png", strings.NewReader("x")); err == nil {
		t.Error("Upload succeeded against failing server")
	}
}

func TestDelete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/demo/image/destroy") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.FormValue("public_id"); got != "project-store/abc" {
			t.Errorf("public_id = %q", got)
		}
		if r.FormValue("signature") == "" {
			t.Error("signature missing")
		}
		json.NewEncoder(w).Encode(map[string]string{"result": "ok"})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, srv.Client())

	err := client.Delete(context.Background(), "https://res.cloudinary.com/demo/image/upload/project-store/abc.png")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestDeleteSkipsDefaultAvatar(t *testing.T) {
	// Must not reach the network at all.
	client := newTestClient("http://127.0.0.1:0", nil)

	if err := client.Delete(context.Background(), models.DefaultAvatar); err != nil {
		t.Errorf("Delete(default avatar) = %v, want nil", err)
	}
	if err := client.Delete(context.Background(), ""); err != nil {
		t.Errorf("Delete(empty) = %v, want nil", err)
	}
}
