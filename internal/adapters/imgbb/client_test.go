package imgbb

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/costa-brava-bikers/clubhouse-api/internal/ports/out/imagehost"
)

func TestUpload_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
		}
		if r.FormValue("key") != "k-1" {
			t.Errorf("key=%q", r.FormValue("key"))
		}
		f, hdr, err := r.FormFile("image")
		if err != nil {
			t.Errorf("FormFile: %v", err)
		} else {
			b, _ := io.ReadAll(f)
			if string(b) != "PNGDATA" || hdr.Filename != "ride.png" {
				t.Errorf("file=%q name=%q", b, hdr.Filename)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"url":"https://i.ibb.co/abc/ride.png","display_url":"https://ibb.co/abc"},"success":true,"status":200}`))
	}))
	defer srv.Close()

	c := New(Options{APIKey: "k-1", UploadURL: srv.URL})
	got, err := c.Upload(context.Background(), imagehost.Image{Filename: "ride.png", Data: []byte("PNGDATA")})
	if err != nil {
		t.Fatalf("Upload() err=%v", err)
	}
	if got != "https://i.ibb.co/abc/ride.png" {
		t.Fatalf("Upload()=%q", got)
	}
}

func TestUpload_Rejected(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status_code":400,"error":{"message":"Invalid API v1 key.","code":100},"status_txt":"Bad Request","success":false}`))
	}))
	defer srv.Close()

	_, err := New(Options{APIKey: "bad", UploadURL: srv.URL}).Upload(context.Background(), imagehost.Image{Data: []byte("x")})
	var rej *imagehost.RejectedError
	if !errors.As(err, &rej) || rej.Message != "Invalid API v1 key." {
		t.Fatalf("Upload() err=%v, want rejection with host message", err)
	}
}

func TestUpload_NonJSONReplyIsTransportError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		h    http.HandlerFunc
	}{
		{"html error page", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("<html><body>502 Bad Gateway</body></html>"))
		}},
		{"empty reply", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(tt.h)
			defer srv.Close()

			_, err := New(Options{APIKey: "k", UploadURL: srv.URL}).Upload(context.Background(), imagehost.Image{Data: []byte("x")})
			var rej *imagehost.RejectedError
			if err == nil || errors.As(err, &rej) {
				t.Fatalf("Upload() err=%v, want transport error", err)
			}
		})
	}
}

func TestUpload_NotConfigured(t *testing.T) {
	t.Parallel()

	_, err := New(Options{}).Upload(context.Background(), imagehost.Image{Data: []byte("x")})
	if !errors.Is(err, imagehost.ErrNotConfigured) {
		t.Fatalf("Upload() err=%v", err)
	}
}

func TestUpload_TransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := New(Options{APIKey: "k", UploadURL: addr}).Upload(context.Background(), imagehost.Image{Data: []byte("x")})
	var rej *imagehost.RejectedError
	if err == nil || errors.As(err, &rej) {
		t.Fatalf("Upload() err=%v, want transport error", err)
	}
}
