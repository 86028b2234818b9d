package media_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/costa-brava-bikers/clubhouse-api/internal/app/media"
	"github.com/costa-brava-bikers/clubhouse-api/internal/ports/out/imagehost"
)

// Minimal PNG signature + IHDR chunk header, enough for content sniffing.
var pngBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x02, 0x00, 0x00, 0x00,
}

type fakeHost struct {
	url   string
	err   error
	calls int
	last  imagehost.Image
}

func (f *fakeHost) Upload(_ context.Context, img imagehost.Image) (string, error) {
	f.calls++
	f.last = img
	return f.url, f.err
}

func TestUpload_Success(t *testing.T) {
	t.Parallel()

	host := &fakeHost{url: "https://i.ibb.co/abc/bike.png"}
	svc := media.NewService(host, nil)

	got := svc.Upload(context.Background(), "bike.png", pngBytes)
	if !got.Success || got.URL != "https://i.ibb.co/abc/bike.png" || got.Error != "" {
		t.Fatalf("Upload()=%+v", got)
	}
	if host.last.Filename != "bike.png" || !bytes.Equal(host.last.Data, pngBytes) {
		t.Fatalf("host received %+v", host.last)
	}
}

func TestUpload_NotConfigured(t *testing.T) {
	t.Parallel()

	got := media.NewService(nil, nil).Upload(context.Background(), "bike.png", pngBytes)
	if got.Success || got.Error != media.MsgNotConfigured {
		t.Fatalf("Upload()=%+v", got)
	}
}

func TestUpload_RejectsNonImage(t *testing.T) {
	t.Parallel()

	host := &fakeHost{url: "x"}
	svc := media.NewService(host, nil)
	for _, data := range [][]byte{nil, []byte("just some text"), []byte("%PDF-1.4\n")} {
		if got := svc.Upload(context.Background(), "f", data); got.Error != media.MsgInvalidImage {
			t.Fatalf("Upload(%q)=%+v", data, got)
		}
	}
	if host.calls != 0 {
		t.Fatalf("host called %d times for invalid input", host.calls)
	}
}

func TestUpload_RejectsOversized(t *testing.T) {
	t.Parallel()

	data := make([]byte, media.MaxImageBytes+1)
	copy(data, pngBytes)
	host := &fakeHost{url: "x"}

	got := media.NewService(host, nil).Upload(context.Background(), "big.png", data)
	if got.Error != media.MsgTooLarge || host.calls != 0 {
		t.Fatalf("Upload()=%+v calls=%d", got, host.calls)
	}
}

func TestUpload_HostFailures(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		host *fakeHost
		want string
	}{
		{"rejected with message", &fakeHost{err: &imagehost.RejectedError{Message: "Invalid API v1 key."}}, "Invalid API v1 key."},
		{"rejected without message", &fakeHost{err: &imagehost.RejectedError{}}, media.MsgUploadFailed},
		{"no url", &fakeHost{}, media.MsgUploadFailed},
		{"transport", &fakeHost{err: errors.New("dial tcp: refused")}, media.MsgNetworkError},
		{"unconfigured host", &fakeHost{err: imagehost.ErrNotConfigured}, media.MsgNotConfigured},
	}
	for _, tc := range cases {
		got := media.NewService(tc.host, nil).Upload(context.Background(), "a.png", pngBytes)
		if got.Success || got.Error != tc.want {
			t.Fatalf("%s: Upload()=%+v, want error %q", tc.name, got, tc.want)
		}
	}
}
