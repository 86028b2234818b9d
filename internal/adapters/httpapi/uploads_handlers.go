package httpapi

import (
	"errors"
	"net/http"

	"github.com/costa-brava-bikers/clubhouse-api/internal/app/media"
)

// multipartMemory is how much of an upload is buffered before spilling to disk.
const multipartMemory = 8 << 20

func (s *Server) UploadImage(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireCaller(w, r); !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, media.MaxImageBytes+(1<<20))
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeJSON(w, http.StatusRequestEntityTooLarge, media.UploadResult{Error: media.MsgTooLarge})
			return
		}
		writeJSON(w, http.StatusUnprocessableEntity, media.UploadResult{Error: media.MsgInvalidImage})
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	files := r.MultipartForm.File["image"]
	if len(files) == 0 {
		writeJSON(w, http.StatusUnprocessableEntity, media.UploadResult{Error: media.MsgInvalidImage})
		return
	}
	var form UploadForm
	form.Image.InitFromMultipart(files[0])
	data, err := form.Image.Bytes()
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, media.UploadResult{Error: media.MsgInvalidImage})
		return
	}

	res := s.Media.Upload(r.Context(), form.Image.Filename(), data)
	writeJSON(w, uploadStatus(res), res)
}

func uploadStatus(res media.UploadResult) int {
	if res.Success {
		return http.StatusOK
	}
	switch res.Error {
	case media.MsgNotConfigured:
		return http.StatusServiceUnavailable
	case media.MsgInvalidImage:
		return http.StatusUnprocessableEntity
	case media.MsgTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusBadGateway
	}
}
