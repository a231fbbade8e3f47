package http

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
)

const multipartMemory = 8 << 20

var errUploadTooLarge = errors.New("the upload is too large")

// parseUpload bounds the request body to the files it may carry plus form overhead.
func parseUpload(w http.ResponseWriter, r *http.Request, maxUpload int64, files int) error {
	limit := maxUpload*int64(files) + maxJSONBodyBytes
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errUploadTooLarge
		}
		return errBadRequestBody
	}
	return nil
}

// formFile returns the content of an uploaded part, or nil when the part is absent.
func formFile(r *http.Request, field string) ([]byte, *multipart.FileHeader, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, nil, err
	}
	return data, header, nil
}

func (r responder) writeUploadError(w http.ResponseWriter, req *http.Request, err error) {
	if errors.Is(err, errUploadTooLarge) {
		r.writeError(req.Context(), w, http.StatusRequestEntityTooLarge, err)
		return
	}
	r.writeError(req.Context(), w, http.StatusBadRequest, err)
}
