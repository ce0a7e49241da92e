package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/alumnicsv/internal/core"
)

// Response headers carrying the run summary.
const (
	headerRunID        = "X-Run-ID"
	headerRowsAccepted = "X-Rows-Accepted"
	headerRowsDropped  = "X-Rows-Dropped"
	headerEncoding     = "X-Input-Encoding"
)

// handleConvert serves POST /transform and POST /normalize. The upload is
// read from the multipart field "file" and the artifact is returned as an
// attachment.
func (s *Server) handleConvert(mode core.Mode) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename, data, err := s.readUpload(w, r)
		if err != nil {
			respondError(w, r, err, statusForConvertError(err))
			return
		}

		ctx := WithRequestMetadata(r.Context(), r)
		res, err := s.service.Convert(ctx, core.ConvertRequest{
			Mode:     mode,
			Filename: filename,
			Data:     data,
		})
		if err != nil {
			status := statusForConvertError(err)
			if status == http.StatusServiceUnavailable {
				w.Header().Set("Retry-After", "5")
			}
			respondError(w, r, err, status)
			return
		}

		art := res.Artifact
		h := w.Header()
		h.Set("Content-Type", art.ContentType)
		h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", art.Filename))
		h.Set("Content-Length", strconv.Itoa(len(art.Body)))
		h.Set(headerRunID, res.RunID.String())
		h.Set(headerRowsAccepted, strconv.Itoa(res.Summary.Accepted))
		h.Set(headerRowsDropped, strconv.Itoa(res.Summary.DroppedCount()))
		h.Set(headerEncoding, res.Encoding)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(art.Body)
	}
}

// readUpload returns the name and bytes of the "file" part. A request without
// that part, or one that is not multipart at all, yields core.ErrNoFile.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)

	if err := r.ParseMultipartForm(s.cfg.Upload.MaxMemory); err != nil {
		if isBodyTooLarge(err) {
			return "", nil, fmt.Errorf("%w: %v", core.ErrFileTooLarge, err)
		}
		return "", nil, fmt.Errorf("%w: %v", core.ErrNoFile, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil, core.ErrNoFile
		}
		return "", nil, fmt.Errorf("%w: %v", core.ErrNoFile, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		if isBodyTooLarge(err) {
			return "", nil, fmt.Errorf("%w: %v", core.ErrFileTooLarge, err)
		}
		return "", nil, fmt.Errorf("read upload: %w", err)
	}

	return header.Filename, data, nil
}
