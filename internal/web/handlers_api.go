package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/emiliopalmerini/echonote/internal/domain"
	"github.com/emiliopalmerini/echonote/internal/upload"
	"github.com/emiliopalmerini/echonote/internal/util"
)

const (
	msgNoFile               = "No audio file uploaded or invalid file type."
	msgInvalidFileType      = "Invalid file type. Only MP3, WAV, and M4A are allowed."
	msgTranscriptionFailed  = "Transcription failed. Please try again."
	msgTranscriptionTimeout = "Transcription timed out."
	msgSaveFailed           = "Failed to save to database"
	msgFetchFailed          = "Failed to fetch transcriptions"
	msgDeleteFailed         = "Failed to delete transcription"
	msgDeleted              = "Transcription deleted successfully"
	msgRouteNotFound        = "Route not found"

	audioField = "audio"
)

type errorResponse struct {
	Error         string `json:"error"`
	Filename      string `json:"filename,omitempty"`
	Transcription string `json:"transcription,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) handleAPIListTranscriptions(w http.ResponseWriter, r *http.Request) {
	list, err := s.repo.List(r.Context())
	if err != nil {
		s.logger.Error("failed to list transcriptions", "error", err)
		writeError(w, http.StatusInternalServerError, msgFetchFailed)
		return
	}

	if list == nil {
		list = []*domain.Transcript{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleAPIDeleteTranscription(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.repo.Delete(r.Context(), id); err != nil {
		s.logger.Error("failed to delete transcription", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, msgDeleteFailed)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: msgDeleted})
}

// handleAPIUpload streams the "audio" part straight into the upload service
// so the body is never buffered by the multipart parser.
func (s *Server) handleAPIUpload(w http.ResponseWriter, r *http.Request) {
	if s.cfg.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+multipartOverhead)
	}

	req := upload.Request{}
	if part, err := findAudioPart(r); err == nil {
		defer part.Close()
		req.Filename = part.FileName()
		req.MIMEType = part.Header.Get("Content-Type")
		req.Body = part
	} else if !errors.Is(err, domain.ErrNoFile) {
		s.writeUploadError(w, err, nil)
		return
	}

	res, err := s.uploader.Upload(r.Context(), req)
	if err != nil {
		s.writeUploadError(w, err, res)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func findAudioPart(r *http.Request) (*multipart.Part, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, domain.ErrNoFile
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, domain.ErrNoFile
		}
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: malformed multipart body: %v", domain.ErrNoFile, err)
		}
		if part.FormName() == audioField && part.FileName() != "" {
			return part, nil
		}
		_ = part.Close()
	}
}

func (s *Server) writeUploadError(w http.ResponseWriter, err error, res *upload.Result) {
	var tooLarge *http.MaxBytesError

	switch {
	case errors.Is(err, domain.ErrNoFile):
		writeError(w, http.StatusBadRequest, msgNoFile)
	case errors.Is(err, domain.ErrInvalidFileType):
		writeError(w, http.StatusBadRequest, msgInvalidFileType)
	case errors.Is(err, domain.ErrFileTooLarge), errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge,
			"File too large. Maximum size is "+util.FormatBytes(s.cfg.MaxUploadBytes)+".")
	case errors.Is(err, domain.ErrTranscriptionTimeout):
		writeError(w, http.StatusGatewayTimeout, msgTranscriptionTimeout)
	case errors.Is(err, domain.ErrPersistenceFailed) && res != nil:
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:         msgSaveFailed,
			Filename:      res.Filename,
			Transcription: res.Transcription,
		})
	default:
		s.logger.Error("upload failed", "error", err)
		writeError(w, http.StatusInternalServerError, msgTranscriptionFailed)
	}
}

func (s *Server) handleAPINotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, msgRouteNotFound)
}
