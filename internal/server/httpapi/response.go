package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/gophchat/internal/common"
)

// maxBodyBytes bounds request bodies; inline images are base64 in JSON.
const maxBodyBytes = 10 << 20

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

// writeError maps the error taxonomy onto HTTP. Unexpected errors are logged
// and answered with a generic body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrValidation):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrUnauthenticated):
		writeMessage(w, http.StatusUnauthorized, "Unauthorized - Invalid Token")
	case errors.Is(err, common.ErrInvalidCredential):
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, common.ErrIdentityNotFound):
		writeMessage(w, http.StatusNotFound, "User not found")
	case errors.Is(err, common.ErrConflict):
		writeMessage(w, http.StatusConflict, "Email already exists")
	case errors.Is(err, common.ErrMediaUploadFailed):
		writeMessage(w, http.StatusBadGateway, "Image upload failed")
	default:
		s.logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return fmt.Errorf("%w: request body too large", common.ErrValidation)
		case errors.Is(err, io.EOF):
			return fmt.Errorf("%w: empty request body", common.ErrValidation)
		default:
			return fmt.Errorf("%w: malformed JSON", common.ErrValidation)
		}
	}
	return nil
}
