package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/hlog"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	contentTypeJSON    = "application/json"
	contentTypeMsgpack = "application/msgpack"
)

type fieldError struct {
	Field   string `json:"field" msgpack:"field"`
	Message string `json:"message" msgpack:"message"`
}

type errorResponse struct {
	Error   string       `json:"error" msgpack:"error"`
	Details []fieldError `json:"details,omitempty" msgpack:"details,omitempty"`
}

func wantsMsgpack(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, contentTypeMsgpack) || strings.Contains(accept, "application/x-msgpack")
}

// write encodes body as msgpack when the client asked for it, JSON otherwise.
func write(w http.ResponseWriter, r *http.Request, status int, body any) {
	var (
		data        []byte
		err         error
		contentType = contentTypeJSON
	)
	if wantsMsgpack(r) {
		contentType = contentTypeMsgpack
		data, err = msgpack.Marshal(body)
	} else {
		data, err = json.Marshal(body)
	}
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("failed to encode response")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		hlog.FromRequest(r).Debug().Err(err).Msg("response write failed")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string, details []fieldError) {
	write(w, r, status, errorResponse{Error: message, Details: details})
}
