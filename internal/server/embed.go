package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/hlog"

	"github.com/gomithril/embedd"
)

// embedRequest uses a pointer so a missing or null text can be told apart
// from the empty string, which is valid input.
type embedRequest struct {
	Text *string `json:"text" validate:"required"`
}

type embedResponse struct {
	Embedding embedd.Embedding `json:"embedding" msgpack:"embedding"`
}

type embedHandler struct {
	enc      embedd.Encoder
	maxBody  int64
	validate *validator.Validate
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (h *embedHandler) embed(w http.ResponseWriter, r *http.Request) {
	var req embedRequest
	if status, msg, details := h.decode(w, r, &req); status != 0 {
		hlog.FromRequest(r).Debug().Int("status", status).Str("reason", msg).Msg("rejected embed request")
		writeError(w, r, status, msg, details)
		return
	}

	vectors, err := h.enc.Encode(r.Context(), []string{*req.Text})
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		hlog.FromRequest(r).Warn().Err(err).Msg("request ended before inference started")
		writeError(w, r, http.StatusServiceUnavailable, "request cancelled", nil)
		return
	case err != nil:
		hlog.FromRequest(r).Error().Err(err).Int("text_len", len(*req.Text)).Msg("inference failed")
		writeError(w, r, http.StatusInternalServerError, "inference failed", nil)
		return
	case len(vectors) != 1:
		hlog.FromRequest(r).Error().Int("vectors", len(vectors)).Msg("encoder returned wrong batch size")
		writeError(w, r, http.StatusInternalServerError, "inference failed", nil)
		return
	}

	write(w, r, http.StatusOK, embedResponse{Embedding: vectors[0]})
}

// decode parses and validates the body. A zero status means req is usable.
// The body must be exactly one JSON object and the key must be spelled
// "text"; encoding/json alone would accept "TEXT" and trailing values.
func (h *embedHandler) decode(w http.ResponseWriter, r *http.Request, req *embedRequest) (int, string, []fieldError) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBody))

	var fields map[string]json.RawMessage
	if err := dec.Decode(&fields); err != nil {
		if errors.Is(err, io.EOF) {
			return http.StatusUnprocessableEntity, "validation failed", []fieldError{{Field: "text", Message: "field required"}}
		}
		return decodeFailure(err, "")
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return decodeFailure(err, "")
		}
		return http.StatusBadRequest, "request body must contain a single JSON object", nil
	}

	if raw, ok := fields["text"]; ok {
		if err := json.Unmarshal(raw, &req.Text); err != nil {
			return decodeFailure(err, "text")
		}
	}

	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return http.StatusBadRequest, "invalid request body", nil
		}
		details := make([]fieldError, 0, len(verrs))
		for _, fe := range verrs {
			msg := "field required"
			if fe.Tag() != "required" {
				msg = fmt.Sprintf("failed %q check", fe.Tag())
			}
			details = append(details, fieldError{Field: fe.Field(), Message: msg})
		}
		return http.StatusUnprocessableEntity, "validation failed", details
	}
	return 0, "", nil
}

// decodeFailure maps a JSON decoding error to a status and message. field
// names the key being decoded when the decoder cannot know it.
func decodeFailure(err error, field string) (int, string, []fieldError) {
	var (
		tooLarge  *http.MaxBytesError
		typeErr   *json.UnmarshalTypeError
		syntaxErr *json.SyntaxError
	)
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit), nil
	case errors.As(err, &typeErr):
		if typeErr.Field != "" {
			field = typeErr.Field
		}
		if field == "" {
			return http.StatusUnprocessableEntity, "request body must be a JSON object", nil
		}
		return http.StatusUnprocessableEntity, "validation failed", []fieldError{{
			Field:   field,
			Message: fmt.Sprintf("must be a %s, got %s", typeErr.Type.Kind(), typeErr.Value),
		}}
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return http.StatusBadRequest, "malformed JSON body", nil
	default:
		return http.StatusBadRequest, "invalid request body", nil
	}
}
