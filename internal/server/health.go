package server

import (
	"net/http"

	"github.com/gomithril/embedd"
)

type healthResponse struct {
	Status     string `json:"status" msgpack:"status"`
	Model      string `json:"model" msgpack:"model"`
	Dimensions int    `json:"dimensions" msgpack:"dimensions"`
	Version    string `json:"version" msgpack:"version"`
}

// healthHandler reports ready. The listener only starts after the model
// has loaded, so answering at all means the service can embed.
func healthHandler(enc embedd.Encoder) http.HandlerFunc {
	resp := healthResponse{
		Status:     "ok",
		Model:      enc.ModelName(),
		Dimensions: enc.Dimensions(),
		Version:    embedd.Version,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		write(w, r, http.StatusOK, resp)
	}
}
