package openapi

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
)

// MarshalJSON serializes the spec to indented JSON bytes.
func MarshalJSON(spec *Spec) ([]byte, error) {
	return json.MarshalIndent(spec, "", "  ")
}

// ServeSpec returns a handler that serves pre-serialized JSON spec bytes.
// The document is tagged with a content hash so clients can revalidate with
// If-None-Match and receive 304 until the spec changes.
func ServeSpec(specBytes []byte) http.HandlerFunc {
	sum := sha256.Sum256(specBytes)
	etag := `"` + hex.EncodeToString(sum[:8]) + `"`

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", etag)
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(specBytes)
	}
}
