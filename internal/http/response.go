package http

import (
	"bytes"
	"encoding/json"
	"net/http"
)

type APIError struct {
	Message string `json:"message"`
}

// emptyObject is the body of a lookup that found nothing.
var emptyObject = struct{}{}

// WriteJSON encodes v before committing the status, so a value that cannot
// be encoded turns into a 500 instead of an empty success. The encode error
// is returned for logging.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"encode response"}` + "\n"))
		return err
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
	return nil
}

func Fail(w http.ResponseWriter, status int, msg string) {
	_ = WriteJSON(w, status, APIError{Message: msg})
}
