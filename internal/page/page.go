package page

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// NameField is the record field interpolated into the greeting.
const NameField = "name"

// ErrNoName marks a record that exists but has nothing to greet.
var ErrNoName = errors.New("record has no name")

var tmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Hello</title></head>
<body>
{{- if eq .State "pending" }}
<p>Loading...</p>
{{- else if eq .State "success" }}
<h1>Hello, {{ .Name }}!</h1>
{{- else }}
<p>Could not load the user: {{ .Message }}</p>
{{- end }}
</body>
</html>
`))

type view struct {
	State   string
	Name    string
	Message string
}

// requireName turns a success without a non-empty string name into an error,
// so the page never greets nobody.
func requireName(res Result) Result {
	if res.State != StateSuccess {
		return res
	}
	if res.Record != nil {
		if name, ok := res.Record.Field(NameField); ok && strings.TrimSpace(name) != "" {
			return res
		}
	}
	return Result{State: StateError, Status: res.Status, Err: ErrNoName}
}

// Render writes the HTML for one request state.
func Render(res Result) ([]byte, error) {
	res = requireName(res)
	v := view{State: res.State.String()}
	switch res.State {
	case StateSuccess:
		v.Name, _ = res.Record.Field(NameField)
	case StateError:
		if res.Err != nil {
			v.Message = res.Err.Error()
		}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func statusFor(res Result) int {
	switch res.State {
	case StateSuccess:
		return http.StatusOK
	case StatePending:
		// The placeholder is a complete page; the client may reload.
		return http.StatusOK
	}
	if errors.Is(res.Err, ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}

// Handler serves the greeting page, waiting up to wait for the data.
type Handler struct {
	loader *Loader
	wait   time.Duration
	logger *zap.Logger
}

func NewHandler(loader *Loader, wait time.Duration, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{loader: loader, wait: wait, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// The fetch is abandoned once the page has been written.
	ctx, cancelFetch := context.WithCancel(r.Context())
	defer cancelFetch()
	req := h.loader.Start(ctx)

	waitCtx := ctx
	if h.wait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, h.wait)
		defer cancel()
	}
	res := requireName(req.Wait(waitCtx))
	if res.State == StateError {
		h.logger.Warn("page data fetch failed", zap.Int("status", res.Status), zap.Error(res.Err))
	}

	body, err := Render(res)
	if err != nil {
		h.logger.Error("page render failed", zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusFor(res))
	_, _ = w.Write(body)
}
