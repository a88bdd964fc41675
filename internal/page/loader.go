package page

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"hello-firestore/backend/internal/domain/user"
)

type State int

const (
	StatePending State = iota
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var (
	ErrNotFound  = errors.New("record not found")
	ErrBadStatus = errors.New("unexpected status")
	ErrBadBody   = errors.New("malformed response body")
)

const maxResponseBytes = 1 << 20

// Result is what the view renders. Record is set only in StateSuccess, Err
// only in StateError.
type Result struct {
	State  State
	Status int
	Record *user.Record
	Err    error
}

// Loader fetches the record endpoint.
type Loader struct {
	client  *http.Client
	url     string
	timeout time.Duration
}

func NewLoader(client *http.Client, url string, timeout time.Duration) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Loader{client: client, url: url, timeout: timeout}
}

// Start issues exactly one request in the background.
func (l *Loader) Start(ctx context.Context) *Request {
	req := &Request{done: make(chan struct{})}
	go func() {
		req.resolve(l.fetch(ctx))
	}()
	return req
}

func (l *Loader) fetch(ctx context.Context) Result {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	hreq, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return Result{State: StateError, Err: err}
	}
	hreq.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(hreq)
	if err != nil {
		return Result{State: StateError, Err: fmt.Errorf("fetch %s: %w", l.url, err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Result{State: StateError, Status: resp.StatusCode, Err: ErrNotFound}
	case resp.StatusCode != http.StatusOK:
		return Result{State: StateError, Status: resp.StatusCode, Err: fmt.Errorf("%w %d", ErrBadStatus, resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Result{State: StateError, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	var rec user.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return Result{State: StateError, Status: resp.StatusCode, Err: fmt.Errorf("%w: %v", ErrBadBody, err)}
	}
	if rec.ID == "" {
		return Result{State: StateError, Status: resp.StatusCode, Err: fmt.Errorf("%w: missing id", ErrBadBody)}
	}
	return Result{State: StateSuccess, Status: resp.StatusCode, Record: &rec}
}

// Request moves from pending to success or error exactly once.
type Request struct {
	mu     sync.Mutex
	result Result
	done   chan struct{}
}

func (r *Request) resolve(res Result) {
	r.mu.Lock()
	r.result = res
	r.mu.Unlock()
	close(r.done)
}

func (r *Request) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result.State
}

// Wait blocks until the request resolves or ctx ends. In the latter case the
// returned Result is still pending. A resolved request always wins over an
// ended ctx.
func (r *Request) Wait(ctx context.Context) Result {
	select {
	case <-r.done:
	case <-ctx.Done():
		select {
		case <-r.done:
		default:
			return Result{State: StatePending}
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result
}
