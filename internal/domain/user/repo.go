package user

import (
	"context"
	"fmt"
	"math"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const DefaultCollection = "users"

type Repo struct {
	fs *firestore.Client
}

func NewRepo(fs *firestore.Client) *Repo {
	return &Repo{fs: fs}
}

func (r *Repo) ref(k Key) *firestore.DocumentRef {
	return r.fs.Collection(k.Collection).Doc(k.ID)
}

func (r *Repo) Get(ctx context.Context, k Key) (*Record, error) {
	if err := k.Validate(); err != nil {
		return nil, err
	}
	doc, err := r.ref(k).Get(ctx)
	if err != nil {
		if isDocNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get %s: %w", k, err)
	}
	return &Record{
		ID:     doc.Ref.ID,
		Fields: normalizeMap(doc.Data()),
	}, nil
}

// Exists checks for the document without decoding it.
func (r *Repo) Exists(ctx context.Context, k Key) (bool, error) {
	if err := k.Validate(); err != nil {
		return false, err
	}
	doc, err := r.ref(k).Get(ctx)
	if err != nil {
		if isDocNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("get %s: %w", k, err)
	}
	return doc.Exists(), nil
}

// Put merges the record's fields into the document, creating it if needed.
func (r *Repo) Put(ctx context.Context, collection string, rec Record) error {
	k := Key{Collection: collection, ID: rec.ID}
	if err := k.Validate(); err != nil {
		return err
	}
	if len(rec.Fields) == 0 {
		return fmt.Errorf("put %s: no fields", k)
	}
	if _, err := r.ref(k).Set(ctx, rec.Fields, firestore.MergeAll); err != nil {
		return fmt.Errorf("put %s: %w", k, err)
	}
	return nil
}

func isDocNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// normalizeMap converts SDK values that do not encode cleanly as JSON.
// Document references become their path and non-finite doubles become the
// strings "NaN", "+Inf" and "-Inf".
func normalizeMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch x := v.(type) {
	case *firestore.DocumentRef:
		if x == nil {
			return nil
		}
		return x.Path
	case float64:
		switch {
		case math.IsNaN(x):
			return "NaN"
		case math.IsInf(x, 1):
			return "+Inf"
		case math.IsInf(x, -1):
			return "-Inf"
		}
		return x
	case map[string]any:
		return normalizeMap(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalizeValue(e)
		}
		return out
	default:
		return v
	}
}
