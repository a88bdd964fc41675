package firebase

import (
	"context"
	"encoding/json"
	"fmt"

	"hello-firestore/backend/internal/config"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

const tokenURI = "https://oauth2.googleapis.com/token"

// Clients bundles the Firebase app and the Firestore handle used by the
// repositories.
type Clients struct {
	App       *firebase.App
	Firestore *firestore.Client

	ProjectID string
}

func (c *Clients) Close() error {
	if c == nil || c.Firestore == nil {
		return nil
	}
	return c.Firestore.Close()
}

type serviceAccount struct {
	Type        string `json:"type"`
	ProjectID   string `json:"project_id"`
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

// CredentialsJSON renders the three secrets as a service account key file.
func CredentialsJSON(cfg config.Config) ([]byte, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("missing project id")
	}
	if !cfg.HasCredentials() {
		return nil, fmt.Errorf("missing client email or private key")
	}
	return json.Marshal(serviceAccount{
		Type:        "service_account",
		ProjectID:   cfg.ProjectID,
		ClientEmail: cfg.ClientEmail,
		PrivateKey:  config.UnescapePrivateKey(cfg.PrivateKey),
		TokenURI:    tokenURI,
	})
}

// NewClients creates the Firebase app and its Firestore client.
func NewClients(ctx context.Context, cfg config.Config) (*Clients, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("missing NEXT_PUBLIC_FIREBASE_PROJECT_ID or GOOGLE_CLOUD_PROJECT")
	}

	// Without explicit secrets Application Default Credentials are used
	// (GOOGLE_APPLICATION_CREDENTIALS locally, the metadata server on GCP,
	// nothing at all against the emulator).
	var opts []option.ClientOption
	if cfg.HasCredentials() {
		creds, err := CredentialsJSON(cfg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, option.WithCredentialsJSON(creds))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}

	fs, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}

	return &Clients{
		App:       app,
		Firestore: fs,
		ProjectID: cfg.ProjectID,
	}, nil
}
