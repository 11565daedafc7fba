// Package gcp builds the Google Cloud clients shared by the API and the CLI.
package gcp

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// Config selects credentials and project. Both fields are optional; empty values
// fall back to Application Default Credentials and the ambient project.
type Config struct {
	CredentialsFile string `env:"FIREBASE_CONFIG"`
	ProjectID       string `env:"GCLOUD_PROJECT"`
}

func (c Config) options() []option.ClientOption {
	if c.CredentialsFile == "" {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(c.CredentialsFile)}
}

// NewApp creates a Firebase App.
func NewApp(ctx context.Context, cfg Config) (*firebase.App, error) {
	var fbCfg *firebase.Config
	if cfg.ProjectID != "" {
		fbCfg = &firebase.Config{ProjectID: cfg.ProjectID}
	}
	app, err := firebase.NewApp(ctx, fbCfg, cfg.options()...)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app [%w]", err)
	}
	return app, nil
}

// Clients bundles lazily requested Google clients. Unused clients stay nil.
type Clients struct {
	App       *firebase.App
	Firestore *firestore.Client
	Auth      *firebaseauth.Client
	Storage   *storage.Client
}

// Want lists which clients NewClients should open.
type Want struct {
	Firestore bool
	Auth      bool
	Storage   bool
}

// NewClients opens the requested clients. On failure every client opened so far is closed.
func NewClients(ctx context.Context, cfg Config, want Want) (*Clients, error) {
	app, err := NewApp(ctx, cfg)
	if err != nil {
		return nil, err
	}
	c := &Clients{App: app}

	if want.Firestore {
		if c.Firestore, err = app.Firestore(ctx); err != nil {
			return nil, fmt.Errorf("error initializing firestore [%w]", err)
		}
	}
	if want.Auth {
		if c.Auth, err = app.Auth(ctx); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("error initializing firebase auth [%w]", err)
		}
	}
	if want.Storage {
		if c.Storage, err = storage.NewClient(ctx, cfg.options()...); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("error initializing cloud storage [%w]", err)
		}
	}
	return c, nil
}

// Close releases the Firestore and Storage connections.
func (c *Clients) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Firestore != nil {
		errs = append(errs, c.Firestore.Close())
	}
	if c.Storage != nil {
		errs = append(errs, c.Storage.Close())
	}
	return errors.Join(errs...)
}
