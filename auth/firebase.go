package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/prakhar3125/ExpenseFlow-backend/config"
	"github.com/prakhar3125/ExpenseFlow-backend/repository"
)

// IDTokenVerifier is the part of the Firebase Auth client this package
// uses. *auth.Client satisfies it.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// FirebaseVerifier accepts Firebase ID tokens and maps their verified email
// to a local user.
type FirebaseVerifier struct {
	client IDTokenVerifier
	users  UserFinder
}

func NewFirebaseVerifier(client IDTokenVerifier, users UserFinder) *FirebaseVerifier {
	return &FirebaseVerifier{client: client, users: users}
}

// credentialsOption picks the first configured credential source.
func credentialsOption(cfg config.FirebaseConfig) (option.ClientOption, error) {
	switch {
	case cfg.CredentialsJSON != "":
		return option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)), nil
	case cfg.CredentialsBase64 != "":
		raw, err := base64.StdEncoding.DecodeString(cfg.CredentialsBase64)
		if err != nil {
			return nil, fmt.Errorf("decode base64 firebase credentials: %w", err)
		}
		return option.WithCredentialsJSON(raw), nil
	case cfg.CredentialsFile != "":
		return option.WithCredentialsFile(cfg.CredentialsFile), nil
	default:
		return nil, errors.New("no firebase credentials configured")
	}
}

// NewFirebaseClient initialises the Firebase Admin SDK auth client.
func NewFirebaseClient(ctx context.Context, cfg config.FirebaseConfig) (*fbauth.Client, error) {
	opt, err := credentialsOption(cfg)
	if err != nil {
		return nil, err
	}

	var fbConfig *firebase.Config
	if cfg.ProjectID != "" {
		fbConfig = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	app, err := firebase.NewApp(ctx, fbConfig, opt)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("get firebase auth client: %w", err)
	}
	return client, nil
}

func (f *FirebaseVerifier) Verify(ctx context.Context, idToken string) (Identity, error) {
	token, err := f.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	email, _ := token.Claims["email"].(string)
	if email == "" {
		return Identity{}, fmt.Errorf("%w: firebase token for %s carries no email", ErrInvalidToken, token.UID)
	}
	if verified, ok := token.Claims["email_verified"].(bool); ok && !verified {
		return Identity{}, fmt.Errorf("%w: firebase email %s is not verified", ErrInvalidToken, email)
	}

	u, err := f.users.GetUserByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Identity{}, fmt.Errorf("%w: no local account for %s", ErrInvalidToken, email)
		}
		return Identity{}, fmt.Errorf("load firebase user: %w", err)
	}
	return Identity{UserID: u.ID, Email: u.Email}, nil
}
