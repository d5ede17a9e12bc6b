package auth

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"scriptchat/internal/domain"
)

// Firebase resolves identities against the project's auth provider.
// The Admin SDK has no anonymous sign-in; anonymous identities are
// minted locally and stay stable for the process lifetime.
type Firebase struct {
	client *fbauth.Client
}

func NewFirebase(ctx context.Context, projectID string, credentialsJSON []byte) (*Firebase, error) {
	var opts []option.ClientOption
	if len(credentialsJSON) > 0 {
		opts = append(opts, option.WithCredentialsJSON(credentialsJSON))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating firebase auth client: %w", err)
	}

	return &Firebase{client: client}, nil
}

func (f *Firebase) SignInAnonymously(ctx context.Context) (domain.Identity, error) {
	return domain.Identity{
		UserID:    domain.UserID("anon-" + uuid.NewString()),
		Anonymous: true,
	}, nil
}

func (f *Firebase) SignInWithToken(ctx context.Context, token string) (domain.Identity, error) {
	tok, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		return domain.Identity{}, &domain.AuthError{Op: "verify token", Err: err}
	}
	return domain.Identity{UserID: domain.UserID(tok.UID)}, nil
}
