package services

import (
	"context"

	"google.golang.org/api/idtoken"
)

// Identity is what an external identity provider asserts about a user.
type Identity struct {
	Subject string
	Email   string
	Name    string
}

type IdentityVerifier interface {
	Verify(ctx context.Context, rawToken string) (*Identity, error)
}

type googleVerifier struct {
	audience string
}

// NewGoogleVerifier validates Google ID tokens issued for clientID.
func NewGoogleVerifier(clientID string) IdentityVerifier {
	return &googleVerifier{audience: clientID}
}

func (v *googleVerifier) Verify(ctx context.Context, rawToken string) (*Identity, error) {
	payload, err := idtoken.Validate(ctx, rawToken, v.audience)
	if err != nil {
		return nil, err
	}
	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	return &Identity{Subject: payload.Subject, Email: email, Name: name}, nil
}
