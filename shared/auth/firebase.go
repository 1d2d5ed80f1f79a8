package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultFirebaseJWKSURL publishes the keys used to sign Firebase ID tokens.
const DefaultFirebaseJWKSURL = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"

var errMissingSubject = errors.New("token missing subject claim")

// firebaseVerifier validates Firebase-issued ID tokens using JWKS.
type firebaseVerifier struct {
	jwks     *keyfunc.JWKS
	audience string
	issuer   string
}

func newFirebaseVerifier(cfg Config) (Verifier, error) {
	url := cfg.JWKSURL
	if url == "" {
		url = DefaultFirebaseJWKSURL
	}

	options := keyfunc.Options{
		RefreshUnknownKID: true,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    5 * time.Second,
		RefreshErrorHandler: func(err error) {
			// Refresh errors surface as verification failures on the next request.
		},
	}

	jwks, err := keyfunc.Get(url, options)
	if err != nil {
		return nil, fmt.Errorf("failed to load JWKS: %w", err)
	}

	return &firebaseVerifier{jwks: jwks, audience: cfg.Audience, issuer: cfg.Issuer}, nil
}

func (v *firebaseVerifier) Verify(ctx context.Context, token string) (AuthenticatedUser, error) {
	options := []jwt.ParserOption{jwt.WithLeeway(5 * time.Second), jwt.WithValidMethods([]string{"RS256"})}
	if v.audience != "" {
		options = append(options, jwt.WithAudience(v.audience))
	}
	if v.issuer != "" {
		options = append(options, jwt.WithIssuer(v.issuer))
	}

	t, err := jwt.Parse(token, v.jwks.Keyfunc, options...)
	if err != nil {
		return AuthenticatedUser{}, fmt.Errorf("token verification failed: %w", err)
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return AuthenticatedUser{}, errors.New("unexpected claims type")
	}

	subjectRaw, ok := claims["sub"].(string)
	if !ok || subjectRaw == "" {
		return AuthenticatedUser{}, errMissingSubject
	}

	name, _ := claims["name"].(string)
	email, _ := claims["email"].(string)

	expiresAt := int64(0)
	if expRaw, ok := claims["exp"].(float64); ok {
		expiresAt = int64(expRaw)
	}

	return AuthenticatedUser{
		UserID:      subjectRaw,
		DisplayName: name,
		Email:       email,
		ExpiresAt:   expiresAt,
		Token:       token,
	}, nil
}
