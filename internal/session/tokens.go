package session

import (
	"context"

	"farsha/internal/apiclient"
	"farsha/internal/domain"
)

// TokenSource reads persisted bearer tokens for the API client.
type TokenSource struct {
	repo domain.CredentialRepository
}

func NewTokenSource(repo domain.CredentialRepository) *TokenSource {
	return &TokenSource{repo: repo}
}

func (t *TokenSource) Token(ctx context.Context, ns apiclient.Namespace) (string, error) {
	visitor := VisitorFrom(ctx)
	if visitor == "" {
		return "", nil
	}
	return t.repo.Get(ctx, visitor, NamespaceFor(ns).Keys.Token)
}

type expirer interface {
	Expire(ctx context.Context, visitor string)
}

// UnauthorizedHandler expires only the session whose namespace tagged
// the rejected request.
func UnauthorizedHandler(customer, partner expirer) apiclient.UnauthorizedHandler {
	return func(ctx context.Context, ns apiclient.Namespace) {
		visitor := VisitorFrom(ctx)
		switch ns {
		case apiclient.NamespacePartner:
			partner.Expire(ctx, visitor)
		default:
			customer.Expire(ctx, visitor)
		}
	}
}
