package session

import (
	"context"

	"farsha/internal/apiclient"
	"farsha/internal/domain"
	"farsha/internal/models"

	"github.com/rs/zerolog"
)

type customerBackend struct {
	client *apiclient.Client
}

func (b customerBackend) Login(ctx context.Context, creds models.Credentials) (*Grant[models.User], error) {
	resp, err := b.client.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	return customerGrant(resp), nil
}

func (b customerBackend) Me(ctx context.Context) (*models.User, *models.Business, error) {
	user, err := b.client.CurrentUser(ctx)
	return user, nil, err
}

func (b customerBackend) Logout(ctx context.Context, refresh string) error {
	return b.client.Logout(ctx, refresh)
}

func customerGrant(resp *apiclient.AuthResponse) *Grant[models.User] {
	return &Grant[models.User]{
		Access:    resp.Access,
		Refresh:   resp.Refresh,
		Principal: resp.User,
		Message:   resp.Message,
		Phone:     resp.PhoneNumber,
	}
}

// CustomerStore is the customer session context.
type CustomerStore struct {
	*Store[models.User]
	client *apiclient.Client
}

func NewCustomerStore(client *apiclient.Client, repo domain.CredentialRepository, publisher domain.EventPublisher, opts Options, logger *zerolog.Logger) *CustomerStore {
	return &CustomerStore{
		Store:  NewStore[models.User](CustomerNamespace, repo, customerBackend{client: client}, publisher, opts, logger),
		client: client,
	}
}

func (s *CustomerStore) Register(ctx context.Context, visitor string, req models.RegisterRequest) Result {
	return s.register(ctx, visitor, registerFields, func(ctx context.Context) (*Grant[models.User], error) {
		resp, err := s.client.Register(ctx, req)
		if err != nil {
			return nil, err
		}
		g := customerGrant(resp)
		if g.Phone == "" {
			g.Phone = req.PhoneNumber
		}
		return g, nil
	})
}

// VerifyOTP confirms a phone number. An answer with tokens signs the
// visitor in; a message-only answer just reports success.
func (s *CustomerStore) VerifyOTP(ctx context.Context, visitor string, req models.OTPRequest) Result {
	ctx = WithVisitor(ctx, visitor)
	resp, err := s.client.VerifyOTP(ctx, req)
	if err != nil {
		return failure(apiclient.MessageFrom(err, msgVerifyFailed, otpFields...))
	}

	if resp.Access != "" {
		if err := s.signIn(ctx, visitor, customerGrant(resp)); err != nil {
			return s.signInFailure(visitor, err)
		}
		return Result{Success: true, Message: msgWelcome, Phone: req.PhoneNumber, Outcome: OutcomeSignedIn}
	}

	msg := resp.Message
	if msg == "" {
		msg = msgPhoneVerified
	}
	return Result{Success: true, Message: msg, Phone: req.PhoneNumber, Outcome: OutcomeVerified}
}

// Update replaces the profile wholesale with the server's answer.
func (s *CustomerStore) Update(ctx context.Context, visitor string, upd models.ProfileUpdate) Result {
	ctx = WithVisitor(ctx, visitor)
	user, err := s.client.UpdateProfile(ctx, upd)
	if err != nil {
		return failure(apiclient.MessageFrom(err, msgProfileFailed))
	}
	if err := s.persistJSON(ctx, visitor, s.ns.Keys.Principal, user); err != nil {
		s.logger.Error().Err(err).Str("visitor", visitor).Msg("failed to persist profile")
		return failure(msgStorageFailed)
	}
	s.replace(visitor, func(sess *Session[models.User]) { sess.Principal = user })
	return Result{Success: true, Message: msgProfileUpdated}
}
