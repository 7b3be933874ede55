package session

import (
	"context"

	"farsha/internal/apiclient"
	"farsha/internal/domain"
	"farsha/internal/models"

	"github.com/rs/zerolog"
)

type partnerBackend struct {
	client *apiclient.Client
}

func (b partnerBackend) Login(ctx context.Context, creds models.Credentials) (*Grant[models.Partner], error) {
	resp, err := b.client.PartnerLogin(ctx, creds)
	if err != nil {
		return nil, err
	}
	return partnerGrant(resp), nil
}

func (b partnerBackend) Me(ctx context.Context) (*models.Partner, *models.Business, error) {
	resp, err := b.client.CurrentPartner(ctx)
	if err != nil {
		return nil, nil, err
	}
	return resp.Principal(), resp.Business, nil
}

func (b partnerBackend) Logout(ctx context.Context, refresh string) error {
	return b.client.PartnerLogout(ctx, refresh)
}

func partnerGrant(resp *apiclient.PartnerAuthResponse) *Grant[models.Partner] {
	return &Grant[models.Partner]{
		Access:    resp.Access,
		Refresh:   resp.Refresh,
		Principal: resp.Principal(),
		Business:  resp.Business,
		Message:   resp.Message,
		Phone:     resp.PhoneNumber,
	}
}

// PartnerStore is the partner session context. Its session also holds
// the owned business.
type PartnerStore struct {
	*Store[models.Partner]
	client *apiclient.Client
}

func NewPartnerStore(client *apiclient.Client, repo domain.CredentialRepository, publisher domain.EventPublisher, opts Options, logger *zerolog.Logger) *PartnerStore {
	return &PartnerStore{
		Store:  NewStore[models.Partner](PartnerNamespace, repo, partnerBackend{client: client}, publisher, opts, logger),
		client: client,
	}
}

func (s *PartnerStore) Register(ctx context.Context, visitor string, req models.PartnerRegisterRequest) Result {
	return s.register(ctx, visitor, partnerRegisterFields, func(ctx context.Context) (*Grant[models.Partner], error) {
		resp, err := s.client.PartnerRegister(ctx, req)
		if err != nil {
			return nil, err
		}
		g := partnerGrant(resp)
		if g.Phone == "" {
			g.Phone = req.PhoneNumber
		}
		return g, nil
	})
}

// Update replaces the business wholesale with the server's answer.
func (s *PartnerStore) Update(ctx context.Context, visitor string, upd models.BusinessUpdate) Result {
	ctx = WithVisitor(ctx, visitor)
	business, err := s.client.UpdateBusiness(ctx, upd)
	if err != nil {
		return failure(apiclient.MessageFrom(err, msgBusinessFailed))
	}
	if err := s.persistJSON(ctx, visitor, s.ns.Keys.Business, business); err != nil {
		s.logger.Error().Err(err).Str("visitor", visitor).Msg("failed to persist business")
		return failure(msgStorageFailed)
	}
	s.replace(visitor, func(sess *Session[models.Partner]) { sess.Business = business })
	return Result{Success: true, Message: msgBusinessUpdated}
}
