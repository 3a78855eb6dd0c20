package handlers

import (
	"context"
	"net/http"
	"sync"

	"github.com/leadhawk/prospect-sync/internal/gateway"
	"github.com/leadhawk/prospect-sync/internal/models"
)

// Syncer is the slice of the orchestrator the HTTP surface needs. One
// instance per actor; the session layer below owns the mapping.
type Syncer interface {
	SetActor(actor *models.Actor)
	WarmStart(ctx context.Context)
	Companies() []models.Company

	FetchCompanies(ctx context.Context) error
	GetCompanyByID(ctx context.Context, id string) (models.Company, error)
	CreateCompany(ctx context.Context, fields map[string]any, attachments []gateway.Attachment) (map[string]any, error)
	UpdateCompany(ctx context.Context, id string, fields map[string]any) (map[string]any, error)
	DeleteCompany(ctx context.Context, id string) error
	AddResponse(ctx context.Context, companyID string, resp models.Response) (map[string]any, error)
	AddRequirements(ctx context.Context, companyID string, req models.Requirements) (map[string]any, error)
	ToggleShortlist(ctx context.Context, companyID string, shortlisted bool) (map[string]any, error)
	SendSingleEmail(ctx context.Context, companyID string, to []string, subject, content string) (map[string]any, error)
	SendGroupEmail(ctx context.Context, companyIDs []string, to []string, subject, content string) (map[string]any, error)
	ListSentEmails(ctx context.Context, page, limit int) ([]models.EmailMessage, error)
	GetSentEmail(ctx context.Context, id string) (models.EmailMessage, error)
}

// Sessions keeps one live orchestrator per actor. The first request for an
// actor builds the session and warm-starts it from the snapshot store.
type Sessions struct {
	mu      sync.Mutex
	byActor map[string]Syncer
	build   func() Syncer
}

func NewSessions(build func() Syncer) *Sessions {
	return &Sessions{
		byActor: make(map[string]Syncer),
		build:   build,
	}
}

func (s *Sessions) For(ctx context.Context, actor *models.Actor) Syncer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sy, ok := s.byActor[actor.ID]; ok {
		return sy
	}
	sy := s.build()
	sy.SetActor(actor)
	sy.WarmStart(ctx)
	s.byActor[actor.ID] = sy
	return sy
}

// actorFromHeaders trusts the identity headers injected by the auth proxy in
// front of this service. No id header means no actor.
func actorFromHeaders(r *http.Request) *models.Actor {
	id := r.Header.Get("X-Actor-Id")
	if id == "" {
		return nil
	}
	role := models.Role(r.Header.Get("X-Actor-Role"))
	if role == "" {
		role = models.RoleUser
	}
	return &models.Actor{
		ID:    id,
		Name:  r.Header.Get("X-Actor-Name"),
		Email: r.Header.Get("X-Actor-Email"),
		Role:  role,
	}
}
