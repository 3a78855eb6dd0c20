// Package sync coordinates the canonical in-memory collection with the
// upstream backend. Every mutation exists in two flavors: local-only (state
// change in memory, no network, no persistence guarantee) and networked
// (backend write, then an unconditional full reload of the authoritative
// list). The reload-after-write is the consistency mechanism: individual
// write responses are never trusted as the new truth.
package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	gosync "sync"
	"time"

	"github.com/leadhawk/prospect-sync/internal/broker"
	"github.com/leadhawk/prospect-sync/internal/gateway"
	"github.com/leadhawk/prospect-sync/internal/models"
	"github.com/leadhawk/prospect-sync/internal/normalize"
	"github.com/leadhawk/prospect-sync/internal/store"
)

// ErrNotAuthenticated is returned by every networked operation invoked
// without an actor. A hard precondition failure, never a silent no-op.
var ErrNotAuthenticated = errors.New("no authenticated actor")

// Gateway is the slice of the upstream client the orchestrator needs.
type Gateway interface {
	ListCompanies(ctx context.Context, scope gateway.ListScope) ([]map[string]any, error)
	GetCompany(ctx context.Context, id string) (map[string]any, error)
	CreateCompany(ctx context.Context, fields map[string]any, attachments []gateway.Attachment) (map[string]any, error)
	UpdateCompany(ctx context.Context, id string, fields map[string]any) (map[string]any, error)
	DeleteCompany(ctx context.Context, id string) error
	AddResponse(ctx context.Context, companyID string, resp models.Response) (map[string]any, error)
	AddRequirements(ctx context.Context, companyID string, req models.Requirements) (map[string]any, error)
	SetShortlist(ctx context.Context, companyID string, shortlisted bool) (map[string]any, error)
	SendEmail(ctx context.Context, payload gateway.EmailPayload) (map[string]any, error)
	ListSentEmails(ctx context.Context, page, limit int) ([]map[string]any, error)
	GetSentEmail(ctx context.Context, id string) (map[string]any, error)
}

// EventPublisher receives a mutation event after each successful networked
// write. Publishing is best-effort; failures are logged and swallowed.
type EventPublisher interface {
	PublishEvent(ctx context.Context, ev broker.Event) error
}

// SnapshotStore warm-starts the collection across restarts. Optional; the
// first refetch replaces whatever it loaded.
type SnapshotStore interface {
	Save(ctx context.Context, actorID string, companies []models.Company) error
	Load(ctx context.Context, actorID string) ([]models.Company, error)
}

type Orchestrator struct {
	gw        Gateway
	pub       EventPublisher
	snapshots SnapshotStore
	log       *slog.Logger

	mu    gosync.RWMutex
	actor *models.Actor
	store *store.Store
}

// New builds an orchestrator with no actor; nothing is visible until
// SetActor is called. pub and snapshots may be nil.
func New(gw Gateway, pub EventPublisher, snapshots SnapshotStore, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		gw:        gw,
		pub:       pub,
		snapshots: snapshots,
		log:       log.With("cmp", "sync"),
		store:     store.New(),
	}
}

// SetActor swaps the authenticated identity. The state store is torn down
// and rebuilt, which clears the collection; login and logout both pass
// through here.
func (o *Orchestrator) SetActor(actor *models.Actor) {
	o.mu.Lock()
	o.actor = actor
	o.store = store.New()
	o.mu.Unlock()
}

func (o *Orchestrator) Actor() *models.Actor {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.actor
}

func (o *Orchestrator) session() (*models.Actor, *store.Store) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.actor, o.store
}

// Companies exposes the current canonical collection.
func (o *Orchestrator) Companies() []models.Company {
	_, st := o.session()
	return st.Companies()
}

func (o *Orchestrator) Loading() bool {
	_, st := o.session()
	return st.Loading()
}

// ---- local-only mutations -------------------------------------------------
//
// Synchronous, in-memory, ephemeral: the next full refetch discards or
// reconciles whatever these produced.

func (o *Orchestrator) AddCompanyLocal(partial map[string]any) {
	_, st := o.session()
	st.Dispatch(store.AddCompanyLocal{Partial: partial})
}

func (o *Orchestrator) UpdateCompanyLocal(raw map[string]any) {
	_, st := o.session()
	st.Dispatch(store.UpdateCompanyLocal{Raw: raw})
}

func (o *Orchestrator) DeleteCompanyLocal(id string) {
	_, st := o.session()
	st.Dispatch(store.DeleteCompanyLocal{ID: id})
}

func (o *Orchestrator) AddResponseLocal(id string, resp models.Response) {
	_, st := o.session()
	st.Dispatch(store.AddResponseLocal{ID: id, Response: resp})
}

func (o *Orchestrator) AddRequirementsLocal(id string, req models.Requirements) {
	_, st := o.session()
	st.Dispatch(store.AddRequirementsLocal{ID: id, Requirements: req})
}

func (o *Orchestrator) ToggleShortlistLocal(id string, shortlisted bool) {
	_, st := o.session()
	st.Dispatch(store.ToggleShortlistLocal{ID: id, Shortlisted: shortlisted})
}

// ---- networked mutations --------------------------------------------------

// FetchCompanies loads the authoritative collection without a preceding
// write. Initial page load and manual refresh both land here.
func (o *Orchestrator) FetchCompanies(ctx context.Context) error {
	_, err := o.networked(ctx, "", "", nil)
	return err
}

func (o *Orchestrator) CreateCompany(ctx context.Context, fields map[string]any, attachments []gateway.Attachment) (map[string]any, error) {
	return o.networked(ctx, "created", "", func(ctx context.Context) (map[string]any, error) {
		record, err := o.gw.CreateCompany(ctx, fields, attachments)
		if err != nil {
			return nil, fmt.Errorf("create company: %w", err)
		}
		return record, nil
	})
}

func (o *Orchestrator) UpdateCompany(ctx context.Context, id string, fields map[string]any) (map[string]any, error) {
	return o.networked(ctx, "updated", id, func(ctx context.Context) (map[string]any, error) {
		record, err := o.gw.UpdateCompany(ctx, id, fields)
		if err != nil {
			return nil, fmt.Errorf("update company %s: %w", id, err)
		}
		return record, nil
	})
}

func (o *Orchestrator) DeleteCompany(ctx context.Context, id string) error {
	_, err := o.networked(ctx, "deleted", id, func(ctx context.Context) (map[string]any, error) {
		if err := o.gw.DeleteCompany(ctx, id); err != nil {
			return nil, fmt.Errorf("delete company %s: %w", id, err)
		}
		return nil, nil
	})
	return err
}

func (o *Orchestrator) AddResponse(ctx context.Context, companyID string, resp models.Response) (map[string]any, error) {
	return o.networked(ctx, "response_added", companyID, func(ctx context.Context) (map[string]any, error) {
		record, err := o.gw.AddResponse(ctx, companyID, resp)
		if err != nil {
			return nil, fmt.Errorf("add response to %s: %w", companyID, err)
		}
		return record, nil
	})
}

func (o *Orchestrator) AddRequirements(ctx context.Context, companyID string, req models.Requirements) (map[string]any, error) {
	return o.networked(ctx, "requirements_added", companyID, func(ctx context.Context) (map[string]any, error) {
		record, err := o.gw.AddRequirements(ctx, companyID, req)
		if err != nil {
			return nil, fmt.Errorf("add requirements to %s: %w", companyID, err)
		}
		return record, nil
	})
}

func (o *Orchestrator) ToggleShortlist(ctx context.Context, companyID string, shortlisted bool) (map[string]any, error) {
	return o.networked(ctx, "shortlist_toggled", companyID, func(ctx context.Context) (map[string]any, error) {
		record, err := o.gw.SetShortlist(ctx, companyID, shortlisted)
		if err != nil {
			return nil, fmt.Errorf("toggle shortlist %s: %w", companyID, err)
		}
		return record, nil
	})
}

// networked is the single pipeline behind every networked operation:
// loading on, auth precondition, backend write, unconditional full refetch,
// loading off in all paths. A write failure keeps the previous state; a
// refetch failure leaves the collection empty (known consistency gap, the
// write already took effect server-side).
func (o *Orchestrator) networked(ctx context.Context, action, companyID string, write func(context.Context) (map[string]any, error)) (map[string]any, error) {
	actor, st := o.session()
	st.Dispatch(store.SetLoading{Loading: true})
	defer st.Dispatch(store.SetLoading{Loading: false})

	if actor == nil {
		return nil, ErrNotAuthenticated
	}

	var result map[string]any
	if write != nil {
		var err error
		result, err = write(ctx)
		if err != nil {
			return nil, err
		}
		o.publishEvent(ctx, actor, action, companyID, result)
	}

	if err := o.refetch(ctx, actor, st); err != nil {
		return result, err
	}
	return result, nil
}

// refetch reloads the role-appropriate authoritative list and replaces the
// collection wholesale. Never a partial merge.
func (o *Orchestrator) refetch(ctx context.Context, actor *models.Actor, st *store.Store) error {
	raws, err := o.gw.ListCompanies(ctx, scopeFor(actor.Role))
	if err != nil {
		// explicit policy, not an accident: the view empties rather than
		// showing a list that may no longer match the backend
		st.Dispatch(store.SetCompanies{Raws: nil, Actor: actor})
		o.log.Error("refetch_failed", "err", err)
		return fmt.Errorf("reload companies: %w", err)
	}
	st.Dispatch(store.SetCompanies{Raws: raws, Actor: actor})
	o.saveSnapshot(ctx, actor, st)
	return nil
}

func scopeFor(role models.Role) gateway.ListScope {
	if role == models.RoleDeveloper {
		return gateway.ScopeDeveloper
	}
	return gateway.ScopeGeneral
}

// ---- read-only operations -------------------------------------------------

// GetCompanyByID reads one record from the backend and normalizes it. The
// stored collection is not touched.
func (o *Orchestrator) GetCompanyByID(ctx context.Context, id string) (models.Company, error) {
	actor, st := o.session()
	st.Dispatch(store.SetLoading{Loading: true})
	defer st.Dispatch(store.SetLoading{Loading: false})

	if actor == nil {
		return models.Company{}, ErrNotAuthenticated
	}
	raw, err := o.gw.GetCompany(ctx, id)
	if err != nil {
		return models.Company{}, fmt.Errorf("get company %s: %w", id, err)
	}
	return normalize.Normalize(raw), nil
}

// SendSingleEmail sends one outreach email and then tries to mark the target
// company Contacted upstream. The status write is best-effort: its failure
// is logged and swallowed so the send result still reaches the caller.
func (o *Orchestrator) SendSingleEmail(ctx context.Context, companyID string, to []string, subject, content string) (map[string]any, error) {
	actor, st := o.session()
	st.Dispatch(store.SetLoading{Loading: true})
	defer st.Dispatch(store.SetLoading{Loading: false})

	if actor == nil {
		return nil, ErrNotAuthenticated
	}
	result, err := o.gw.SendEmail(ctx, gateway.EmailPayload{
		CompanyIDs: []string{companyID},
		To:         to,
		Subject:    subject,
		Content:    content,
	})
	if err != nil {
		return nil, fmt.Errorf("send email: %w", err)
	}

	if _, err := o.gw.UpdateCompany(ctx, companyID, map[string]any{"status": string(models.StatusContacted)}); err != nil {
		o.log.Warn("post_send_status_update_failed", "company_id", companyID, "err", err)
	}
	return result, nil
}

func (o *Orchestrator) SendGroupEmail(ctx context.Context, companyIDs []string, to []string, subject, content string) (map[string]any, error) {
	actor, st := o.session()
	st.Dispatch(store.SetLoading{Loading: true})
	defer st.Dispatch(store.SetLoading{Loading: false})

	if actor == nil {
		return nil, ErrNotAuthenticated
	}
	result, err := o.gw.SendEmail(ctx, gateway.EmailPayload{
		CompanyIDs: companyIDs,
		To:         to,
		Subject:    subject,
		Content:    content,
	})
	if err != nil {
		return nil, fmt.Errorf("send group email: %w", err)
	}
	return result, nil
}

func (o *Orchestrator) ListSentEmails(ctx context.Context, page, limit int) ([]models.EmailMessage, error) {
	actor, st := o.session()
	st.Dispatch(store.SetLoading{Loading: true})
	defer st.Dispatch(store.SetLoading{Loading: false})

	if actor == nil {
		return nil, ErrNotAuthenticated
	}
	raws, err := o.gw.ListSentEmails(ctx, page, limit)
	if err != nil {
		return nil, fmt.Errorf("list sent emails: %w", err)
	}
	out := make([]models.EmailMessage, 0, len(raws))
	for _, raw := range raws {
		out = append(out, decodeEmail(raw))
	}
	return out, nil
}

func (o *Orchestrator) GetSentEmail(ctx context.Context, id string) (models.EmailMessage, error) {
	actor, st := o.session()
	st.Dispatch(store.SetLoading{Loading: true})
	defer st.Dispatch(store.SetLoading{Loading: false})

	if actor == nil {
		return models.EmailMessage{}, ErrNotAuthenticated
	}
	raw, err := o.gw.GetSentEmail(ctx, id)
	if err != nil {
		return models.EmailMessage{}, fmt.Errorf("get sent email %s: %w", id, err)
	}
	return decodeEmail(raw), nil
}

// ---- warm start and events ------------------------------------------------

// WarmStart seeds the collection from the snapshot store, through the same
// SetCompanies funnel a refetch uses. Best-effort: no snapshot, no problem.
func (o *Orchestrator) WarmStart(ctx context.Context) {
	actor, st := o.session()
	if actor == nil || o.snapshots == nil {
		return
	}
	companies, err := o.snapshots.Load(ctx, actor.ID)
	if err != nil {
		o.log.Warn("snapshot_load_failed", "actor_id", actor.ID, "err", err)
		return
	}
	if len(companies) == 0 {
		return
	}
	st.Dispatch(store.SetCompanies{Raws: companiesToRaws(companies), Actor: actor})
	o.log.Info("warm_start", "actor_id", actor.ID, "companies", len(companies))
}

func (o *Orchestrator) saveSnapshot(ctx context.Context, actor *models.Actor, st *store.Store) {
	if o.snapshots == nil {
		return
	}
	if err := o.snapshots.Save(ctx, actor.ID, st.Companies()); err != nil {
		o.log.Warn("snapshot_save_failed", "actor_id", actor.ID, "err", err)
	}
}

func (o *Orchestrator) publishEvent(ctx context.Context, actor *models.Actor, action, companyID string, result map[string]any) {
	if o.pub == nil || action == "" {
		return
	}
	name := ""
	if result != nil {
		c := normalize.Normalize(result)
		if companyID == "" {
			companyID = c.ID
		}
		if c.Name != normalize.DefaultName {
			name = c.Name
		}
	}
	if name == "" {
		_, st := o.session()
		if c, ok := st.Find(companyID); ok {
			name = c.Name
		}
	}
	ev := broker.Event{
		Action:      action,
		CompanyID:   companyID,
		CompanyName: name,
		ActorID:     actor.ID,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	if err := o.pub.PublishEvent(ctx, ev); err != nil {
		o.log.Warn("event_publish_error", "action", action, "company_id", companyID, "err", err)
	}
}

// companiesToRaws routes canonical records back through the normalization
// funnel via their JSON form; the canonical field names are themselves valid
// aliases.
func companiesToRaws(companies []models.Company) []map[string]any {
	raws := make([]map[string]any, 0, len(companies))
	for _, c := range companies {
		b, err := json.Marshal(c)
		if err != nil {
			continue
		}
		var raw map[string]any
		if err := json.Unmarshal(b, &raw); err != nil {
			continue
		}
		raws = append(raws, raw)
	}
	return raws
}

func decodeEmail(raw map[string]any) models.EmailMessage {
	msg := models.EmailMessage{}
	b, err := json.Marshal(raw)
	if err != nil {
		return msg
	}
	_ = json.Unmarshal(b, &msg)
	if msg.ID == "" {
		if v, ok := raw["_id"].(string); ok {
			msg.ID = v
		}
	}
	return msg
}
