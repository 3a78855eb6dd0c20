package handlers

import (
	"context"
	"errors"

	"github.com/leadhawk/prospect-sync/internal/gateway"
	"github.com/leadhawk/prospect-sync/internal/models"
)

type syncerMock struct {
	SetActorFn        func(actor *models.Actor)
	WarmStartFn       func(ctx context.Context)
	CompaniesFn       func() []models.Company
	FetchCompaniesFn  func(ctx context.Context) error
	GetCompanyByIDFn  func(ctx context.Context, id string) (models.Company, error)
	CreateCompanyFn   func(ctx context.Context, fields map[string]any, attachments []gateway.Attachment) (map[string]any, error)
	UpdateCompanyFn   func(ctx context.Context, id string, fields map[string]any) (map[string]any, error)
	DeleteCompanyFn   func(ctx context.Context, id string) error
	AddResponseFn     func(ctx context.Context, companyID string, resp models.Response) (map[string]any, error)
	AddRequirementsFn func(ctx context.Context, companyID string, req models.Requirements) (map[string]any, error)
	ToggleShortlistFn func(ctx context.Context, companyID string, shortlisted bool) (map[string]any, error)
	SendSingleEmailFn func(ctx context.Context, companyID string, to []string, subject, content string) (map[string]any, error)
	SendGroupEmailFn  func(ctx context.Context, companyIDs []string, to []string, subject, content string) (map[string]any, error)
	ListSentEmailsFn  func(ctx context.Context, page, limit int) ([]models.EmailMessage, error)
	GetSentEmailFn    func(ctx context.Context, id string) (models.EmailMessage, error)

	actor *models.Actor
}

func (m *syncerMock) SetActor(actor *models.Actor) {
	m.actor = actor
	if m.SetActorFn != nil {
		m.SetActorFn(actor)
	}
}
func (m *syncerMock) WarmStart(ctx context.Context) {
	if m.WarmStartFn != nil {
		m.WarmStartFn(ctx)
	}
}
func (m *syncerMock) Companies() []models.Company {
	if m.CompaniesFn == nil {
		return []models.Company{}
	}
	return m.CompaniesFn()
}
func (m *syncerMock) FetchCompanies(ctx context.Context) error {
	if m.FetchCompaniesFn == nil {
		return errors.New("FetchCompaniesFn not set")
	}
	return m.FetchCompaniesFn(ctx)
}
func (m *syncerMock) GetCompanyByID(ctx context.Context, id string) (models.Company, error) {
	if m.GetCompanyByIDFn == nil {
		return models.Company{}, errors.New("GetCompanyByIDFn not set")
	}
	return m.GetCompanyByIDFn(ctx, id)
}
func (m *syncerMock) CreateCompany(ctx context.Context, fields map[string]any, attachments []gateway.Attachment) (map[string]any, error) {
	if m.CreateCompanyFn == nil {
		return nil, errors.New("CreateCompanyFn not set")
	}
	return m.CreateCompanyFn(ctx, fields, attachments)
}
func (m *syncerMock) UpdateCompany(ctx context.Context, id string, fields map[string]any) (map[string]any, error) {
	if m.UpdateCompanyFn == nil {
		return nil, errors.New("UpdateCompanyFn not set")
	}
	return m.UpdateCompanyFn(ctx, id, fields)
}
func (m *syncerMock) DeleteCompany(ctx context.Context, id string) error {
	if m.DeleteCompanyFn == nil {
		return errors.New("DeleteCompanyFn not set")
	}
	return m.DeleteCompanyFn(ctx, id)
}
func (m *syncerMock) AddResponse(ctx context.Context, companyID string, resp models.Response) (map[string]any, error) {
	if m.AddResponseFn == nil {
		return nil, errors.New("AddResponseFn not set")
	}
	return m.AddResponseFn(ctx, companyID, resp)
}
func (m *syncerMock) AddRequirements(ctx context.Context, companyID string, req models.Requirements) (map[string]any, error) {
	if m.AddRequirementsFn == nil {
		return nil, errors.New("AddRequirementsFn not set")
	}
	return m.AddRequirementsFn(ctx, companyID, req)
}
func (m *syncerMock) ToggleShortlist(ctx context.Context, companyID string, shortlisted bool) (map[string]any, error) {
	if m.ToggleShortlistFn == nil {
		return nil, errors.New("ToggleShortlistFn not set")
	}
	return m.ToggleShortlistFn(ctx, companyID, shortlisted)
}
func (m *syncerMock) SendSingleEmail(ctx context.Context, companyID string, to []string, subject, content string) (map[string]any, error) {
	if m.SendSingleEmailFn == nil {
		return nil, errors.New("SendSingleEmailFn not set")
	}
	return m.SendSingleEmailFn(ctx, companyID, to, subject, content)
}
func (m *syncerMock) SendGroupEmail(ctx context.Context, companyIDs []string, to []string, subject, content string) (map[string]any, error) {
	if m.SendGroupEmailFn == nil {
		return nil, errors.New("SendGroupEmailFn not set")
	}
	return m.SendGroupEmailFn(ctx, companyIDs, to, subject, content)
}
func (m *syncerMock) ListSentEmails(ctx context.Context, page, limit int) ([]models.EmailMessage, error) {
	if m.ListSentEmailsFn == nil {
		return nil, errors.New("ListSentEmailsFn not set")
	}
	return m.ListSentEmailsFn(ctx, page, limit)
}
func (m *syncerMock) GetSentEmail(ctx context.Context, id string) (models.EmailMessage, error) {
	if m.GetSentEmailFn == nil {
		return models.EmailMessage{}, errors.New("GetSentEmailFn not set")
	}
	return m.GetSentEmailFn(ctx, id)
}
