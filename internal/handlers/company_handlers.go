package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/leadhawk/prospect-sync/internal/gateway"
	"github.com/leadhawk/prospect-sync/internal/models"
	syncer "github.com/leadhawk/prospect-sync/internal/sync"
	"github.com/leadhawk/prospect-sync/internal/utils"
)

const requestTimeout = 15 * time.Second

type CompanyHandler struct {
	Sessions *Sessions
}

func NewCompanyHandler(sessions *Sessions) *CompanyHandler {
	return &CompanyHandler{Sessions: sessions}
}

// parseIDFromPath expects /api/companies/{id} or /api/companies/{id}/{sub}
// and returns the id and the sub-resource name (empty for the bare form).
func parseIDFromPath(path string) (id, sub string, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 3 || parts[0] != "api" || parts[1] != "companies" || parts[2] == "" {
		return "", "", false
	}
	if len(parts) == 3 {
		return parts[2], "", true
	}
	if len(parts) == 4 && parts[3] != "" {
		return parts[2], parts[3], true
	}
	return "", "", false
}

func (h *CompanyHandler) Health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// session resolves the actor from the identity headers and returns its
// orchestrator. A missing actor is a 401, written here.
func (h *CompanyHandler) session(w http.ResponseWriter, r *http.Request) (Syncer, bool) {
	actor := actorFromHeaders(r)
	if actor == nil {
		utils.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "no authenticated actor"})
		return nil, false
	}
	return h.Sessions.For(r.Context(), actor), true
}

// writeOpError maps orchestrator errors onto HTTP statuses. Upstream
// failures keep their status and message; everything else is a 502 because
// this service is a client of the real backend.
func writeOpError(w http.ResponseWriter, err error) {
	if errors.Is(err, syncer.ErrNotAuthenticated) {
		utils.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
		return
	}
	var httpErr *gateway.HTTPError
	if errors.As(err, &httpErr) {
		utils.WriteJSON(w, httpErr.StatusCode, map[string]string{"error": httpErr.Message})
		return
	}
	utils.WriteJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
}

func (h *CompanyHandler) Companies(w http.ResponseWriter, r *http.Request) {
	sy, ok := h.session(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	switch r.Method {
	case http.MethodGet:
		if err := sy.FetchCompanies(ctx); err != nil {
			writeOpError(w, err)
			return
		}
		utils.WriteJSON(w, http.StatusOK, sy.Companies())

	case http.MethodPost:
		fields, attachments, err := decodeCreateBody(r)
		if err != nil {
			utils.BadRequest(w, utils.FormatUnknownFieldError(err))
			return
		}
		record, err := sy.CreateCompany(ctx, fields, attachments)
		if err != nil {
			writeOpError(w, err)
			return
		}
		utils.WriteJSON(w, http.StatusCreated, map[string]any{
			"record":    record,
			"companies": sy.Companies(),
		})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// decodeCreateBody accepts either a JSON object or a multipart form with
// scalar fields plus uploadDocument file parts.
func decodeCreateBody(r *http.Request) (map[string]any, []gateway.Attachment, error) {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "multipart/form-data") {
		var fields map[string]any
		if err := utils.DecodeStrict(r.Body, &fields); err != nil {
			return nil, nil, err
		}
		return fields, nil, nil
	}

	if err := r.ParseMultipartForm(16 << 20); err != nil {
		return nil, nil, err
	}
	fields := make(map[string]any, len(r.MultipartForm.Value))
	for k, vs := range r.MultipartForm.Value {
		if len(vs) > 0 {
			fields[k] = vs[0]
		}
	}
	var attachments []gateway.Attachment
	for _, fh := range r.MultipartForm.File["uploadDocument"] {
		f, err := fh.Open()
		if err != nil {
			return nil, nil, err
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return nil, nil, err
		}
		attachments = append(attachments, gateway.Attachment{Filename: fh.Filename, Data: data})
	}
	return fields, attachments, nil
}

func (h *CompanyHandler) CompanyByID(w http.ResponseWriter, r *http.Request) {
	id, sub, ok := parseIDFromPath(r.URL.Path)
	if !ok {
		utils.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	sy, ok := h.session(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if sub != "" {
		h.subResource(ctx, w, r, sy, id, sub)
		return
	}

	switch r.Method {
	case http.MethodGet:
		c, err := sy.GetCompanyByID(ctx, id)
		if err != nil {
			writeOpError(w, err)
			return
		}
		utils.WriteJSON(w, http.StatusOK, c)

	case http.MethodPut:
		var fields map[string]any
		if err := utils.DecodeStrict(r.Body, &fields); err != nil {
			utils.BadRequest(w, utils.FormatUnknownFieldError(err))
			return
		}
		if _, err := sy.UpdateCompany(ctx, id, fields); err != nil {
			writeOpError(w, err)
			return
		}
		utils.WriteJSON(w, http.StatusOK, sy.Companies())

	case http.MethodDelete:
		if err := sy.DeleteCompany(ctx, id); err != nil {
			writeOpError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *CompanyHandler) subResource(ctx context.Context, w http.ResponseWriter, r *http.Request, sy Syncer, id, sub string) {
	switch {
	case sub == "responses" && r.Method == http.MethodPost:
		var dto ResponseDTO
		if err := utils.DecodeStrict(r.Body, &dto); err != nil {
			utils.BadRequest(w, utils.FormatUnknownFieldError(err))
			return
		}
		if err := validateResponseDTO(dto); err != nil {
			utils.BadRequest(w, err.Error())
			return
		}
		resp := models.Response{ID: dto.ID, Date: dto.Date, Subject: dto.Subject, Content: dto.Content}
		if _, err := sy.AddResponse(ctx, id, resp); err != nil {
			writeOpError(w, err)
			return
		}
		utils.WriteJSON(w, http.StatusOK, sy.Companies())

	case sub == "requirements" && r.Method == http.MethodPost:
		var dto RequirementsDTO
		if err := utils.DecodeStrict(r.Body, &dto); err != nil {
			utils.BadRequest(w, utils.FormatUnknownFieldError(err))
			return
		}
		if err := validateRequirementsDTO(dto); err != nil {
			utils.BadRequest(w, err.Error())
			return
		}
		req := models.Requirements{
			Roles:      dto.Roles,
			TechStack:  dto.TechStack,
			HiringType: dto.HiringType,
			Budget:     dto.Budget,
			Notes:      dto.Notes,
		}
		if _, err := sy.AddRequirements(ctx, id, req); err != nil {
			writeOpError(w, err)
			return
		}
		utils.WriteJSON(w, http.StatusOK, sy.Companies())

	case sub == "shortlist" && r.Method == http.MethodPut:
		var dto ShortlistDTO
		if err := utils.DecodeStrict(r.Body, &dto); err != nil {
			utils.BadRequest(w, utils.FormatUnknownFieldError(err))
			return
		}
		if _, err := sy.ToggleShortlist(ctx, id, dto.IsShortlisted); err != nil {
			writeOpError(w, err)
			return
		}
		utils.WriteJSON(w, http.StatusOK, sy.Companies())

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// Emails handles POST /api/emails (send) and GET /api/emails (sent list).
func (h *CompanyHandler) Emails(w http.ResponseWriter, r *http.Request) {
	sy, ok := h.session(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	switch r.Method {
	case http.MethodPost:
		var dto EmailDTO
		if err := utils.DecodeStrict(r.Body, &dto); err != nil {
			utils.BadRequest(w, utils.FormatUnknownFieldError(err))
			return
		}
		if err := validateEmailDTO(dto); err != nil {
			utils.BadRequest(w, err.Error())
			return
		}
		var result map[string]any
		var err error
		if len(dto.CompanyIDs) == 1 {
			result, err = sy.SendSingleEmail(ctx, dto.CompanyIDs[0], dto.To, dto.Subject, dto.Content)
		} else {
			result, err = sy.SendGroupEmail(ctx, dto.CompanyIDs, dto.To, dto.Subject, dto.Content)
		}
		if err != nil {
			writeOpError(w, err)
			return
		}
		utils.WriteJSON(w, http.StatusOK, result)

	case http.MethodGet:
		q := r.URL.Query()
		page, limit := 1, 50
		if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
			page = v
		}
		if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 && v <= 200 {
			limit = v
		}
		msgs, err := sy.ListSentEmails(ctx, page, limit)
		if err != nil {
			writeOpError(w, err)
			return
		}
		utils.WriteJSON(w, http.StatusOK, msgs)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// EmailByID handles GET /api/emails/{id}.
func (h *CompanyHandler) EmailByID(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 3 || parts[0] != "api" || parts[1] != "emails" || parts[2] == "" {
		utils.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sy, ok := h.session(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	msg, err := sy.GetSentEmail(ctx, parts[2])
	if err != nil {
		writeOpError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, msg)
}
