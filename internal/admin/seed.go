// Package admin holds one-off operational tasks run via `cmd/api -task`.
package admin

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/leadhawk/prospect-sync/internal/gateway"
	"github.com/leadhawk/prospect-sync/internal/utils"
)

//go:embed seeds/companies.json
var companiesJSON []byte

type seedItem struct {
	CompanyName string `json:"companyName"`
	Website     string `json:"website"`
	Email       string `json:"email"`
	Industry    string `json:"industry"`
	GSTNumber   string `json:"gstNumber"`
	PANNumber   string `json:"panNumber"`
	Description string `json:"description"`
}

// Creator is the slice of the gateway the seeder needs.
type Creator interface {
	CreateCompany(ctx context.Context, fields map[string]any, attachments []gateway.Attachment) (map[string]any, error)
}

// SeedCompanies pushes the embedded sample prospects to the upstream backend.
// Idempotent: a conflict from the backend means the record exists and is
// skipped. Records with an invalid GST or PAN are skipped, not fixed.
func SeedCompanies(ctx context.Context, gw Creator, log *slog.Logger) error {
	var items []seedItem
	if err := json.Unmarshal(companiesJSON, &items); err != nil {
		return err
	}

	for _, s := range items {
		gst := utils.SanitizeTaxID(s.GSTNumber)
		if gst != "" && !utils.ValidateGST(gst) {
			log.Warn("seed_skip_invalid_gst", "company", s.CompanyName, "raw", s.GSTNumber)
			continue
		}
		pan := utils.SanitizeTaxID(s.PANNumber)
		if pan != "" && !utils.ValidatePAN(pan) {
			log.Warn("seed_skip_invalid_pan", "company", s.CompanyName, "raw", s.PANNumber)
			continue
		}

		fields := map[string]any{
			"companyName": s.CompanyName,
			"website":     s.Website,
			"email":       s.Email,
			"industry":    s.Industry,
			"description": s.Description,
		}
		if gst != "" {
			fields["gstNumber"] = gst
		}
		if pan != "" {
			fields["panNumber"] = pan
		}

		// short per-item timeout so one slow create does not stall the batch
		ictx, cancel := context.WithTimeout(ctx, 5*time.Second)
		_, err := gw.CreateCompany(ictx, fields, nil)
		cancel()

		if err != nil {
			var httpErr *gateway.HTTPError
			if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusConflict {
				log.Info("seed_company_exists", "company", s.CompanyName)
				continue
			}
			return err
		}
		log.Info("seed_company_created", "company", s.CompanyName)
	}

	log.Info("seed_companies_done", "count", len(items))
	return nil
}
