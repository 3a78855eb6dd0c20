// Package normalize maps arbitrary upstream records into the canonical
// Company shape. The upstream's field names and envelopes drift across
// endpoints, so every field resolves through a fixed alias order with a
// documented fallback; Normalize never fails and never returns a partially
// defaulted record.
package normalize

import (
	"strings"

	"github.com/leadhawk/prospect-sync/internal/identity"
	"github.com/leadhawk/prospect-sync/internal/models"
	"github.com/leadhawk/prospect-sync/internal/utils"
)

const (
	DefaultName    = "Unnamed Company"
	DefaultWebsite = "#"
	DefaultValue   = "N/A"
)

// Normalize converts one raw upstream record into a canonical Company.
// First non-empty alias wins per field; nil, missing and blank strings all
// count as absent. A nil raw yields a fully defaulted record.
func Normalize(raw map[string]any) models.Company {
	if raw == nil {
		raw = map[string]any{}
	}

	c := models.Company{
		ID:                   identity.Resolve(raw).Value,
		Name:                 firstString(raw, DefaultName, "companyName", "name", "title", "company_name"),
		Website:              firstString(raw, DefaultWebsite, "website", "websiteUrl", "url", "site"),
		Email:                firstString(raw, DefaultValue, "email", "companyEmail", "contactEmail"),
		ContactPerson:        firstString(raw, DefaultValue, "contactPerson", "contact_person"),
		PersonName:           firstString(raw, DefaultValue, "personName", "person_name"),
		PhoneNumber:          firstString(raw, DefaultValue, "phoneNumber", "phone", "phone_number"),
		AlternatePhoneNumber: firstString(raw, DefaultValue, "alternatePhoneNumber", "altPhone"),
		Industry:             firstString(raw, DefaultValue, "industry", "sector"),
		Description:          firstString(raw, "", "description", "about"),
		DateAdded:            firstString(raw, "", "dateAdded", "createdAt", "created_at"),
		IsShortlisted:        boolField(raw, "isShortlisted", "shortlisted", "is_shortlisted"),
		Status:               statusField(raw),
		Responses:            responsesField(raw),
		Requirements:         requirementsField(raw),
	}

	c.GSTNumber = taxField(raw, "gstNumber", "gst")
	c.PANNumber = taxField(raw, "panNumber", "pan")
	fillCreator(&c, raw)
	return c
}

// Many applies Normalize element-wise, preserving input order.
func Many(raws []map[string]any) []models.Company {
	out := make([]models.Company, 0, len(raws))
	for _, raw := range raws {
		out = append(out, Normalize(raw))
	}
	return out
}

// fillCreator resolves ownership attribution from a nested creator object or
// from flat alias fields, and records every distinct identifier seen so the
// visibility match can check the full union.
func fillCreator(c *models.Company, raw map[string]any) {
	c.CreatorName = firstString(raw, DefaultValue, "creatorName")
	c.CreatorEmail = firstString(raw, DefaultValue, "creatorEmail")

	var ids []string
	switch created := raw["createdBy"].(type) {
	case map[string]any:
		for _, key := range []string{"_id", "id"} {
			if v := stringValue(created[key]); v != "" {
				ids = append(ids, v)
			}
		}
		if c.CreatorName == DefaultValue {
			if v := stringValue(created["name"]); v != "" {
				c.CreatorName = v
			}
		}
		if c.CreatorEmail == DefaultValue {
			if v := stringValue(created["email"]); v != "" {
				c.CreatorEmail = v
			}
		}
	case string:
		if v := strings.TrimSpace(created); v != "" {
			ids = append(ids, v)
		}
	}
	for _, key := range []string{"creatorId", "userId"} {
		if v := stringValue(raw[key]); v != "" {
			ids = append(ids, v)
		}
	}

	seen := map[string]bool{}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if c.CreatorID == "" {
			c.CreatorID = id
			continue
		}
		c.CreatorAliases = append(c.CreatorAliases, id)
	}
}

func responsesField(raw map[string]any) []models.Response {
	out := []models.Response{}
	for _, key := range []string{"responses", "companyResponses"} {
		items, ok := raw[key].([]any)
		if !ok {
			continue
		}
		for _, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			out = append(out, models.Response{
				ID:      firstString(m, "", "id", "_id"),
				Date:    firstString(m, "", "date", "createdAt"),
				Subject: firstString(m, "", "subject"),
				Content: firstString(m, "", "content", "body", "message"),
			})
		}
		break
	}
	return out
}

func requirementsField(raw map[string]any) *models.Requirements {
	for _, key := range []string{"requirements", "companyRequirements"} {
		m, ok := raw[key].(map[string]any)
		if !ok {
			continue
		}
		return &models.Requirements{
			Roles:      stringSlice(m["roles"]),
			TechStack:  stringSlice(m["techStack"]),
			HiringType: firstString(m, "", "hiringType", "hiring_type"),
			Budget:     firstString(m, "", "budget"),
			Notes:      firstString(m, "", "notes"),
		}
	}
	return nil
}

func statusField(raw map[string]any) models.Status {
	v := stringValue(raw["status"])
	if s, ok := models.KnownStatuses[strings.ToLower(strings.TrimSpace(v))]; ok {
		return s
	}
	return models.StatusUnknown
}

func taxField(raw map[string]any, keys ...string) string {
	v := firstString(raw, "", keys...)
	if v == "" {
		return DefaultValue
	}
	if s := utils.SanitizeTaxID(v); s != "" {
		return s
	}
	return DefaultValue
}

func firstString(raw map[string]any, def string, keys ...string) string {
	for _, key := range keys {
		if v := stringValue(raw[key]); v != "" {
			return v
		}
	}
	return def
}

func boolField(raw map[string]any, keys ...string) bool {
	for _, key := range keys {
		switch v := raw[key].(type) {
		case bool:
			return v
		case string:
			if strings.EqualFold(v, "true") {
				return true
			}
		}
	}
	return false
}

func stringValue(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return s
}

func stringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
