package normalize

import (
	"reflect"
	"testing"

	"github.com/leadhawk/prospect-sync/internal/identity"
	"github.com/leadhawk/prospect-sync/internal/models"
)

func TestNormalize_EmptyRecordIsTotal(t *testing.T) {
	for _, raw := range []map[string]any{nil, {}} {
		c := Normalize(raw)
		if c.ID == "" || !identity.IsSynthesized(c.ID) {
			t.Fatalf("want synthesized id, got %q", c.ID)
		}
		if c.Name != DefaultName {
			t.Fatalf("name=%q want=%q", c.Name, DefaultName)
		}
		if c.Website != DefaultWebsite {
			t.Fatalf("website=%q want=%q", c.Website, DefaultWebsite)
		}
		if c.Email != DefaultValue {
			t.Fatalf("email=%q want=%q", c.Email, DefaultValue)
		}
		if c.Responses == nil || len(c.Responses) != 0 {
			t.Fatalf("responses=%#v want empty non-nil", c.Responses)
		}
		if c.Requirements != nil {
			t.Fatalf("requirements=%#v want nil", c.Requirements)
		}
		if c.IsShortlisted {
			t.Fatal("isShortlisted should default false")
		}
		if c.Status != models.StatusUnknown {
			t.Fatalf("status=%q want=%q", c.Status, models.StatusUnknown)
		}
		for field, v := range map[string]string{
			"contactPerson": c.ContactPerson, "personName": c.PersonName,
			"phoneNumber": c.PhoneNumber, "alternatePhoneNumber": c.AlternatePhoneNumber,
			"gstNumber": c.GSTNumber, "panNumber": c.PANNumber, "industry": c.Industry,
			"creatorName": c.CreatorName, "creatorEmail": c.CreatorEmail,
		} {
			if v != DefaultValue {
				t.Fatalf("%s=%q want=%q", field, v, DefaultValue)
			}
		}
	}
}

// Scenario from the acceptance list: aliased name/website, everything else
// defaulted.
func TestNormalize_AliasScenario(t *testing.T) {
	c := Normalize(map[string]any{
		"companyName": "Acme",
		"websiteUrl":  "https://acme.io",
	})
	if c.Name != "Acme" || c.Website != "https://acme.io" {
		t.Fatalf("unexpected: %#v", c)
	}
	if c.Email != DefaultValue || len(c.Responses) != 0 || c.Requirements != nil ||
		c.IsShortlisted || c.Status != models.StatusUnknown {
		t.Fatalf("defaults not applied: %#v", c)
	}
}

func TestNormalize_AliasOrderFirstNonEmptyWins(t *testing.T) {
	c := Normalize(map[string]any{
		"companyName": "",
		"name":        "From name",
		"title":       "From title",
		"website":     "  ",
		"url":         "https://x.dev",
	})
	if c.Name != "From name" {
		t.Fatalf("name=%q", c.Name)
	}
	// blank website alias counts as absent, url slot is after websiteUrl
	if c.Website != "https://x.dev" {
		t.Fatalf("website=%q", c.Website)
	}
}

func TestNormalize_CreatorShapes(t *testing.T) {
	// nested object
	c := Normalize(map[string]any{
		"createdBy": map[string]any{"_id": "u1", "name": "Ana", "email": "ana@x.io"},
		"userId":    "u1-alias",
	})
	if c.CreatorID != "u1" || c.CreatorName != "Ana" || c.CreatorEmail != "ana@x.io" {
		t.Fatalf("nested creator: %#v", c)
	}
	if !reflect.DeepEqual(c.CreatorAliases, []string{"u1-alias"}) {
		t.Fatalf("aliases: %#v", c.CreatorAliases)
	}
	if !c.OwnedBy("u1") || !c.OwnedBy("u1-alias") || c.OwnedBy("u2") {
		t.Fatal("ownership union mismatch")
	}

	// flat string creator
	c = Normalize(map[string]any{"createdBy": "u9"})
	if c.CreatorID != "u9" || len(c.CreatorAliases) != 0 {
		t.Fatalf("flat creator: %#v", c)
	}

	// flat alias only
	c = Normalize(map[string]any{"creatorId": "u3"})
	if c.CreatorID != "u3" {
		t.Fatalf("creatorId alias: %#v", c)
	}
}

func TestNormalize_ResponsesPreserveOrder(t *testing.T) {
	c := Normalize(map[string]any{
		"companyResponses": []any{
			map[string]any{"id": "r1", "subject": "first", "body": "hello"},
			map[string]any{"_id": "r2", "subject": "second", "content": "again"},
			"garbage",
		},
	})
	if len(c.Responses) != 2 {
		t.Fatalf("responses: %#v", c.Responses)
	}
	if c.Responses[0].ID != "r1" || c.Responses[0].Content != "hello" {
		t.Fatalf("first response: %#v", c.Responses[0])
	}
	if c.Responses[1].ID != "r2" || c.Responses[1].Subject != "second" {
		t.Fatalf("second response: %#v", c.Responses[1])
	}
}

func TestNormalize_Requirements(t *testing.T) {
	c := Normalize(map[string]any{
		"requirements": map[string]any{
			"roles":      []any{"backend", "sre"},
			"techStack":  []any{"go", 42, "postgres"},
			"hiringType": "contract",
			"budget":     "10LPA",
		},
	})
	r := c.Requirements
	if r == nil {
		t.Fatal("requirements nil")
	}
	if !reflect.DeepEqual(r.Roles, []string{"backend", "sre"}) {
		t.Fatalf("roles: %#v", r.Roles)
	}
	if !reflect.DeepEqual(r.TechStack, []string{"go", "postgres"}) {
		t.Fatalf("techStack: %#v", r.TechStack)
	}
	if r.HiringType != "contract" || r.Budget != "10LPA" {
		t.Fatalf("requirements: %#v", r)
	}
}

func TestNormalize_Status(t *testing.T) {
	cases := []struct {
		in   any
		want models.Status
	}{
		{"Contacted", models.StatusContacted},
		{"responded", models.StatusResponded},
		{"SHORTLISTED", models.StatusShortlisted},
		{"something-else", models.StatusUnknown},
		{nil, models.StatusUnknown},
		{42, models.StatusUnknown},
	}
	for _, tc := range cases {
		c := Normalize(map[string]any{"status": tc.in})
		if c.Status != tc.want {
			t.Fatalf("status in=%v want=%q got=%q", tc.in, tc.want, c.Status)
		}
	}
}

func TestNormalize_TaxFieldsSanitized(t *testing.T) {
	c := Normalize(map[string]any{
		"gst": " 27 aapfu0939f 1zv",
		"pan": "aapfu-0939f",
	})
	if c.GSTNumber != "27AAPFU0939F1ZV" {
		t.Fatalf("gst=%q", c.GSTNumber)
	}
	if c.PANNumber != "AAPFU0939F" {
		t.Fatalf("pan=%q", c.PANNumber)
	}
}

func TestMany_PreservesOrder(t *testing.T) {
	out := Many([]map[string]any{
		{"id": "a", "name": "A"},
		{"id": "b", "name": "B"},
	})
	if len(out) != 2 || out[0].ID != "a" || out[1].ID != "b" {
		t.Fatalf("order: %#v", out)
	}
}
