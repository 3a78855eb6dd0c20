package identity

import (
	"strings"
	"testing"
)

func TestResolve_Precedence(t *testing.T) {
	cases := []struct {
		name string
		raw  map[string]any
		want string
	}{
		{"client id wins", map[string]any{"clientId": "c1", "_id": "b1", "id": "b2"}, "c1"},
		{"backend _id", map[string]any{"_id": "b1", "id": "b2"}, "b1"},
		{"backend id", map[string]any{"id": "b2", "companyId": "b3"}, "b2"},
		{"companyId", map[string]any{"companyId": "b3"}, "b3"},
		{"numeric id", map[string]any{"id": float64(42)}, "42"},
	}
	for _, tc := range cases {
		got := Resolve(tc.raw)
		if got.Synthesized {
			t.Fatalf("%s: unexpected synthesized id %q", tc.name, got.Value)
		}
		if got.Value != tc.want {
			t.Fatalf("%s: want=%q got=%q", tc.name, tc.want, got.Value)
		}
	}
}

func TestResolve_SynthesizesWhenAbsent(t *testing.T) {
	for _, raw := range []map[string]any{
		{},
		{"_id": ""},
		{"id": "   "},
		{"_id": map[string]any{"oid": "nested"}}, // unusable shape
	} {
		got := Resolve(raw)
		if !got.Synthesized {
			t.Fatalf("raw=%v: expected synthesized id, got %q", raw, got.Value)
		}
		if !IsSynthesized(got.Value) {
			t.Fatalf("synthesized id %q missing local- prefix", got.Value)
		}
	}
}

func TestSynthesize_Distinct(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := Synthesize()
		if seen[id] {
			t.Fatalf("duplicate synthesized id %q after %d draws", id, i)
		}
		if !strings.HasPrefix(id, "local-") {
			t.Fatalf("bad prefix: %q", id)
		}
		seen[id] = true
	}
}
