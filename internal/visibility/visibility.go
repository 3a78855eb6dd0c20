// Package visibility restricts a canonical collection to the records an
// actor may see. It only ever drops records; it never adds or rewrites them.
package visibility

import "github.com/leadhawk/prospect-sync/internal/models"

// Scope filters companies for actor.
//
// admin sees everything. employee keeps only records owned by them under the
// three-way creator match (the upstream is inconsistent about which ownership
// shape it returns, so the union is checked). developer passes through: the
// backend enforces ownership server-side on that role's dedicated endpoint.
// Any other role, and a missing actor, see nothing.
func Scope(companies []models.Company, actor *models.Actor) []models.Company {
	if actor == nil {
		return []models.Company{}
	}
	switch actor.Role {
	case models.RoleAdmin, models.RoleDeveloper:
		return companies
	case models.RoleEmployee:
		out := []models.Company{}
		for _, c := range companies {
			if c.OwnedBy(actor.ID) {
				out = append(out, c)
			}
		}
		return out
	default:
		return []models.Company{}
	}
}
