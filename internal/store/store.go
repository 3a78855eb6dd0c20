// Package store holds the canonical in-memory collection for one
// authenticated session. All transitions go through a closed set of actions
// reduced by a pure function; SetCompanies is the single funnel through which
// raw upstream payloads become stored records.
package store

import (
	"sync"

	"github.com/leadhawk/prospect-sync/internal/identity"
	"github.com/leadhawk/prospect-sync/internal/models"
	"github.com/leadhawk/prospect-sync/internal/normalize"
	"github.com/leadhawk/prospect-sync/internal/visibility"
)

type State struct {
	Companies []models.Company
	Loading   bool
}

// Action is a closed set; see the concrete types below.
type Action interface{ isAction() }

// SetCompanies replaces the whole collection with the normalized, scoped
// payload. Never a partial merge.
type SetCompanies struct {
	Raws  []map[string]any
	Actor *models.Actor
}

type SetLoading struct{ Loading bool }

// AddCompanyLocal inserts an ephemeral record built from a partial raw
// payload. The id comes from the identity resolver; a collision with an
// existing record forces a synthesized one so id uniqueness always holds.
type AddCompanyLocal struct{ Partial map[string]any }

// UpdateCompanyLocal replaces the record whose id matches the payload's
// resolved id with a freshly normalized copy. A miss is a no-op.
type UpdateCompanyLocal struct{ Raw map[string]any }

type DeleteCompanyLocal struct{ ID string }

// AddResponseLocal appends a response to the target and forces its status to
// Responded. Receiving a response implies the status transition; that
// coupling is a business rule, not an artifact.
type AddResponseLocal struct {
	ID       string
	Response models.Response
}

// AddRequirementsLocal replaces the target's requirements wholesale.
type AddRequirementsLocal struct {
	ID           string
	Requirements models.Requirements
}

type ToggleShortlistLocal struct {
	ID          string
	Shortlisted bool
}

func (SetCompanies) isAction()         {}
func (SetLoading) isAction()           {}
func (AddCompanyLocal) isAction()      {}
func (UpdateCompanyLocal) isAction()   {}
func (DeleteCompanyLocal) isAction()   {}
func (AddResponseLocal) isAction()     {}
func (AddRequirementsLocal) isAction() {}
func (ToggleShortlistLocal) isAction() {}

// Reduce transitions state by one action. Pure: the input state is not
// mutated and the returned state owns its slice.
func Reduce(s State, a Action) State {
	switch act := a.(type) {
	case SetCompanies:
		return State{
			Companies: visibility.Scope(normalize.Many(act.Raws), act.Actor),
			Loading:   s.Loading,
		}

	case SetLoading:
		return State{Companies: s.Companies, Loading: act.Loading}

	case AddCompanyLocal:
		c := normalize.Normalize(act.Partial)
		for _, existing := range s.Companies {
			if existing.ID == c.ID {
				c.ID = identity.Synthesize()
				break
			}
		}
		return State{Companies: append(copyCompanies(s.Companies), c), Loading: s.Loading}

	case UpdateCompanyLocal:
		c := normalize.Normalize(act.Raw)
		return replace(s, c.ID, func(models.Company) models.Company { return c })

	case DeleteCompanyLocal:
		out := make([]models.Company, 0, len(s.Companies))
		for _, c := range s.Companies {
			if c.ID != act.ID {
				out = append(out, c)
			}
		}
		return State{Companies: out, Loading: s.Loading}

	case AddResponseLocal:
		return replace(s, act.ID, func(c models.Company) models.Company {
			c.Responses = append(append([]models.Response{}, c.Responses...), act.Response)
			c.Status = models.StatusResponded
			return c
		})

	case AddRequirementsLocal:
		return replace(s, act.ID, func(c models.Company) models.Company {
			r := act.Requirements
			c.Requirements = &r
			return c
		})

	case ToggleShortlistLocal:
		return replace(s, act.ID, func(c models.Company) models.Company {
			c.IsShortlisted = act.Shortlisted
			return c
		})
	}
	return s
}

// replace swaps the record with the given id using fn. No matching id, no
// change.
func replace(s State, id string, fn func(models.Company) models.Company) State {
	out := copyCompanies(s.Companies)
	for i, c := range out {
		if c.ID == id {
			out[i] = fn(c)
			break
		}
	}
	return State{Companies: out, Loading: s.Loading}
}

func copyCompanies(in []models.Company) []models.Company {
	out := make([]models.Company, len(in))
	copy(out, in)
	return out
}

// Store is the session-owned state container. One instance exists per
// authenticated session; it is torn down and rebuilt when the actor changes.
// Dispatches are atomic; there is no partially applied state visible.
type Store struct {
	mu    sync.RWMutex
	state State
}

func New() *Store {
	return &Store{state: State{Companies: []models.Company{}}}
}

func (s *Store) Dispatch(a Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Reduce(s.state, a)
}

// Snapshot returns the current state with its own copy of the collection.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{Companies: copyCompanies(s.state.Companies), Loading: s.state.Loading}
}

func (s *Store) Companies() []models.Company {
	return s.Snapshot().Companies
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Loading
}

// Find returns the stored record with the given id, if any.
func (s *Store) Find(id string) (models.Company, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.state.Companies {
		if c.ID == id {
			return c, true
		}
	}
	return models.Company{}, false
}
