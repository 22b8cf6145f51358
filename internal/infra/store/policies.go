package store

import "github.com/techcorp/classified-doc-broker/internal/core/entity"

// Policies implements resourceauth.PolicyLookup from a fixed, configured
// resource policy table (spec.md §6).
type Policies struct {
	rows map[string]entity.ResourcePolicy
}

// NewPolicies builds a Policies lookup from configuration rows.
func NewPolicies(rows []entity.ResourcePolicy) *Policies {
	m := make(map[string]entity.ResourcePolicy, len(rows))
	for _, r := range rows {
		m[r.ResourceID] = r
	}
	return &Policies{rows: m}
}

// Lookup resolves a resourceID to its policy row.
func (p *Policies) Lookup(resourceID string) (entity.ResourcePolicy, bool) {
	row, ok := p.rows[resourceID]
	return row, ok
}

// All returns every configured policy row, used by the policy engine's
// Compile step.
func (p *Policies) All() []entity.ResourcePolicy {
	out := make([]entity.ResourcePolicy, 0, len(p.rows))
	for _, r := range p.rows {
		out = append(out, r)
	}
	return out
}
