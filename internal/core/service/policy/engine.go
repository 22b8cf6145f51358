package policy

import (
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/techcorp/classified-doc-broker/internal/core/entity"
)

// evalEnv is the expression environment every compiled policy row runs
// against (spec.md §6 resource policy examples: role and clearance rank
// must both be satisfied).
type evalEnv struct {
	Role                 string
	Department           string
	ClearanceRank        int
	ResourceRequiredRank int
}

// Engine implements port.PolicyEngine by compiling each resource policy row
// into an expr-lang/expr program once, then evaluating it per request. A
// RequiredRole of entity.AnyRole compiles to the literal "true" for the role
// half of the check (spec.md §4.11/§6).
type Engine struct {
	mu       sync.RWMutex
	programs map[string]*vm.Program
	policies map[string]entity.ResourcePolicy
}

// New constructs an empty Engine; call Compile before Evaluate.
func New() *Engine {
	return &Engine{
		programs: make(map[string]*vm.Program),
		policies: make(map[string]entity.ResourcePolicy),
	}
}

// Compile implements port.PolicyEngine.
func (e *Engine) Compile(policies []entity.ResourcePolicy) error {
	programs := make(map[string]*vm.Program, len(policies))
	rows := make(map[string]entity.ResourcePolicy, len(policies))

	for _, p := range policies {
		roleExpr := fmt.Sprintf("Role == %q", p.RequiredRole)
		if p.RequiredRole == entity.AnyRole {
			roleExpr = "true"
		}
		source := fmt.Sprintf("(%s) && ClearanceRank >= ResourceRequiredRank", roleExpr)

		program, err := expr.Compile(source, expr.Env(evalEnv{}))
		if err != nil {
			return fmt.Errorf("policy engine: compile %s: %w", p.ResourceID, err)
		}
		programs[p.ResourceID] = program
		rows[p.ResourceID] = p
	}

	e.mu.Lock()
	e.programs = programs
	e.policies = rows
	e.mu.Unlock()
	return nil
}

// Evaluate implements port.PolicyEngine.
func (e *Engine) Evaluate(resourceID string, role string, clearance entity.ClassificationLevel) (bool, error) {
	e.mu.RLock()
	program, ok := e.programs[resourceID]
	row := e.policies[resourceID]
	e.mu.RUnlock()
	if !ok {
		return false, entity.ErrResourceNotFound
	}

	env := evalEnv{
		Role:                 role,
		ClearanceRank:        clearance.Rank(),
		ResourceRequiredRank: row.RequiredClearance.Rank(),
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("policy engine: evaluate %s: %w", resourceID, err)
	}
	allowed, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("policy engine: non-bool result for %s", resourceID)
	}
	return allowed, nil
}
