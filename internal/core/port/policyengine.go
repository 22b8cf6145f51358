package port

import "github.com/techcorp/classified-doc-broker/internal/core/entity"

// PolicyEngine evaluates a resource policy table row against a requester's
// effective role and clearance (C14, spec.md §6 resource policy examples).
// Compiled with expr-lang/expr so policy rows can be edited without a
// redeploy; RequiredRole == entity.AnyRole compiles to a literal true.
type PolicyEngine interface {
	// Compile parses and compiles every policy row, failing fast on any
	// row whose expression does not compile.
	Compile(policies []entity.ResourcePolicy) error

	// Evaluate reports whether a requester with the given role and
	// clearance may access resourceID, per spec.md §8 invariant 8 (role AND
	// clearance must both be satisfied).
	Evaluate(resourceID string, role string, clearance entity.ClassificationLevel) (bool, error)
}
