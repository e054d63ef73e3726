package employee

import "context"

// EmployeeRepository is the read side of the employee directory plus the
// single write path used by operator-invoked auto-registration.
type EmployeeRepository interface {
	// GetByCodes returns the active employees whose code matches any of
	// the given codes exactly. Codes with no match are simply absent
	// from the result.
	GetByCodes(ctx context.Context, codes []string) ([]Employee, error)

	// GetByNormalizedCodes matches codes after trimming and upper-casing
	// both sides.
	GetByNormalizedCodes(ctx context.Context, codes []string) ([]Employee, error)

	// GetAllActive is the fallback bulk fetch used when a batch lookup
	// fails, and the candidate source for fuzzy name matching.
	GetAllActive(ctx context.Context) ([]Employee, error)

	GetByID(ctx context.Context, id string) (Employee, error)

	// Create registers a new directory entry. Only the auto-registration
	// action calls this from the engine.
	Create(ctx context.Context, newEmployee Employee) (Employee, error)
}
