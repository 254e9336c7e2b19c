package rbac

// Effect is the disposition a statement applies to matching permissions.
type Effect string

const (
	// EffectPermit grants the matched permission.
	EffectPermit Effect = "permit"

	// EffectForbid denies the matched permission. At equal specificity a
	// forbid always wins over a permit.
	EffectForbid Effect = "forbid"
)

// Statement is a permission pattern tagged with an effect. Statements are
// owned by exactly one role or one user.
type Statement struct {
	Effect  Effect
	Pattern Rbac
}

// ParseStatements builds a statement set from permit and forbid pattern
// strings, as stored on roles and users. The first malformed pattern aborts
// the whole parse.
func ParseStatements(permits []string, forbids []string) ([]Statement, error) {
	statements := make([]Statement, 0, len(permits)+len(forbids))

	for _, permit := range permits {
		pattern, err := Parse(permit)
		if err != nil {
			return nil, err
		}
		statements = append(statements, Statement{Effect: EffectPermit, Pattern: pattern})
	}

	for _, forbid := range forbids {
		pattern, err := Parse(forbid)
		if err != nil {
			return nil, err
		}
		statements = append(statements, Statement{Effect: EffectForbid, Pattern: pattern})
	}

	return statements, nil
}
