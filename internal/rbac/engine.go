package rbac

// Evaluate decides a required permission against a statement set.
//
// Among matching statements only the highest-specificity ones count: a forbid
// at that level denies, otherwise a permit at that level grants. No matching
// statement at all means default-deny.
func Evaluate(statements []Statement, required Rbac) bool {
	best := -1
	permitted := false

	for _, statement := range statements {
		if !statement.Pattern.Matches(required) {
			continue
		}

		specificity := statement.Pattern.Specificity()
		switch {
		case specificity > best:
			best = specificity
			permitted = statement.Effect == EffectPermit
		case specificity == best && statement.Effect == EffectForbid:
			permitted = false
		}
	}

	return best >= 0 && permitted
}

// HasPermission parses the required permission string and evaluates it
// against the statement set. A malformed required string fails the whole
// check with ErrMalformedRbac.
func HasPermission(statements []Statement, required string) (bool, error) {
	ask, err := Parse(required)
	if err != nil {
		return false, err
	}
	return Evaluate(statements, ask), nil
}
