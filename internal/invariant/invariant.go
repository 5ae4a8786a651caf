// Package invariant holds the single assertion used for programmer-error
// conditions that must never occur in a correctly built CodeDefinition
// (spec §7: "violations are programmer errors and abort the process").
package invariant

import "fmt"

// Assert panics with a formatted message if cond is false. It is reserved
// for invariants the rest of the package has already established are
// unreachable in practice (e.g. "a real card code must error-correct to
// itself") — never for ordinary input validation, which returns an error
// instead.
func Assert(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("invariant violated: "+format, args...))
	}
}
