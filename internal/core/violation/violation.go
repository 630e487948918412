// Package violation defines the error taxonomy shared by the graph, gate and
// scheduler cores. Every rejected operation returns an *Error wrapping one of
// the sentinel errors below, so callers can match with errors.Is and read the
// structured detail with errors.As.
package violation

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors, one per failure class.
var (
	ErrDuplicateID           = errors.New("duplicate id")
	ErrPrefixMismatch        = errors.New("prefix mismatch")
	ErrFilenameMismatch      = errors.New("filename mismatch")
	ErrMissingRequiredField  = errors.New("missing required field")
	ErrBrokenChain           = errors.New("broken chain")
	ErrParentNotApproved     = errors.New("parent not approved")
	ErrResearchRequiredUnmet = errors.New("research required unmet")
	ErrNonSequentialID       = errors.New("non-sequential id")
	ErrForbiddenTransition   = errors.New("forbidden transition")
	ErrCyclicDependency      = errors.New("cyclic dependency")
	ErrCyclicSprintScope     = errors.New("cyclic sprint scope")
	ErrDependencyNotReady    = errors.New("dependency not ready")
	ErrNotSchedulable        = errors.New("not schedulable")
	ErrSprintActive          = errors.New("sprint active")
	ErrNotFound              = errors.New("not found")
	ErrConflict              = errors.New("revision conflict")
)

// Gate names, used in logs, metrics and reports.
const (
	GatePrefix              = "prefix"
	GateFields              = "fields"
	GateOrphan              = "orphan"
	GateParentStatus        = "parent-status"
	GateDuplicate           = "duplicate"
	GateMonotonic           = "id-monotonic"
	GateTransition          = "transition"
	GateDependencyReadiness = "dependency-readiness"
	GateCycle               = "cycle"
	GateSprint              = "sprint"
	GateStore               = "store"
)

// Error is a structured gate failure.
type Error struct {
	Code       error  // one of the sentinels above
	Gate       string // gate that raised it
	ArtifactID string
	Ref        string   // offending reference or field name
	Expected   string   // what the gate wanted
	Actual     string   // what it found
	Path       []string // cycle path, when relevant
}

// Error implements error.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Code.Error())
	if e.ArtifactID != "" {
		fmt.Fprintf(&b, ": %s", e.ArtifactID)
	}
	if e.Ref != "" {
		fmt.Fprintf(&b, " (%s)", e.Ref)
	}
	if e.Expected != "" || e.Actual != "" {
		fmt.Fprintf(&b, ": expected %s, got %s", orNone(e.Expected), orNone(e.Actual))
	}
	if len(e.Path) > 0 {
		fmt.Fprintf(&b, ": %s", strings.Join(e.Path, " -> "))
	}
	return b.String()
}

// Unwrap exposes the sentinel for errors.Is.
func (e *Error) Unwrap() error {
	return e.Code
}

func orNone(s string) string {
	if s == "" {
		return "<none>"
	}
	return s
}

// New builds an *Error.
func New(code error, gate, artifactID string) *Error {
	return &Error{Code: code, Gate: gate, ArtifactID: artifactID}
}

// WithRef sets the offending reference.
func (e *Error) WithRef(ref string) *Error {
	e.Ref = ref
	return e
}

// Want sets expected/actual values.
func (e *Error) Want(expected, actual string) *Error {
	e.Expected = expected
	e.Actual = actual
	return e
}

// WithPath sets the cycle path.
func (e *Error) WithPath(path []string) *Error {
	e.Path = append([]string(nil), path...)
	return e
}

// NotFound is shorthand for a missing artifact or record.
func NotFound(id string) *Error {
	return New(ErrNotFound, GateStore, id)
}

// CodeName returns the taxonomy name of an error (e.g. "BrokenChain"), or ""
// when err does not carry one of the sentinels.
func CodeName(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.name
		}
	}
	return ""
}

var codes = []struct {
	err  error
	name string
}{
	{ErrDuplicateID, "DuplicateId"},
	{ErrPrefixMismatch, "PrefixMismatch"},
	{ErrFilenameMismatch, "FilenameMismatch"},
	{ErrMissingRequiredField, "MissingRequiredField"},
	{ErrBrokenChain, "BrokenChain"},
	{ErrParentNotApproved, "ParentNotApproved"},
	{ErrResearchRequiredUnmet, "ResearchRequiredUnmet"},
	{ErrNonSequentialID, "NonSequentialId"},
	{ErrForbiddenTransition, "ForbiddenTransition"},
	{ErrCyclicDependency, "CyclicDependency"},
	{ErrCyclicSprintScope, "CyclicSprintScope"},
	{ErrDependencyNotReady, "DependencyNotReady"},
	{ErrNotSchedulable, "NotSchedulable"},
	{ErrSprintActive, "SprintActive"},
	{ErrNotFound, "NotFound"},
	{ErrConflict, "Conflict"},
}

// Report aggregates violations from a full diagnostic pass.
type Report struct {
	Violations []*Error
}

// Add appends a violation.
func (r *Report) Add(e *Error) {
	r.Violations = append(r.Violations, e)
}

// HasErrors reports whether any violation was found.
func (r *Report) HasErrors() bool {
	return len(r.Violations) > 0
}

// ByCode returns the violations carrying the given sentinel.
func (r *Report) ByCode(code error) []*Error {
	var out []*Error
	for _, v := range r.Violations {
		if errors.Is(v, code) {
			out = append(out, v)
		}
	}
	return out
}

// Sort orders violations by artifact ID then code name for stable output.
func (r *Report) Sort() {
	sort.SliceStable(r.Violations, func(i, j int) bool {
		a, b := r.Violations[i], r.Violations[j]
		if a.ArtifactID != b.ArtifactID {
			return a.ArtifactID < b.ArtifactID
		}
		return CodeName(a) < CodeName(b)
	})
}

// Summary renders a human-readable report.
func (r *Report) Summary() string {
	if !r.HasErrors() {
		return "All artifacts are valid. No traceability issues found."
	}
	lines := []string{fmt.Sprintf("Found %d issue(s):", len(r.Violations))}
	for _, v := range r.Violations {
		lines = append(lines, fmt.Sprintf("  [%s] %s", CodeName(v), v.Error()))
	}
	return strings.Join(lines, "\n")
}
