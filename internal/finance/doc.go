// Package finance holds the pure fee, reporting and payroll computations.
//
// Every function reads a snapshot and returns freshly allocated values; none of them mutate
// their inputs, touch persistence or read the wall clock. Callers pass "now" explicitly.
package finance
