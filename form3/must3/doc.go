// Package must3 builds analytic fields. Constructors panic on invalid
// parameters; package form3 wraps them returning errors instead.
package must3
