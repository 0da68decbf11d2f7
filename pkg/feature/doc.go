// Package feature turns raw form submissions into the fixed-order feature
// vector the trained price pipeline expects. Build is a pure function: it
// validates the thirteen submitted fields, parses the numeric ones, coerces
// the Yes/No flags and derives pixel density (ppi) from the resolution and
// screen size. Categorical values pass through untouched; the pipeline's own
// encoder decides whether it knows them.
package feature
