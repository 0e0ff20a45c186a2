// Package review contains the request relay and the types shared by the
// interactive server and the batch reviewer.
//
// A [Relay] takes a code blob and its file name, substitutes them into a
// fixed prompt template together with the configured review categories, and
// makes exactly one call to the generation service. The model's text comes
// back verbatim as a [Result]; nothing is parsed or scored.
//
// Failures are reported as [*Error] values tagged with a [Kind]
// (InvalidInput, Upstream, Internal). Callers branch on [KindOf] rather than
// on message text.
//
// Review categories come from the REVIEW_CATEGORIES string and, optionally,
// a YAML categories file (categories.go) whose focus areas and required
// checks are appended to the prompt.
package review
