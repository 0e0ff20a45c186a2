// Package redact removes secrets from source files before they are sent to
// the generation service.
//
// Detection uses named regex rules covering common secret shapes: private
// keys, cloud and SaaS tokens, JWTs, bearer headers, database connection
// strings with inline passwords and generic secret assignments. [Scan]
// reports which rules fired.
//
// Files whose paths match the configured glob patterns are replaced with a
// single notice instead of being scanned. A [Redactor] bundles that path
// policy so the review relay can apply it per file.
package redact
