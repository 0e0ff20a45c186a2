// Package logging builds the process logger: a log/slog text or JSON handler
// wrapped in a [SanitizingHandler] that masks credentials before they reach
// the output.
//
// Attributes are masked when their key names a credential (authorization,
// cookie, token, password, api key and the like) or when their value looks
// like one (bearer tokens, JWTs, private key headers). Groups are sanitized
// recursively.
package logging
