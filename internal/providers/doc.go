// Package providers implements the client for the local generation service.
//
// The only backend is Ollama's native API: [Ollama.Generate] posts a single
// non-streaming completion request to /api/generate and [Ollama.ListModels]
// reads /api/tags. There are no retries; a failed call is reported to the
// caller once. Non-200 responses surface as [*StatusError].
//
// The HTTP client is injectable so that tests can redirect calls to local
// httptest servers without a running model.
package providers
