// Package server exposes the review relay over HTTP.
//
// Routes:
//
//	POST /api/review  {code, fileName} -> {fileName, reviewResults: {comprehensive_review}}
//	GET  /health      {status, services: {code_review, ollama_integration}}
//
// Relay failures map to status codes by kind: invalid input is 400, a failed
// generation call is 502 and anything unexpected is 500 with a traceback.
// CORS applies to /api/* only.
//
// [Client] speaks the same contract from the other side so the batch reviewer
// can target a running server instead of calling the relay in-process.
package server
