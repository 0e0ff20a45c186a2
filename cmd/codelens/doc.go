// Codelens relays source code to a locally hosted LLM and returns a free-text review.
//
// It runs either as a small HTTP service that reviews one file per request,
// or as a batch job that walks a repository and writes a single report.
//
// Usage:
//
//	codelens serve                      # POST /api/review, GET /health on :5000
//	codelens batch .                    # review the tree, write reports/code_review.md
//	codelens batch --relay-url http://localhost:5000 src
//	codelens review main.go             # review one file
//	codelens review --name a.py < a.py  # review stdin
//	codelens models doctor              # check the model is installed and responding
package main
