// Package api exposes cards, practice sessions and translation over a local
// JSON HTTP API under /api/v1. Handlers translate HTTP concerns into service
// calls and map service errors to sanitized responses.
package api
