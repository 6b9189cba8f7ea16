// Package translation evaluates and generates translations through a chain
// of pluggable providers. It abstracts the details of external LLM APIs
// (Gemini, Claude, OpenAI) behind the Provider interface so the session
// engine never couples to a specific service.
//
// A Chain tries the configured primary provider, then one fallback provider,
// and finally degrades to a deterministic baseline translator that cannot
// fail. Provider failures are enriched into a ProviderError that callers can
// surface as a non-blocking warning.
package translation
