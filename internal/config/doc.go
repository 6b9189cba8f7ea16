// Package config handles configuration loading, parsing, and validation
// from various sources (environment variables, files). It provides type-safe
// access to application settings needed by different components while keeping
// configuration details separate from business logic.
//
// Every key can be overridden with an FCARDS_ prefixed environment variable,
// for example FCARDS_PROVIDERS_GEMINI_API_KEY or FCARDS_TRANSLATION_PRIMARY_PROVIDER.
package config
