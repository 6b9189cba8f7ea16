// Package gemini provides a translation.Provider backed by Google's Gemini API.
//
// This package is an infrastructure adapter: it turns the shared translation
// prompts into Gemini GenerateContent calls and maps the SDK's failures onto
// the translation package's sentinel errors. Prompting, retries and reply
// parsing are shared with the other LLM providers through package llm.
//
// The package depends on google.golang.org/genai for talking to the API.
package gemini
