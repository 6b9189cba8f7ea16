// Package domain contains the core business entities, value objects, and
// domain logic of the application: flashcards and their tags, practice
// sessions with their progress state machine, and the request/result values
// exchanged with translation providers. It is independent of any specific
// storage or delivery mechanism.
package domain
