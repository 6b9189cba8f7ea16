// Package service contains the application use cases for flashcards. It
// orchestrates domain objects, the stores defined in internal/store and the
// translation chain.
//
// Key components:
//
// 1. CardService:
//   - Card CRUD with partial updates and create-or-update saves
//   - Per-language tag aggregation for session filters
//   - Optional translation generation when a card is created
//
// 2. session.Service (subpackage):
//   - Practice session lifecycle: sampling, progress, answers and statistics
//
// Services receive their dependencies through constructor injection and
// depend on store interfaces, never on a specific database.
package service
