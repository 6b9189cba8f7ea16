// Package testutils provides testing utilities shared by the store, service
// and API tests.
//
// It contains helpers for:
//  1. Opening a fresh, migrated in-memory SQLite database per test
//  2. Creating test flashcards with functional options
//  3. Persisting test cards through a store.CardStore
//
// A typical store test looks like:
//
//	db := testutils.NewTestDB(t)
//	cards := sqlstore.NewCardStore(db, nil)
//	card := testutils.MustInsertCard(t, cards,
//	    testutils.WithCardContent("hello"),
//	    testutils.WithCardTags("greeting"),
//	)
package testutils
