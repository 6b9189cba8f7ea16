// Package sqlstore implements the store interfaces on top of database/sql
// using sqlx for scanning and squirrel for query building.
//
// The embedded sqlite3 driver is the default backend of the desktop app;
// the same stores run against PostgreSQL through the pgx stdlib driver.
// Schema migrations are embedded and applied with goose.
package sqlstore
