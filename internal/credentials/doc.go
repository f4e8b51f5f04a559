// Package credentials persists the ordered list of known platform accounts.
//
// Two backends implement Store: FileStore keeps a JSON list next to the
// binary, SQLiteStore keeps the same list in a goose-migrated SQLite table.
// Both load an absent store as an empty list and report unreadable storage
// as ErrStorageUnreadable alongside an empty list, so a corrupt file never
// prevents the operator from enrolling again.
//
// Accounts is the in-memory list. Its mutators return a new slice; nothing
// is durable until Store.Save is called.
package credentials
