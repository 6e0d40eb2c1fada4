// Package repository provides a generic, GORM-backed data-access layer for
// records that embed domain.EntityBase.
//
// A Repository is bound to one *gorm.DB handle. Bind a request-scoped handle
// (or a transaction via WithTx) and do not share one instance across
// goroutines issuing unrelated units of work.
//
// Entity-shaped types get three behaviors for free: client-side UUID
// generation on insert, audit stamping (created_* on insert, modify_* on every
// update), and soft-delete filtering. Default reads exclude rows whose
// is_deleted flag is true; Unscoped returns a view that sees them.
//
// List results without an explicit order come back in the store's natural
// order, which is unspecified. Page defaults to created_time DESC, id DESC for
// entity types so that slicing is deterministic.
package repository
