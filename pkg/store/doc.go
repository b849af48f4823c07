// Package store is a reference editor host and document persistence layer.
//
// Session owns an AppState, applies document actions through document.Reduce
// and keeps an undo history. It implements fields.Host: ResolveData runs the
// configured data-resolution hooks for every entity an edit touched and then
// commits the result with a single history-recording SetAction.
//
// Store persists document data per Ref. Documents wraps a Store to open
// sessions and to apply optimistic, ETag-checked mutations:
//
//	Store -> Documents.Open -> Session -> Documents.Commit -> Store
package store
