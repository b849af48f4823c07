// Package document models the editor's shared document state and the actions
// that mutate it.
//
// The tree is treated as immutable: Replace and Reduce return new values and
// never write into the input. Unchanged zones are shared between the input and
// the result, so callers must not mutate entries they receive.
//
// Root props have a single canonical shape (RootData.Props). Older documents
// stored root fields flat on the root object; Decode normalises those at the
// ingestion boundary and the reducer normalises the legacy SetDataAction, so no
// other code needs to know the flat form existed.
package document
