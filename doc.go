// Package quill is the Composition Root for the quill note store.
//
// It connects the note store (pkg/core) with the persistence adapters
// (pkg/adapters) using the Hexagonal Architecture pattern.
//
// A vault holds two values: the notes list and the category list, stored
// under the keys "notes" and "noteCategories" as JSON arrays. The default
// adapter writes them as files in a directory, optionally versioned with Git.
// Redis, SQLite and in-memory adapters share the same contract.
//
// Features:
//
//   - **Categorized notes**: create, edit, delete and list notes per category.
//   - **Durable by default**: every mutation is written before it is visible.
//   - **Rich content**: pkg/editor applies formats and embeds images as data URIs.
//   - **Git history**: with versioning on, every change becomes a commit.
//
// Usage:
//
//	store, err := quill.New(ctx, "./vault",
//		quill.WithAutoInit(true),
//		quill.WithLogger(logger),
//	)
//
//	note, changed, err := store.CreateNote(ctx, "<b>Buy milk</b>", "Personal")
package quill
