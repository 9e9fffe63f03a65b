// Package editor is the rich-content toolbar of quill.
//
// A Draft holds the content in progress. Formatting commands wrap a range of
// it in inline markup, images are read asynchronously and appended as
// self-contained data URIs, and Commit hands back well-formed, sanitized
// markup ready for core.Store.CreateNote. The Store never sees intermediate
// formatting state.
package editor
