// Package collection manages the rows of repeatable groups (edit-groups).
//
// A Manager keeps every collection's live rows and its state list the same
// length. Rows are deep clones of the collection prototype with the row index
// written into the placeholder position of every path, nested collections
// included. Each row also gets an identity that survives renumbering, so
// hosts can tell otherwise identical rows apart.
package collection
