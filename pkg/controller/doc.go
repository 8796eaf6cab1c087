// Package controller is the entry point hosts drive. A Controller owns one
// form session: the element tree, its state store and its collection
// manager. Every accepted action performs exactly one mutation and requests
// exactly one redraw from the host Surface; rejected actions change nothing
// and return a distinguishable error.
//
// Controllers are not safe for concurrent use. Hosts call them from their
// event loop, one action at a time.
package controller
