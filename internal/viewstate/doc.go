// Package viewstate holds what a view currently shows for one candidate:
// the latest snapshot, the document request preview derived from it, and
// the document list. Snapshots are replaced whole, never patched.
package viewstate
