// Package batch uploads many resumes at once. A WorkerPool runs a bounded
// number of sessions concurrently, one per file, and collects each file's
// final snapshot or error.
package batch
