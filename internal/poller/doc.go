// Package poller repeatedly reads a candidate until its extraction status
// is terminal.
//
// A Poller owns at most one loop at a time. Starting a new loop cancels the
// previous one, and a cancelled loop's in-flight read can never reach the
// sink: every sink mutation happens under the poller's lock after checking
// that the loop is still the current one. Reads of one loop are strictly
// sequential, with the next read scheduled a fixed interval after the
// previous one resolved.
package poller
