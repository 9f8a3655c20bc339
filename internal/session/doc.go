// Package session is one view instance over one candidate at a time.
//
// A Session owns a view state, a poller and a coordinator that share one
// gateway. Uploading or tracking a candidate starts polling it; the
// document actions run against whichever candidate is tracked. Closing the
// session stops polling and clears the view.
package session
