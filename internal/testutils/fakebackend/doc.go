// Package fakebackend runs an in-memory candidate backend on an
// httptest.Server for tests. Candidates advance through a scripted status
// sequence, one step per read, and any route can be told to fail its next
// calls with a given status and body.
package fakebackend
