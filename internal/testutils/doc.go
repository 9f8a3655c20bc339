// Package testutils provides shared test helpers: a FakeClock that makes poll
// scheduling observable, and sample files with payloads whose media type
// detection is predictable.
//
// The in-memory backend lives in the fakebackend subpackage.
package testutils
