// Package gateway is the HTTP transport to the candidate backend.
//
// Each Client method makes exactly one request. Caller input is validated
// locally first and rejected with a *domain.ValidationError; anything that
// goes wrong on the wire or at the backend comes back as a *TransportError
// whose Message is fit for display.
package gateway
