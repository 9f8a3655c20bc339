// Package domain contains the candidate data model observed by the intake
// client: the snapshot returned by the backend, its extraction status, the
// document-request preview, and the files a caller submits. It has no
// knowledge of HTTP, polling, or presentation.
package domain
