// Package google provides shared plumbing for the Gmail API: service
// construction from a token provider, API error classification into the
// domain taxonomy, and client-side rate limiting.
package google
