// Package connectors provides implementations of the MailConnector
// interface. The only source for this tool is Gmail; the google
// subpackage holds the shared Google API plumbing (auth, errors,
// rate limiting) and google/gmail the connector itself.
package connectors
