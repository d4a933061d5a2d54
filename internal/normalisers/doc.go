// Package normalisers provides implementations of the Normaliser
// interface. The mail subpackage converts a raw RFC 822 message into
// a plain-text document ready for chunking.
package normalisers
