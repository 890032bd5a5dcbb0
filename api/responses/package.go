// Package responses defines the JSON bodies returned by the screening API.
// Errors are not listed here; they are rendered as RFC 7807 problem details.
package responses
