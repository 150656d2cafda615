// Package lifecycle detects the two moments a settings owner must flush its
// state: the end of a match, observed through host structures whose health
// drops to zero, and process shutdown, observed through OS signals or
// context cancellation.
package lifecycle
