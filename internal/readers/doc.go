// Package readers provides implementations of the DocumentReader interface
// for the supported input formats. Each reader knows how to pull page text
// out of one container format.
//
// Readers are registered with the Registry at startup.
package readers
