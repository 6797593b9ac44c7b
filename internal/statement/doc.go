// Package statement turns a pasted brokerage statement export into
// normalised rows: it locates the transactions header, reads the client
// details from the preamble, and parses dates and amounts into fixed-scale
// values. It performs no classification and touches no storage.
package statement
