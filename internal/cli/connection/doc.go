// Package connection provides the RESP client used by respkv-cli.
//
// A Client owns one TCP connection and sends commands one at a time,
// reading exactly one reply frame for each.
package connection
