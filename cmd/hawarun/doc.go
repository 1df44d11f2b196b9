// Package main hosts the hawarun CLI.
//
// hawarun reads one game manifest, turns it into a launch request and hands
// it to the privileged launcher daemon over its Unix socket. The daemon's
// reply is printed to stdout unchanged; diagnostics and logs go to stderr.
package main
