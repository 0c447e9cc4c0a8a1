// Package logging configures structured JSON logging for codesift.
//
// Records always go to stderr because stdout carries the JSON-RPC stream.
// A size-rotated log file can be added with --log-file or server.log_file,
// and `codesift logs` tails and follows that file.
package logging
