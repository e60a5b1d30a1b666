// Package redisserver provides the Redis protocol compatible server.
//
// It serves the RESP2 subset implemented by pkg/resp and dispatches:
//
//   - PING
//   - ECHO <message>
//   - GET <key>
//   - SET <key> <value>
//
// Any other command name receives "-Unknown command". Each accepted
// connection runs in its own goroutine; all connections share one store.
// A connection that sends malformed RESP, or a frame that is not a
// command array, is closed without a reply.
package redisserver
