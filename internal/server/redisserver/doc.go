// Package redisserver provides a Redis protocol compatible server.
//
// It implements the RESP2 request framing (arrays of bulk strings),
// the reply encodings and a small command set over an in-memory store:
//   - PING, ECHO, QUIT, COMMAND
//   - SET (EX/PX), GET, DEL, EXISTS, TTL, PTTL, DBSIZE, FLUSHALL, FLUSHDB
//   - CONFIG GET
//
// Requests are pipelined: replies for requests already read are buffered
// and flushed in a single write before the connection blocks on the socket.
package redisserver
