// Package connection provides the RESP client used by respkv-cli.
//
// Commands are sent as arrays of bulk strings and replies are decoded
// with github.com/tidwall/resp.
package connection
