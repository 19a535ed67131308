// Command respkv-cli is the command-line client for respkv-server.
//
// With arguments it sends them as one command and prints the reply;
// without, it starts an interactive prompt.
package main
