// Package output renders server replies for respkv-cli.
//
//   - raw: redis-cli style ("(integer) 1", "(nil)", numbered arrays)
//   - json: indented JSON
//   - yaml: YAML documents
package output
