// Package connection provides the client side of respkv-cli.
//
//   - client.go: a RESP client over TCP or TLS
//   - manager.go: the current connection, redialed after it drops
//   - http.go: the admin HTTP endpoint
package connection
