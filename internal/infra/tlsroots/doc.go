// Package tlsroots loads TLS material for respkv.
//
//   - roots.go: trusted CA pools for clients dialing a TLS listener
//   - watcher.go: a server key pair that reloads when its files change
package tlsroots
