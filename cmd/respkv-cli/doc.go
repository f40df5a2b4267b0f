// Package main provides the entry point for respkv-cli.
//
// respkv-cli sends commands to a respkv server over RESP:
//
//	respkv-cli -s 127.0.0.1:6379 SET greeting "hello"
//	respkv-cli -o json HGETALL user:1
//	respkv-cli status
//
// With no command it starts an interactive prompt.
package main
