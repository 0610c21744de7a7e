// Package main provides the entry point for the xsearch CLI.
//
// xsearch is a thin caller around the go-xsearch library: it parses flags
// and an optional YAML config, builds an authenticated client from a cookie
// file, and runs a concurrent search crawl.
package main

// main is the entry point for xsearch.
func main() {
	Execute()
}
