// Package main provides the strand binary entry point: standalone
// analysis of service documents (validation, reference graph, declared
// names) without constructing anything.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newApp().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
