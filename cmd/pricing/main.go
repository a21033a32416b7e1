// Package main is the offline pricing CLI.
//
// It runs the same recommendation pipeline as the HTTP service against a
// request document read from a file or stdin, and prints the result as JSON or YAML.
package main

import "os"

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
