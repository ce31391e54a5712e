// Command ductflow solves gas pipeline cases from YAML files and prints the
// results as JSON.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
