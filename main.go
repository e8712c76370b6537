// Package main is the entry point for the squawka CLI tool, which parses
// Squawka match feeds and extracts expected-goals features for every shot.
package main

import "github.com/pable/squawka-xg/cmd"

func main() {
	cmd.Execute()
}
