// Command rnstd serves React Native coding standards and code examples to AI coding
// assistants over stdio, and offers a few commands to inspect and maintain the
// resources tree it serves from.
//
// Running rnstd without a subcommand starts the stdio server. Diagnostics go to the log
// file; stdout carries protocol traffic only.
package main

import (
	"fmt"
	"os"

	"rnstd/internal/tui/styles"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styles.ErrorStyle.Render("Error: ")+err.Error())
		os.Exit(1)
	}
}
