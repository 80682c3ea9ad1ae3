// Command blockform drives questionnaire sessions from the terminal: an
// interactive survey, HTML snapshots, the P&L preview and taxonomy lookups.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(newApp()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorColor.Sprint("error: ")+err.Error())
		os.Exit(1)
	}
}
