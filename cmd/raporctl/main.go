// Command raporctl runs report card and promotion operations from a terminal,
// against the same database the API serves.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := execute(&cli{}, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
