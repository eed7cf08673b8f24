package main

import "os"

func main() {
	// Execute returns the translated exit status; this is the single
	// point where the process terminates.
	os.Exit(Execute())
}
