// Command lzss decodes LZSS asset containers.
//
//	lzss [-v] [-passthrough] infile outfile
//	lzss -inspect file...
//	lzss -o dir [-passthrough] file...
//	lzss -serve [-addr :8080]
package main

import (
	"log"
	"os"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("lzss: ")
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
