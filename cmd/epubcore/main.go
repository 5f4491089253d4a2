// Command epubcore is a thin inspection CLI over the epubcore library. It is
// a demonstration binary, not part of the library's public contract.
package main

import "github.com/ebookpipe/epubcore/cmd/epubcore/commands"

func main() {
	commands.Execute()
}
