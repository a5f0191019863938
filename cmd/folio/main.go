// Command folio serves a portfolio page from a JSON document, exports it as
// static HTML and browses it from a terminal.
package main

import (
	"context"
	"os"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
