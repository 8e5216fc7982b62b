// headelf scores business context against industry verticals and routes
// executive decisions to industry handlers.
package main

import "github.com/pauljbernard/headelf/internal/cli"

func main() {
	cli.Execute()
}
