// Command yatube runs the Yatube blog server and its management commands.
//
//	yatube migrate up
//	yatube group create --title Cats --slug cats
//	yatube serve --addr :8000
package main

import "github.com/Ogyrecheg/yatube/internal/cli"

func main() {
	cli.Execute()
}
