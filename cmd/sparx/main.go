package main

import "github.com/nfrund/sparx/cmd/sparx/cmd"

func main() {
	cmd.Execute()
}
