package main

import "github.com/updkit/latestgen/cmd/latestgen/cmd"

func main() {
	cmd.Execute()
}
