package main

import "github.com/kreilos/leggio-release/cmd/leggio-release/cmd"

func main() {
	cmd.Execute()
}
