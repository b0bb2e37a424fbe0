package main

import "github.com/emiliopalmerini/echonote/internal/cli"

func main() {
	cli.Execute()
}
