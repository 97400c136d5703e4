package main

import "github.com/mcoot/gomoku-go/internal/cli"

func main() {
	cli.Execute()
}
