package main

import "github.com/eternalApril/respkit/internal/cli"

func main() {
	cli.Execute()
}
