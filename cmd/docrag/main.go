package main

import "github.com/akolanti/DocRAG/internal/cli"

func main() {
	cli.Execute()
}
