package main

import "github.com/jimmyshah83/doc-intellij-poc/internal/cli"

func main() {
	cli.Execute()
}
