package main

import "github.com/vietddude/authkit/internal/cli"

func main() {
	cli.Execute()
}
