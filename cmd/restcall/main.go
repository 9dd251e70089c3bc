package main

import "github.com/peteraglen/restconsumer/internal/cli"

func main() {
	cli.Execute()
}
