package main

import (
	"github.com/srclens/srclens/internal/cli"
)

func main() {
	cli.Execute()
}
