package main

import (
	"github.com/klanec/pic2pin/pkg/cli"
)

var Version = "development"

func main() {
	cli.Execute(Version)
}
