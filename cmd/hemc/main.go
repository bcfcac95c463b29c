package main

import (
	"os"

	"github.com/hemlang/hemc/cmd/hemc/cmd"
)

var version = "v0.1.0"

func main() {
	os.Exit(cmd.Execute(version))
}
