package main

import (
	"jobfuzz/cmd"
	"os"
)

func main() {
	os.Exit(cmd.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
