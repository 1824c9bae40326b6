package main

import (
	"github.com/noislabs/drand-relay/cmd/relay/cmd"
)

func main() {
	cmd.Execute()
}
