// Serve a directory over HTTP for local development
package main

import (
	"github.com/localdev/devserve/cmd"
)

func main() {
	cmd.Main()
}
