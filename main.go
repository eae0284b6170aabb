// Package main is the entry point for the vidlink application.
package main

import (
	"github.com/vidlink-cli/vidlink/cmd"
	"github.com/vidlink-cli/vidlink/config"
	"github.com/vidlink-cli/vidlink/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}
