package cmd

import (
	"github.com/ergoplatform/avltree-go/cli"
)

var versionCmd = cli.NewVersionCommand("avltool")

func init() {
	RootCmd.AddCommand(versionCmd)
}
