// Package cmd implements the CLI commands for the avltool executable.
package cmd

import (
	"github.com/ergoplatform/avltree-go/cli"
)

// RootCmd represents the base "avltool" command when called without any
// subcommands.
var RootCmd = cli.NewRootCommand("avltool",
	"Workbench for the authenticated AVL+ dictionary",
	`avltool exercises the authenticated AVL+ dictionary end to end: it
proves batches of random operations, replays every proof on a verifier
holding only the previous digest, and publishes the resulting digests
as a signed hash chain.`)
