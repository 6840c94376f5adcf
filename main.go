// Package main is the entry point for the Chainledger CLI application.
// It signs users in to the ledger service and keeps their session fresh.
package main

import (
	"chainledger/cli/cmd"
)

func main() {
	cmd.Execute()
}
