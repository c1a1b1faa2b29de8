package main

import (
	"os"

	"github.com/vaultshq/vaults-governance/ingestionservice"
)

func main() {
	if err := ingestionservice.Run(); err != nil {
		os.Exit(1)
	}
}
