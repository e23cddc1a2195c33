package main

import (
	"fmt"
	"os"

	"github.com/jdfalk/portal-server/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
