// AngelaMos | 2026
// main.go

package main

import (
	"fmt"
	"os"

	"github.com/nutriai/backend/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
