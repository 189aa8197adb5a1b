// Command alu runs compiled Alu bytecode programs.
package main

import (
	"fmt"
	"os"

	"github.com/aluvm/alu/cmd/alu/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
