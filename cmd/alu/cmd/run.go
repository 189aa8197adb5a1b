package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aluvm/alu/internal/vm"
	"github.com/aluvm/alu/pkg/platform/native"
	"github.com/spf13/cobra"
)

func runFile(_ *cobra.Command, args []string) error {
	path := args[0]

	p := native.New()
	s := vm.NewState(p, os.Stdout)
	if verbose {
		s.Verbose = true
		s.SetTrace(os.Stderr)
	}

	if err := s.StartFile(path); err != nil {
		exitWithError("%s", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT)
	done := make(chan struct{})
	go func() {
		select {
		case <-sigCh:
			s.Interrupt()
		case <-done:
		}
	}()

	runErr := s.Execute()
	close(done)
	signal.Stop(sigCh)

	if runErr != nil {
		fmt.Fprintln(os.Stderr, runErr)
		os.Exit(1)
	}
	if status := s.Close(os.Stderr); status != 0 {
		os.Exit(status)
	}
	return nil
}
