// Package cmd wires warden's cobra command tree to the Command
// Orchestrator (C9), grounded on inovacc-clonr/cmd/root.go's root-command
// structure (stripped of the teacher's TPM/daemon initialization, which
// has no place in warden's single-process design — see DESIGN.md).
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Adolar0042/warden/internal/orchestrator"
	"github.com/Adolar0042/warden/internal/xdgpaths"
)

var forceDevice bool

var rootCmd = &cobra.Command{
	Use:           "warden",
	Short:         "Git credential helper and per-repository identity profile switcher",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&forceDevice, "device", false, "force the OAuth Device Authorization Grant for this command")
}

// Execute runs the root command and translates errors into the exit
// codes spec.md §6 defines: 0 success, 1 user error, 2 provider/flow
// failure, 3 I/O.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "warden:", err)
		os.Exit(exitCodeFor(err))
	}
}

func warnToStderr(msg string) {
	fmt.Fprintln(os.Stderr, "warden: warning:", msg)
}

func isTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newApp loads warden's configuration and builds the wired-up
// orchestrator App for the current invocation.
func newApp(ctx context.Context) (*orchestrator.App, error) {
	oauthPath, err := xdgpaths.OAuthConfigPath()
	if err != nil {
		return nil, err
	}
	profilesPath, err := xdgpaths.ProfilesConfigPath()
	if err != nil {
		return nil, err
	}
	statePath, err := xdgpaths.StatePath()
	if err != nil {
		return nil, err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return orchestrator.New(ctx, oauthPath, profilesPath, statePath, cwd, forceDevice, isTTY, warnToStderr)
}
