package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Adolar0042/warden/internal/orchestrator"
)

var (
	switchHostname string
	switchName     string
)

var switchCmd = &cobra.Command{
	Use:   "switch",
	Short: "Switch the active credential for a host",
	RunE: func(c *cobra.Command, args []string) error {
		ctx := context.Background()
		app, err := newApp(ctx)
		if err != nil {
			return err
		}

		host, activated, err := app.Switch(ctx, switchHostname, switchName)
		if err != nil && switchName == "" {
			// More than two candidates and no --name given: per spec.md §6,
			// prompt the user to pick one instead of failing.
			host, activated, err = promptAndSwitch(app, switchHostname)
		}
		if err != nil {
			return err
		}
		fmt.Printf("Switched to %q on %s.\n", activated, host)
		return nil
	},
}

// promptAndSwitch lists the candidate credential names for host and
// prompts the user to pick one, grounded on
// inovacc-clonr/cmd/helpers.go's plain fmt.Scanln-based prompting (no TUI
// framework), per spec.md §6's "else prompts" rule for switch.
func promptAndSwitch(app *orchestrator.App, hostname string) (string, string, error) {
	ctx := context.Background()
	host, names, err := app.SwitchCandidates(ctx, hostname)
	if err != nil {
		return "", "", err
	}
	if len(names) == 0 {
		return "", "", fmt.Errorf("no credentials for host %q", host)
	}

	fmt.Println("Multiple credentials available:")
	for i, n := range names {
		fmt.Printf("  %d) %s\n", i+1, n)
	}
	line, err := readLine("Pick a credential: ")
	if err != nil {
		return "", "", err
	}
	idx, err := strconv.Atoi(line)
	if err != nil || idx < 1 || idx > len(names) {
		return "", "", fmt.Errorf("invalid selection %q", line)
	}
	chosen := names[idx-1]
	if err := app.Activate(host, chosen); err != nil {
		return "", "", err
	}
	return host, chosen, nil
}

func init() {
	switchCmd.Flags().StringVar(&switchHostname, "hostname", "", "host to switch")
	switchCmd.Flags().StringVar(&switchName, "name", "", "credential name to activate")
	rootCmd.AddCommand(switchCmd)
}

func readLine(prompt string) (string, error) {
	fmt.Fprint(os.Stdout, prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
