package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/adaptiq/internal/practice"
	"github.com/abhisek/adaptiq/internal/store"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset all learner progress (items and topics are kept)",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			fmt.Print("This erases every answer history and review schedule. Continue? [y/N] ")
			line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			if a := strings.ToLower(strings.TrimSpace(line)); a != "y" && a != "yes" {
				fmt.Println("Aborted.")
				return nil
			}
		}

		return withService(cmd, func(ctx context.Context, _ *store.Store, svc *practice.Service) error {
			if err := svc.Reset(ctx); err != nil {
				return err
			}
			fmt.Println("Progress reset.")
			return nil
		})
	},
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}
