package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/adaptiq/internal/drill"
	"github.com/abhisek/adaptiq/internal/practice"
	"github.com/abhisek/adaptiq/internal/selection"
	"github.com/abhisek/adaptiq/internal/session"
	"github.com/abhisek/adaptiq/internal/store"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Compose a practice session and print it",
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := sessionRequest(cmd)
		if err != nil {
			return err
		}
		asJSON, _ := cmd.Flags().GetBool("json")

		return withService(cmd, func(ctx context.Context, _ *store.Store, svc *practice.Service) error {
			sess, err := svc.BuildSession(ctx, req)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(sess)
			}

			fmt.Printf("Session %s\n", sess.ID)
			fmt.Printf("%-20s  %-16s  %-16s  %s\n", "Item", "Reason", "Topic", "Question")
			fmt.Println(strings.Repeat(rule, 100))
			for _, it := range sess.Items {
				fmt.Printf("%-20s  %-16s  %-16s  %s\n",
					truncate(it.ID, 20), sess.Categories[it.ID], truncate(it.Topic, 16), truncate(it.Question, 44))
			}
			b := sess.Breakdown
			fmt.Printf("\n%d items: %d due, %d weak spot, %d at risk, %d prerequisite, %d new\n",
				len(sess.Items), b.DueForReview, b.WeakSpots, b.AtRisk, b.Prerequisites, b.NewContent)
			return nil
		})
	},
}

var drillCmd = &cobra.Command{
	Use:   "drill",
	Short: "Practice a session interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := sessionRequest(cmd)
		if err != nil {
			return err
		}
		return withService(cmd, func(ctx context.Context, _ *store.Store, svc *practice.Service) error {
			sess, err := svc.BuildSession(ctx, req)
			if err != nil {
				return err
			}
			sum, err := drill.Run(ctx, svc, sess)
			if err != nil {
				return err
			}
			fmt.Printf("Answered %d, correct %d\n", sum.Answered, sum.Correct)
			if len(sum.QueuedPrerequisites) > 0 {
				fmt.Printf("Review next: %s\n", strings.Join(sum.QueuedPrerequisites, ", "))
			}
			return nil
		})
	},
}

// sessionRequest builds a session request from the shared session flags.
func sessionRequest(cmd *cobra.Command) (session.Request, error) {
	count, _ := cmd.Flags().GetInt("count")
	topic, _ := cmd.Flags().GetString("topic")
	noDue, _ := cmd.Flags().GetBool("no-due")
	plain, _ := cmd.Flags().GetBool("plain")
	shortRatio, _ := cmd.Flags().GetFloat64("short-ratio")
	if count < 0 {
		return session.Request{}, fmt.Errorf("--count must not be negative")
	}
	if shortRatio < 0 || shortRatio > 1 {
		return session.Request{}, fmt.Errorf("--short-ratio must be between 0 and 1")
	}

	opts := selection.DefaultOptions()
	opts.IncludeDue = !noDue
	opts.ShortFormRatio = shortRatio
	if plain {
		opts.PrioritizeAtRisk = false
		opts.PrioritizeWeakSpots = false
		opts.MatchDifficulty = false
	}
	return session.Request{Count: count, TopicFilter: topic, Options: opts}, nil
}

func addSessionFlags(cmd *cobra.Command) {
	cmd.Flags().Int("count", 0, "Number of items (0 = configured default)")
	cmd.Flags().String("topic", "", "Only use items of this topic")
	cmd.Flags().Bool("no-due", false, "Do not reserve slots for due reviews")
	cmd.Flags().Bool("plain", false, "Disable weak-spot, at-risk and difficulty weighting")
	cmd.Flags().Float64("short-ratio", 0, "Share of short-form items (0 = configured default)")
}

func init() {
	addSessionFlags(sessionCmd)
	addSessionFlags(drillCmd)
	sessionCmd.Flags().Bool("json", false, "Print the session as JSON")
}
