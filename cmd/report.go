package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/adaptiq/internal/practice"
	"github.com/abhisek/adaptiq/internal/store"
	"github.com/abhisek/adaptiq/internal/ui/components"
)

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "List items due for review, most overdue first",
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, _ := cmd.Flags().GetString("topic")
		asJSON, _ := cmd.Flags().GetBool("json")

		return withService(cmd, func(ctx context.Context, _ *store.Store, svc *practice.Service) error {
			due, err := svc.DueItems(ctx, topic)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(due)
			}
			if len(due) == 0 {
				fmt.Println("Nothing is due.")
				return nil
			}

			fmt.Printf("%-20s  %-16s  %-8s  %8s  %s\n", "Item", "Topic", "Status", "Overdue", "Question")
			fmt.Println(strings.Repeat(rule, 100))
			for _, d := range due {
				fmt.Printf("%-20s  %-16s  %-8s  %7.1fd  %s\n",
					truncate(d.Item.ID, 20), truncate(d.Item.Topic, 16), d.Status, d.OverdueDays, truncate(d.Item.Question, 40))
			}
			fmt.Printf("\n%d items due\n", len(due))
			return nil
		})
	},
}

var weakCmd = &cobra.Command{
	Use:   "weak",
	Short: "Show weak spots and the weakest topic",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		return withService(cmd, func(ctx context.Context, _ *store.Store, svc *practice.Service) error {
			spots, err := svc.WeakSpots(ctx)
			if err != nil {
				return err
			}
			weakest, ok, err := svc.WeakestTopic(ctx)
			if err != nil {
				return err
			}
			if asJSON {
				out := map[string]any{"weak_spots": spots}
				if ok {
					out["weakest_topic"] = weakest
				}
				return printJSON(out)
			}

			if len(spots) == 0 {
				fmt.Println("No weak spots yet.")
			} else {
				fmt.Printf("%-20s  %-20s  %8s  %8s  %8s\n", "Topic", "Subtopic", "Accuracy", "Attempts", "Priority")
				fmt.Println(strings.Repeat(rule, 72))
				for _, s := range spots {
					fmt.Printf("%-20s  %-20s  %7.0f%%  %8d  %8.2f\n",
						truncate(s.Topic, 20), truncate(s.Subtopic, 20), s.Accuracy*100, s.TotalAttempts, s.Priority)
				}
			}
			if ok {
				fmt.Printf("\nWeakest topic: %s (%.0f%% over %d attempts)\n", weakest.Topic, weakest.Accuracy*100, weakest.Total)
			}
			return nil
		})
	},
}

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List topics in prerequisite order",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, st *store.Store, _ *practice.Service) error {
			graph, err := st.Topics().Graph(ctx)
			if err != nil {
				return err
			}
			if graph.Len() == 0 {
				fmt.Println("No topics imported.")
				return nil
			}

			fmt.Printf("%-20s  %-30s  %s\n", "ID", "Name", "Prerequisites")
			fmt.Println(strings.Repeat(rule, 80))
			for _, t := range graph.TopoOrder() {
				fmt.Printf("%-20s  %-30s  %s\n", truncate(t.ID, 20), truncate(t.DisplayName(), 30), strings.Join(t.Prerequisites, ", "))
			}
			fmt.Printf("\n%d topics\n", graph.Len())
			return nil
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent answers",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		itemID, _ := cmd.Flags().GetString("item")

		return withService(cmd, func(ctx context.Context, st *store.Store, _ *practice.Service) error {
			events, err := st.Events().RecentAttempts(ctx, store.QueryOpts{Limit: limit, ItemID: itemID})
			if err != nil {
				return err
			}
			if len(events) == 0 {
				fmt.Println("No answers recorded.")
				return nil
			}

			fmt.Printf("%-6s  %-16s  %-20s  %-7s  %7s  %8s  %s\n", "Seq", "When", "Item", "Result", "Time", "Strength", "Next review")
			fmt.Println(strings.Repeat(rule, 90))
			for _, e := range events {
				result := "wrong"
				if e.Correct {
					result = "right"
				}
				next := "-"
				if e.NextReviewAt != nil {
					next = e.NextReviewAt.Local().Format(time.DateOnly)
				}
				fmt.Printf("%-6d  %-16s  %-20s  %-7s  %6.1fs  %8.1f  %s\n",
					e.Sequence, e.Timestamp.Local().Format("2006-01-02 15:04"), truncate(e.ItemID, 20), result,
					float64(e.ResponseTimeMs)/1000, e.MemoryStrength, next)
			}
			return nil
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		return withService(cmd, func(ctx context.Context, _ *store.Store, svc *practice.Service) error {
			stats, err := svc.Stats(ctx)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(stats)
			}

			fmt.Printf("Items %d (%d new), attempts %d, accuracy %.0f%%\n",
				stats.Items, stats.New, stats.Attempts, stats.Accuracy*100)
			fmt.Printf("Due %d (%d overdue), at risk %d, average strength %.1f/10\n\n",
				stats.Due, stats.Overdue, stats.AtRisk, stats.AvgStrength)

			for _, t := range stats.Topics {
				bar := components.NewMeter(fmt.Sprintf("%-16s", truncate(t.Topic, 16)), t.Accuracy, 50)
				fmt.Printf("%s  %3d items  %2d due  target %s\n", bar.View(), t.Items, t.Due, t.TargetTierName)
			}
			if pending := svc.PendingPrerequisites(); len(pending) > 0 {
				fmt.Printf("\nQueued prerequisites: %s\n", strings.Join(pending, ", "))
			}
			return nil
		})
	},
}

func init() {
	dueCmd.Flags().String("topic", "", "Only list items of this topic")
	dueCmd.Flags().Bool("json", false, "Print as JSON")
	weakCmd.Flags().Bool("json", false, "Print as JSON")
	statsCmd.Flags().Bool("json", false, "Print as JSON")
	historyCmd.Flags().Int("limit", 20, "Number of answers to show")
	historyCmd.Flags().String("item", "", "Only show answers to this item")
}
