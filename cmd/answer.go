package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/adaptiq/internal/item"
	"github.com/abhisek/adaptiq/internal/practice"
	"github.com/abhisek/adaptiq/internal/store"
)

var answerCmd = &cobra.Command{
	Use:   "answer <item-id>",
	Short: "Record an answer to an item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		option, _ := cmd.Flags().GetString("option")
		correct, _ := cmd.Flags().GetBool("correct")
		wrong, _ := cmd.Flags().GetBool("wrong")
		rt, _ := cmd.Flags().GetDuration("time")
		conf, _ := cmd.Flags().GetString("confidence")
		sessionID, _ := cmd.Flags().GetString("session")

		if option == "" && correct == wrong {
			return fmt.Errorf("pass --option, or exactly one of --correct and --wrong")
		}
		confidence := item.ParseConfidence(conf)
		if conf != "" && confidence == item.ConfidenceNone {
			return fmt.Errorf("unknown confidence %q (use guessed, somewhat_sure or certain)", conf)
		}

		in := practice.AttemptInput{
			ItemID:            args[0],
			SessionID:         sessionID,
			Correct:           correct,
			ResponseTimeMs:    rt.Milliseconds(),
			SelectedOptionKey: option,
			Confidence:        confidence,
		}
		return withService(cmd, func(ctx context.Context, _ *store.Store, svc *practice.Service) error {
			res, err := svc.RecordAttempt(ctx, in)
			if err != nil {
				return err
			}
			printResult(res)
			return nil
		})
	},
}

var flashcardCmd = &cobra.Command{
	Use:   "flashcard <item-id>",
	Short: "Record a flashcard view",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		remembered, _ := cmd.Flags().GetBool("remembered")
		forgot, _ := cmd.Flags().GetBool("forgot")
		view, _ := cmd.Flags().GetDuration("time")
		if remembered == forgot {
			return fmt.Errorf("pass exactly one of --remembered and --forgot")
		}

		in := practice.FlashcardInput{ItemID: args[0], Remembered: remembered, ViewTimeMs: view.Milliseconds()}
		return withService(cmd, func(ctx context.Context, _ *store.Store, svc *practice.Service) error {
			res, err := svc.RecordFlashcard(ctx, in)
			if err != nil {
				return err
			}
			printResult(res)
			return nil
		})
	},
}

func printResult(res practice.AttemptResult) {
	verdict := "Incorrect."
	if res.Correct {
		verdict = "Correct!"
	}
	fmt.Println(verdict, res.Message)
	fmt.Printf("Memory strength %.1f, level %d, next review %s\n",
		res.Memory.MemoryStrength, res.Schedule.Level, res.Schedule.NextReviewAt.Local().Format(time.DateOnly))
	if len(res.QueuedPrerequisites) > 0 {
		fmt.Printf("Queued prerequisites: %s\n", strings.Join(res.QueuedPrerequisites, ", "))
	}
}

func init() {
	answerCmd.Flags().String("option", "", "Selected option key; grades the answer against the item's correct option")
	answerCmd.Flags().Bool("correct", false, "Mark a self-graded answer as correct")
	answerCmd.Flags().Bool("wrong", false, "Mark a self-graded answer as wrong")
	answerCmd.Flags().Duration("time", 0, "Response time, e.g. 8s")
	answerCmd.Flags().String("confidence", "", "guessed, somewhat_sure or certain")
	answerCmd.Flags().String("session", "", "Session ID the answer belongs to")

	flashcardCmd.Flags().Bool("remembered", false, "The card was remembered")
	flashcardCmd.Flags().Bool("forgot", false, "The card was forgotten")
	flashcardCmd.Flags().Duration("time", 0, "Time spent viewing the card, e.g. 5s")
}
