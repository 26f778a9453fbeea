package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/adaptiq/internal/catalog"
	"github.com/abhisek/adaptiq/internal/item"
	"github.com/abhisek/adaptiq/internal/practice"
	"github.com/abhisek/adaptiq/internal/store"
)

var importCmd = &cobra.Command{
	Use:   "import <catalog.json>",
	Short: "Import items and topics from a catalog file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		keep, _ := cmd.Flags().GetBool("keep-progress")

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		cat, err := catalog.Load(f)
		if err != nil {
			return err
		}
		graph, err := cat.Graph()
		if err != nil {
			return err
		}

		return withService(cmd, func(ctx context.Context, st *store.Store, _ *practice.Service) error {
			items := cat.Items
			if keep {
				if items, err = mergeProgress(ctx, st, items); err != nil {
					return err
				}
			}
			if err := st.Items().Upsert(ctx, items...); err != nil {
				return err
			}
			if err := st.Topics().Replace(ctx, graph.Topics()); err != nil {
				return err
			}
			fmt.Printf("Imported %d items across %d topics\n", len(items), graph.Len())
			return nil
		})
	},
}

// mergeProgress carries the stored history of already-known items over to
// their imported versions, unless the catalog brings its own history.
func mergeProgress(ctx context.Context, st *store.Store, items []item.Item) ([]item.Item, error) {
	existing, err := st.Items().GetAll(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]item.Item, len(existing))
	for _, it := range existing {
		byID[it.ID] = it
	}

	out := make([]item.Item, len(items))
	for i, it := range items {
		old, ok := byID[it.ID]
		if ok && !it.Attempted() {
			it.TimesAttempted = old.TimesAttempted
			it.CorrectAttempts = old.CorrectAttempts
			it.LastAttemptedAt = old.LastAttemptedAt
			it.State = old.State
		}
		out[i] = it
	}
	return out, nil
}

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export items, progress and topics as a catalog (stdout by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, st *store.Store, _ *practice.Service) error {
			items, err := st.Items().GetAll(ctx)
			if err != nil {
				return err
			}
			topics, err := st.Topics().All(ctx)
			if err != nil {
				return err
			}

			out := os.Stdout
			if len(args) == 1 {
				f, err := os.Create(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			return catalog.Write(out, topics, items)
		})
	},
}

func init() {
	importCmd.Flags().Bool("keep-progress", false, "Keep stored progress for items that already exist")
}
