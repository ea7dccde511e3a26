package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pawchat/pawchat/internal/session"
)

// newSessionsCmd lists and deletes stored sessions without entering chat
// mode.
func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List stored chat sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, closeStore, err := openRepo()
			if err != nil {
				return err
			}
			defer closeStore()

			sessions := repo.All()
			if len(sessions) == 0 {
				fmt.Println("No sessions.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tCREATED\tMESSAGES")
			for _, s := range sessions {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n",
					s.ID, s.Title, s.Created.Local().Format(time.DateTime), len(s.Turns))
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, closeStore, err := openRepo()
			if err != nil {
				return err
			}
			defer closeStore()

			id := args[0]
			if _, ok := repo.Find(id); !ok {
				return fmt.Errorf("no session with id %q", id)
			}
			if err := repo.Delete(id); err != nil {
				return err
			}
			fmt.Printf("Deleted %s.\n", id)
			return nil
		},
	})

	return cmd
}

func openRepo() (*session.Repository, func(), error) {
	cfg := initConfig()
	store, err := openStore(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open session store: %w", err)
	}
	return session.NewRepository(store), func() { store.Close() }, nil
}
