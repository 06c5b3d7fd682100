package main

import (
	"github.com/spf13/cobra"

	"github.com/batchmates/batchmates/client"
	"github.com/batchmates/batchmates/internal/models"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage server-side exploration sessions",
	}
	cmd.AddCommand(sessionCreateCmd())
	cmd.AddCommand(sessionShowCmd())
	cmd.AddCommand(sessionExpandCmd())
	cmd.AddCommand(sessionResetCmd())
	cmd.AddCommand(sessionDeleteCmd())
	return cmd
}

func outputSession(sess *client.Session) {
	if flagFmt == "quiet" {
		formatQuiet(sess.ID)
		return
	}
	outputGraph(sess, sess.Graph)
}

func sessionCreateCmd() *cobra.Command {
	var (
		all  bool
		kind string
	)
	cmd := &cobra.Command{
		Use:   "create [id]",
		Short: "Start a session, optionally seeded with one node or every person",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seed := &client.SeedRequest{All: all}
			if len(args) == 1 {
				k, err := models.ParseNodeKind(kind)
				if err != nil {
					return err
				}
				seed.ID = args[0]
				seed.Kind = string(k)
			}
			sess, err := apiClient.Explore.Create(cmd.Context(), seed)
			if err != nil {
				fatal("create session", err)
			}
			outputSession(sess)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Seed every known person")
	cmd.Flags().StringVar(&kind, "kind", "person", "Kind of the seed node: person|interest")
	return cmd
}

func sessionShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show a session's graph",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			sess, err := apiClient.Explore.Get(cmd.Context(), args[0])
			if err != nil {
				fatal("get session", err)
			}
			outputSession(sess)
		},
	}
}

func sessionExpandCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "expand <session-id> <person|interest> <id>",
		Short: "Expand one node of a session's graph",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := models.ParseNodeKind(args[1])
			if err != nil {
				return err
			}
			res, err := apiClient.Explore.Expand(cmd.Context(), args[0], &client.ExpandRequest{ID: args[2], Kind: string(k)})
			if err != nil {
				fatal("expand node", err)
			}
			outputGraph(res, res.Added)
			return nil
		},
	}
}

func sessionResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <session-id>",
		Short: "Empty a session's graph",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			sess, err := apiClient.Explore.Reset(cmd.Context(), args[0])
			if err != nil {
				fatal("reset session", err)
			}
			outputSession(sess)
		},
	}
}

func sessionDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <session-id>",
		Short: "End a session",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if err := apiClient.Explore.Delete(cmd.Context(), args[0]); err != nil {
				fatal("delete session", err)
			}
			output(map[string]bool{"deleted": true}, nil, nil, []string{args[0]})
		},
	}
}
