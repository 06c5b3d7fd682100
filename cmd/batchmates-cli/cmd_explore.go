package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/batchmates/batchmates/client"
	"github.com/batchmates/batchmates/internal/explore"
	"github.com/batchmates/batchmates/internal/models"
)

func newExploreCmd() *cobra.Command {
	var depth, parallel int
	cmd := &cobra.Command{
		Use:   "explore <person|interest> <id>",
		Short: "Build an interest graph locally, breadth-first from one node",
		Long: "Seeds a local graph with one person or interest and expands it breadth-first.\n" +
			"Each level's expansions run in parallel; --depth 2 from a person reaches\n" +
			"everyone who shares one of their interests.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := models.ParseNodeKind(args[0])
			if err != nil {
				return err
			}
			if depth < 0 {
				return fmt.Errorf("--depth must not be negative")
			}
			if parallel < 1 {
				return fmt.Errorf("--parallel must be at least 1")
			}
			g, err := exploreGraph(cmd.Context(), apiClient.Neighbors, kind, args[1], depth, parallel)
			if err != nil {
				fatal("explore", err)
			}
			cg := toClientGraph(g)
			outputGraph(cg, cg)
			return nil
		},
	}
	cmd.Flags().IntVar(&depth, "depth", 1, "Number of expansion levels")
	cmd.Flags().IntVar(&parallel, "parallel", 4, "Concurrent expansions per level")
	return cmd
}

// exploreGraph seeds an accumulator with one node and expands it level by
// level. Nodes added at one level form the frontier of the next.
func exploreGraph(ctx context.Context, src explore.NeighborSource, kind models.NodeKind, id string, depth, parallel int) (models.Graph, error) {
	if kind == models.KindInterest {
		normalized, err := models.NormalizeInterestName(id)
		if err != nil {
			return models.Graph{}, err
		}
		id = normalized
	} else {
		normalized, err := models.NormalizePersonName(id)
		if err != nil {
			return models.Graph{}, err
		}
		id = explore.CanonicalPerson(ctx, src, normalized)
	}

	acc := explore.New(src)
	if err := acc.Seed(kind, id); err != nil {
		return models.Graph{}, err
	}

	frontier := []models.Node{{ID: id, Kind: kind}}
	for level := 0; level < depth && len(frontier) > 0; level++ {
		var (
			mu   sync.Mutex
			next []models.Node
		)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(parallel)

		for _, n := range frontier {
			g.Go(func() error {
				res, err := acc.Expand(gctx, n.ID, n.Kind)
				if err != nil {
					if client.IsNotFound(err) && n.ID != id {
						return nil
					}
					return err
				}
				mu.Lock()
				next = append(next, res.Added.Nodes...)
				mu.Unlock()
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return models.Graph{}, err
		}

		frontier = next
	}

	return acc.Snapshot(), nil
}

func toClientGraph(g models.Graph) client.Graph {
	out := client.Graph{
		Nodes: make([]client.Node, len(g.Nodes)),
		Links: make([]client.Link, len(g.Links)),
	}
	for i, n := range g.Nodes {
		out.Nodes[i] = client.Node{ID: n.ID, Type: string(n.Kind), Val: n.Val}
	}
	for i, l := range g.Links {
		out.Links[i] = client.Link{Source: l.Source, Target: l.Target}
	}
	return out
}
