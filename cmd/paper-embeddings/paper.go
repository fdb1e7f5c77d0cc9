// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/segmentio/encoding/json"
	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-embeddings/internal/dataset"
	"github.com/pdiddy/paper-embeddings/internal/httputil"
	"github.com/pdiddy/paper-embeddings/internal/scholar"
)

var paperCmd = &cobra.Command{
	Use:   "paper",
	Short: "Query the Semantic Scholar Graph API",
	Long: `Paper looks up single papers by ID or title, or lists the citations and
references of a paper, and prints the raw JSON objects. Field names are
checked against the API's allowlist before any request is sent.`,
}

// --- get subcommand ---

var paperGetCmd = &cobra.Command{
	Use:   "get [paper-id]",
	Short: "Look a paper up by ID (paperId, DOI:..., arXiv:..., CorpusId:...)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPaperLookup(cmd, func(ctx context.Context, c *scholar.Client, fields []string) (any, error) {
			return c.GetPaperByID(ctx, args[0], fields)
		})
	},
}

// --- match subcommand ---

var paperMatchCmd = &cobra.Command{
	Use:   "match [title]",
	Short: "Find the closest title match",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := strings.Join(args, " ")
		return runPaperLookup(cmd, func(ctx context.Context, c *scholar.Client, fields []string) (any, error) {
			return c.GetPaperByTitle(ctx, title, fields)
		})
	},
}

// --- citations / references subcommands ---

var paperCitationsCmd = &cobra.Command{
	Use:   "citations [paper-id]",
	Short: "List papers citing a paper",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPaperList(cmd, args[0], true)
	},
}

var paperReferencesCmd = &cobra.Command{
	Use:   "references [paper-id]",
	Short: "List papers referenced by a paper",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPaperList(cmd, args[0], false)
	},
}

func runPaperList(cmd *cobra.Command, paperID string, citations bool) error {
	all, _ := cmd.Flags().GetBool("all")
	offset, _ := cmd.Flags().GetInt("offset")
	limit, _ := cmd.Flags().GetInt("limit")

	return runPaperLookup(cmd, func(ctx context.Context, c *scholar.Client, fields []string) (any, error) {
		if all {
			out := []scholar.Paper{}
			collect := func(p scholar.Paper) error {
				out = append(out, p)
				return nil
			}
			var err error
			if citations {
				err = c.WalkCitations(ctx, paperID, fields, limit, collect)
			} else {
				err = c.WalkReferences(ctx, paperID, fields, limit, collect)
			}
			return out, err
		}

		opts := scholar.ListOptions{Offset: offset, Limit: limit}
		if citations {
			return c.GetCitations(ctx, paperID, fields, opts)
		}
		return c.GetReferences(ctx, paperID, fields, opts)
	})
}

// runPaperLookup builds a client, runs fn with the rate-limit retry, and
// prints the result as indented JSON.
func runPaperLookup(cmd *cobra.Command, fn func(context.Context, *scholar.Client, []string) (any, error)) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	fields, _ := cmd.Flags().GetStringSlice("fields")

	client := scholar.NewClient(cfg.Client, log)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var out any
	err = httputil.Retry(ctx, dataset.RateLimitPolicy(cfg.Dataset.Retry, log), func(ctx context.Context) error {
		var err error
		out, err = fn(ctx, client, fields)
		return err
	})
	if err != nil {
		return err
	}
	return writeJSON(os.Stdout, out)
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	paperCmd.PersistentFlags().StringSlice("fields", nil, "comma-separated fields to request (default paperId,title,abstract)")

	for _, c := range []*cobra.Command{paperCitationsCmd, paperReferencesCmd} {
		c.Flags().Int("offset", 0, "offset of the first entry")
		c.Flags().Int("limit", 0, "entries per page (0 = API default; with --all, 1000)")
		c.Flags().Bool("all", false, "page through every entry")
	}

	paperCmd.AddCommand(paperGetCmd)
	paperCmd.AddCommand(paperMatchCmd)
	paperCmd.AddCommand(paperCitationsCmd)
	paperCmd.AddCommand(paperReferencesCmd)

	rootCmd.AddCommand(paperCmd)
}
