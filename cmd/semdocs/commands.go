package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/semdocs/internal/auth"
	"github.com/kailas-cloud/semdocs/internal/config"
	"github.com/kailas-cloud/semdocs/internal/domain"
	"github.com/kailas-cloud/semdocs/internal/version"
	"github.com/kailas-cloud/semdocs/pkg/client"
)

// --- token ---

func newTokenCmd() *cobra.Command {
	var (
		sub   string
		email string
		role  string
		ttl   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development bearer token signed with the configured secret",
		Long: `Mint a development bearer token signed with the configured secret.

Examples:
  semdocs token --sub user-123
  export SEMDOCS_TOKEN=$(semdocs token --sub user-123 --ttl 24h)`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(config.GetEnv())
			if err != nil {
				return err
			}

			issuer := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.Audience, cfg.Auth.Issuer)
			tok, err := issuer.Issue(domain.Identity{UserID: sub, Email: email, Role: role}, ttl)
			if err != nil {
				return fmt.Errorf("issue token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}

	cmd.Flags().StringVar(&sub, "sub", "", "user id (token subject)")
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().StringVar(&role, "role", "authenticated", "role claim")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("sub")
	return cmd
}

// --- ingest ---

func newIngestCmd(flags *globalFlags) *cobra.Command {
	var title, content, file string

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Embed and store a document",
		Long: `Embed and store a document.

Examples:
  semdocs ingest --title "Go notes" --content "Channels are typed conduits"
  semdocs ingest --file ./notes.md`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if content == "" && file == "" {
				return errors.New("one of --content or --file is required")
			}
			if file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("reading file: %w", err)
				}
				content = string(data)
				if title == "" {
					title = file
				}
			}

			c := newClient(flags)
			res, err := c.Ingest(cmd.Context(), title, content)
			if err != nil {
				return describe(err)
			}

			out := cmd.OutOrStdout()
			printSuccess(out, "Stored document %s", res.DocumentID)
			printStatus(out, "tokens", "%d", res.TokensUsed)
			printStatus(out, "dimensions", "%d", res.EmbeddingDimensions)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "document title (defaults to the file name with --file)")
	cmd.Flags().StringVar(&content, "content", "", "document text")
	cmd.Flags().StringVar(&file, "file", "", "read the document text from a file")
	return cmd
}

// --- search ---

func newSearchCmd(flags *globalFlags) *cobra.Command {
	var (
		q         string
		threshold float64
		count     int
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Run a semantic query over your documents",
		Long: `Run a semantic query over your documents.

Examples:
  semdocs search --query "how do goroutines communicate"
  semdocs search --query "channels" --threshold 0.3 --count 5 --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := client.SearchRequest{Query: q}
			if cmd.Flags().Changed("threshold") {
				req.MatchThreshold = client.Float(threshold)
			}
			if cmd.Flags().Changed("count") {
				req.MatchCount = client.Int(count)
			}

			c := newClient(flags)
			res, err := c.Search(cmd.Context(), req)
			if err != nil {
				return describe(err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}

			if len(res.Results) == 0 {
				printWarning(out, "No matches above %.2f (%s)", res.MatchThreshold, res.ExecutionTime)
				return nil
			}
			printSuccess(out, "%d match(es) in %s", res.ResultCount, res.ExecutionTime)
			for _, r := range res.Results {
				fmt.Fprintf(out, "%s  %.3f  %s\n", colorize(colorBold, r.ID), r.Similarity, r.Title)
				fmt.Fprintf(out, "    %s\n", snippet(r.Content, 120))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&q, "query", "", "query text")
	cmd.Flags().Float64Var(&threshold, "threshold", 0.5, "minimum similarity in [0,1]")
	cmd.Flags().IntVar(&count, "count", 10, "maximum number of results in [1,50]")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw response as JSON")
	_ = cmd.MarkFlagRequired("query")
	return cmd
}

// --- version ---

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build metadata",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

func newClient(flags *globalFlags) *client.Client {
	return client.New(flags.server,
		client.WithToken(flags.token),
		client.WithUserAgent("semdocs-cli/"+version.Version),
	)
}

// describe renders a failure envelope as a one-line CLI error.
func describe(err error) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Code != "" {
		return fmt.Errorf("%s: %s", apiErr.Code, apiErr.Message)
	}
	return err
}

func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
