package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/binia1/hyobinwiki/internal/domain"
	"github.com/binia1/hyobinwiki/internal/router"
	"github.com/binia1/hyobinwiki/internal/viewer"
)

var (
	showLinks      bool
	showHistory    bool
	showDiscussion bool
	searchJSON     bool
	recentLimit    int
)

var showCmd = &cobra.Command{
	Use:   "show <title>",
	Short: "Print an article's markup, links, history or discussion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace(cmd.Context())
		if err != nil {
			return err
		}
		defer ws.close()

		nav := router.New()
		nav.GoArticle(args[0])
		title := nav.State().Title

		a, ok := ws.svc.Article(title)
		if !ok {
			return fmt.Errorf("article %q: %w", title, domain.ErrNotFound)
		}

		out := cmd.OutOrStdout()
		switch {
		case showLinks:
			doc, err := viewer.Parse(a.Content)
			if err != nil {
				return err
			}
			for _, link := range doc.Links() {
				fmt.Fprintln(out, link)
			}
		case showHistory:
			revs, err := ws.svc.History(title)
			if err != nil {
				return err
			}
			printHistory(out, revs)
		case showDiscussion:
			msgs, err := ws.svc.Discussion(title)
			if err != nil {
				return err
			}
			for _, m := range msgs {
				fmt.Fprintf(out, "[%s] %s (%s, %s)\n", m.Topic, m.Content, m.User, m.Time.Format(time.DateTime))
			}
		default:
			fmt.Fprintln(out, a.Content)
		}
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Search article titles and markup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		nav := router.New()
		if !nav.GoSearch(args[0]) {
			return errors.New("search term is empty")
		}

		ws, err := openWorkspace(cmd.Context())
		if err != nil {
			return err
		}
		defer ws.close()

		results := ws.svc.Search(nav.State().Term)
		out := cmd.OutOrStdout()
		if searchJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		}
		if len(results) == 0 {
			fmt.Fprintf(out, "no results for %q\n", nav.State().Term)
			return nil
		}
		for _, r := range results {
			fmt.Fprintf(out, "%s\n    %s\n", r.Title, r.Snippet)
		}
		return nil
	},
}

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List recently changed articles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace(cmd.Context())
		if err != nil {
			return err
		}
		defer ws.close()

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, a := range ws.svc.RecentChanges(recentLimit) {
			updated := "-"
			if a.LastUpdated != nil {
				updated = a.LastUpdated.Local().Format(time.DateTime)
			}
			fmt.Fprintf(tw, "%s\t%s\n", a.Title, updated)
		}
		return tw.Flush()
	},
}

var randomCmd = &cobra.Command{
	Use:   "random",
	Short: "Print a random article title",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace(cmd.Context())
		if err != nil {
			return err
		}
		defer ws.close()

		title, err := router.New().GoRandom(ws.svc.Titles())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), title)
		return nil
	},
}

func printHistory(out io.Writer, revs []domain.Revision) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "REV\tTIME\tUSER\tSUMMARY")
	for _, r := range revs {
		fmt.Fprintf(tw, "r%d\t%s\t%s\t%s\n", r.Rev, r.Time.Local().Format(time.DateTime), r.User, r.Summary)
	}
	tw.Flush() //nolint:errcheck
}

func init() {
	showCmd.Flags().BoolVar(&showLinks, "links", false, "List the wiki links in the article")
	showCmd.Flags().BoolVar(&showHistory, "history", false, "Print the revision history, newest first")
	showCmd.Flags().BoolVar(&showDiscussion, "discussion", false, "Print the discussion board, newest first")
	showCmd.MarkFlagsMutuallyExclusive("links", "history", "discussion")

	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Output results as JSON")
	recentCmd.Flags().IntVarP(&recentLimit, "limit", "n", 0, "Maximum articles to list (default from config)")

	rootCmd.AddCommand(showCmd, searchCmd, recentCmd, randomCmd)
}
