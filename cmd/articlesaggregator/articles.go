package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ArticlesAggregator/internal/domain"
)

func newFetchCmd(opts *rootOptions) *cobra.Command {
	var async bool

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch one enriched batch and print it as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := opts.open(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer application.Close()

			ctx := cmd.Context()
			var articles []domain.DisplayArticle
			if async {
				articles, err = application.Service().FetchArticlesAsync(ctx).Await(ctx)
			} else {
				articles, err = application.Service().FetchArticles(ctx)
			}
			if err != nil {
				return fmt.Errorf("fetching articles: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), articles)
		},
	}

	cmd.Flags().BoolVar(&async, "async", false, "use the non-blocking fetch path")
	return cmd
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	var title, url, author string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add one article to the configured source",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := opts.open(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer application.Close()

			article, err := application.Service().AddArticle(cmd.Context(), title, url, author)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), article)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "article title (required)")
	cmd.Flags().StringVar(&url, "url", "", "article url")
	cmd.Flags().StringVar(&author, "author", "", "author name")
	return cmd
}

func newAuthorCmd(opts *rootOptions) *cobra.Command {
	author := &cobra.Command{
		Use:   "author",
		Short: "Manage author metadata in the local store",
	}

	var blog, twitter string
	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Insert or update an author in the SQLite store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := opts.open(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer application.Close()

			info := domain.AuthorInfo{Name: args[0], Blog: blog, Twitter: twitter}
			if err := application.SaveAuthor(cmd.Context(), info); err != nil {
				return fmt.Errorf("saving author: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved author %s.\n", info.Name)
			return nil
		},
	}
	add.Flags().StringVar(&blog, "blog", "", "author blog url")
	add.Flags().StringVar(&twitter, "twitter", "", "author twitter handle")

	author.AddCommand(add)
	return author
}
