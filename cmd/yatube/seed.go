package main

import (
	"fmt"

	"yatube/internal/seed"

	"github.com/spf13/cobra"
)

var seedConfig = seed.DefaultConfig()

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the store with demo data",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		stats, err := seed.New(a.svc, seedConfig, a.logger).Run(cmd.Context())
		fmt.Fprintf(cmd.OutOrStdout(),
			"users: %d, groups: %d, posts: %d, comments: %d, follows: %d, errors: %d (%s)\n",
			stats.Users, stats.Groups, stats.Posts, stats.Comments, stats.Follows, stats.Errors, stats.Duration)
		return err
	}),
}

func init() {
	flags := seedCmd.Flags()
	flags.IntVar(&seedConfig.NumUsers, "users", seedConfig.NumUsers, "users to create")
	flags.IntVar(&seedConfig.NumGroups, "groups", seedConfig.NumGroups, "groups to create")
	flags.IntVar(&seedConfig.NumPosts, "posts", seedConfig.NumPosts, "posts to create")
	flags.IntVar(&seedConfig.NumComments, "comments", seedConfig.NumComments, "comments to create")
	flags.IntVar(&seedConfig.MaxFollows, "max-follows", seedConfig.MaxFollows, "most authors one user follows")
	flags.Float64Var(&seedConfig.ZipfS, "zipf", seedConfig.ZipfS, "Zipf exponent for author popularity, > 1")
	flags.IntVar(&seedConfig.Workers, "workers", seedConfig.Workers, "concurrent workers")
	flags.Int64Var(&seedConfig.Seed, "rand-seed", seedConfig.Seed, "random seed")
	rootCmd.AddCommand(seedCmd)
}
