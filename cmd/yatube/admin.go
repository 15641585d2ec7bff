package main

import (
	"fmt"
	"io"
	"strconv"

	"yatube/internal/models"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	groupDescription string
	userPassword     string
	userFirstName    string
	userLastName     string
)

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Manage groups",
}

var groupCreateCmd = &cobra.Command{
	Use:   "create <slug> <title>",
	Short: "Create a group",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		group, err := a.svc.CreateGroup(cmd.Context(), args[1], args[0], groupDescription)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created group %s (%s)\n", group.Slug, group.ID)
		return nil
	}),
}

var groupListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List groups",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		groups, err := a.svc.ListGroups(cmd.Context())
		if err != nil {
			return err
		}
		writeGroups(cmd.OutOrStdout(), groups)
		return nil
	}),
}

var groupDeleteCmd = &cobra.Command{
	Use:   "delete <slug>",
	Short: "Delete a group; its posts stay, ungrouped",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		if err := a.svc.DeleteGroup(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted group %s\n", args[0])
		return nil
	}),
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userCreateCmd = &cobra.Command{
	Use:   "create <username>",
	Short: "Create a user",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		user, err := a.svc.CreateUser(cmd.Context(), args[0], userPassword, userFirstName, userLastName)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s)\n", user.Username, user.ID)
		return nil
	}),
}

var userListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List users",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		users, err := a.svc.ListUsers(cmd.Context())
		if err != nil {
			return err
		}
		writeUsers(cmd.OutOrStdout(), users)
		return nil
	}),
}

func init() {
	groupCreateCmd.Flags().StringVar(&groupDescription, "description", "", "group description")
	groupCmd.AddCommand(groupCreateCmd, groupListCmd, groupDeleteCmd)

	userCreateCmd.Flags().StringVar(&userPassword, "password", "", "password (required)")
	userCreateCmd.Flags().StringVar(&userFirstName, "first-name", "", "first name")
	userCreateCmd.Flags().StringVar(&userLastName, "last-name", "", "last name")
	userCreateCmd.MarkFlagRequired("password")
	userCmd.AddCommand(userCreateCmd, userListCmd)

	rootCmd.AddCommand(groupCmd, userCmd)
}

func writeGroups(w io.Writer, groups []*models.Group) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"#", "Slug", "Title", "Created"})
	for i, g := range groups {
		table.Append([]string{strconv.Itoa(i + 1), g.Slug, g.Title, g.CreatedAt.Format("2006-01-02")})
	}
	table.Render()
}

func writeUsers(w io.Writer, users []*models.User) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"#", "Username", "Name", "Joined"})
	for i, u := range users {
		table.Append([]string{strconv.Itoa(i + 1), u.Username, u.FullName(), u.CreatedAt.Format("2006-01-02")})
	}
	table.Render()
}
