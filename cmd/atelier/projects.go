package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/bobinette/atelier"
	"github.com/bobinette/atelier/projects"
)

var projectService *projects.Service

func init() {
	ProjectsListCommand.Flags().String("type", string(atelier.Drafts), "drafts or deployed")

	ProjectsCommand.AddCommand(&ProjectsListCommand)
	ProjectsCommand.AddCommand(&ProjectsRenameCommand)
	ProjectsCommand.AddCommand(&ProjectsDeleteCommand)
	ProjectsCommand.AddCommand(&ProjectsCreateCommand)
	ProjectsCommand.AddCommand(&ProjectsLinkCommand)

	inheritPersistentPreRun(&ProjectsCommand)

	RootCmd.AddCommand(&ProjectsCommand)
}

var ProjectsCommand = cobra.Command{
	Use:   "projects",
	Short: "Manage your projects",
	Long:  "List, create, rename and delete your projects",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(cmd, args); err != nil {
			return err
		}

		var err error
		projectService, err = projects.NewService(projectsClient, logger.WithField("component", "projects"))
		return err
	},
}

var ProjectsListCommand = cobra.Command{
	Use:   "list",
	Short: "List projects",
	Long:  "List the drafts or the deployed projects",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := atelier.ProjectKind(cmd.Flag("type").Value.String())
		list, err := projectService.List(context.Background(), kind)
		if err != nil {
			return err
		}

		if len(list) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No %s projects\n", kind)
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tVISIBILITY\tLAST EDITED")
		for _, p := range list {
			edited := "-"
			if !p.LastEdited.IsZero() {
				edited = humanize.Time(p.LastEdited)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Title, p.Visibility, edited)
		}
		return w.Flush()
	},
}

var ProjectsRenameCommand = cobra.Command{
	Use:   "rename <project> <title>",
	Short: "Rename a project",
	Long:  "Rename a project",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		msg, err := projectService.Rename(context.Background(), args[0], strings.Join(args[1:], " "))
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	},
}

var ProjectsDeleteCommand = cobra.Command{
	Use:   "delete <project>...",
	Short: "Delete projects",
	Long:  "Delete one or more projects",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := projectService.Delete(context.Background(), args)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), projects.DeletedMessage(n))
		return nil
	},
}

var ProjectsCreateCommand = cobra.Command{
	Use:   "create <prompt>",
	Short: "Create a project",
	Long:  "Create a project from the description of what you want to build",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := projectService.Create(context.Background(), strings.Join(args, " "))
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Project %s created: %s\n", p.ID, p.Title)
		return nil
	},
}

var ProjectsLinkCommand = cobra.Command{
	Use:   "link <project>",
	Short: "Print the links of a project",
	Long:  "Print the editor link and the public link of a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		links, err := projects.LinksOf(config.App.URL, args[0])
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Editor: %s\nShare:  %s\n", links.Editor, links.Share)
		return nil
	},
}
