package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bobinette/atelier"
	"github.com/bobinette/atelier/access"
	"github.com/bobinette/atelier/errors"
)

var editor *access.Editor

func init() {
	AccessAddCommand.Flags().String("access", string(atelier.View), "view or edit")

	AccessCommand.AddCommand(&AccessShowCommand)
	AccessCommand.AddCommand(&AccessSearchCommand)
	AccessCommand.AddCommand(&AccessAddCommand)
	AccessCommand.AddCommand(&AccessSetCommand)
	AccessCommand.AddCommand(&AccessRemoveCommand)

	inheritPersistentPreRun(&AccessCommand)

	RootCmd.AddCommand(&AccessCommand)
}

var AccessCommand = cobra.Command{
	Use:   "access",
	Short: "Manage who can access a project",
	Long:  "Show and edit the collaborators of a project",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(cmd, args); err != nil {
			return err
		}

		var err error
		editor, err = access.NewEditor(
			projectsClient,
			printer{out: cmd.OutOrStdout()},
			access.WithTimeout(config.API.Timeout.Duration),
			access.WithLogger(logger.WithField("component", "access")),
		)
		return err
	},
}

// open starts the editor on the project and fails when the access list
// could not be fetched: editing from an empty list would revoke everyone on
// commit.
func open(project string) error {
	if !editor.Open(context.Background(), project) {
		editor.Close()
		return errors.New("could not load the collaborators of " + project)
	}
	return nil
}

func printCollaborators(out io.Writer, collaborators []atelier.Collaborator) error {
	if len(collaborators) == 0 {
		fmt.Fprintln(out, "No collaborators")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tACCESS")
	for _, c := range collaborators {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Email, c.Access)
	}
	return w.Flush()
}

func commit(cmd *cobra.Command) error {
	collaborators := editor.Collaborators()
	if !editor.Commit() {
		editor.Close()
		return errors.New("access list not updated")
	}
	return printCollaborators(cmd.OutOrStdout(), collaborators)
}

var AccessShowCommand = cobra.Command{
	Use:   "show <project>",
	Short: "List the collaborators of a project",
	Long:  "List the collaborators of a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := open(args[0]); err != nil {
			return err
		}
		defer editor.Close()

		return printCollaborators(cmd.OutOrStdout(), editor.Collaborators())
	},
}

var AccessSearchCommand = cobra.Command{
	Use:   "search <project> <query>",
	Short: "Find users to invite",
	Long:  "Find users that are not collaborators of the project yet",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := open(args[0]); err != nil {
			return err
		}
		defer editor.Close()

		candidates := editor.Search(strings.Join(args[1:], " "))
		if len(candidates) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No users found")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tEMAIL")
		for _, u := range candidates {
			fmt.Fprintf(w, "%s\t%s\t%s\n", u.ID, u.Name, u.Email)
		}
		return w.Flush()
	},
}

var AccessAddCommand = cobra.Command{
	Use:   "add <project> <user>",
	Short: "Invite a user",
	Long:  "Invite a user, found by id or email, to collaborate on the project",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		level := atelier.AccessLevel(cmd.Flag("access").Value.String())
		if !level.Valid() {
			return errors.New(fmt.Sprintf("invalid access level %q", level), errors.Validation(), errors.BadRequest())
		}

		if err := open(args[0]); err != nil {
			return err
		}

		user, ok := pick(editor.Search(args[1]), args[1])
		if !ok {
			editor.Close()
			return errors.New(fmt.Sprintf("no user matching %q to invite", args[1]), errors.NotFound())
		}

		if err := editor.Add(user); err != nil {
			return err
		}
		if err := editor.SetPermission(user.ID, level); err != nil {
			return err
		}
		return commit(cmd)
	},
}

// pick selects the candidate designated by ref: its id, its email, or the
// only candidate.
func pick(candidates []atelier.User, ref string) (atelier.User, bool) {
	for _, u := range candidates {
		if u.ID == ref || strings.EqualFold(u.Email, ref) {
			return u, true
		}
	}
	if len(candidates) == 1 {
		return candidates[0], true
	}
	return atelier.User{}, false
}

var AccessSetCommand = cobra.Command{
	Use:   "set <project> <user id> <view|edit>",
	Short: "Change the access of a collaborator",
	Long:  "Change the access of a collaborator",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		level := atelier.AccessLevel(args[2])
		if !level.Valid() {
			return errors.New(fmt.Sprintf("invalid access level %q", level), errors.Validation(), errors.BadRequest())
		}

		if err := open(args[0]); err != nil {
			return err
		}

		if err := editor.SetPermission(args[1], level); err != nil {
			return err
		}
		return commit(cmd)
	},
}

var AccessRemoveCommand = cobra.Command{
	Use:   "remove <project> <user id>",
	Short: "Revoke the access of a collaborator",
	Long:  "Revoke the access of a collaborator",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := open(args[0]); err != nil {
			return err
		}

		if err := editor.Remove(args[1]); err != nil {
			return err
		}
		return commit(cmd)
	},
}
