package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/totegamma/tagnote/internal/domain"
	"github.com/totegamma/tagnote/internal/usecase"
)

// withApp opens the store for the duration of a single command.
func withApp(load configLoader, run func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		conf, err := load()
		if err != nil {
			return err
		}
		a, err := newApp(conf)
		if err != nil {
			return err
		}
		defer a.close()
		return run(cmd, a, args)
	}
}

func newAddCmd(load configLoader) *cobra.Command {
	var tagInput string

	cmd := &cobra.Command{
		Use:   "add [text]",
		Short: "Add a note",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(load, func(cmd *cobra.Command, a *app, args []string) error {
			note, err := a.note.Add(cmd.Context(), usecase.AddNoteInput{
				Text: strings.Join(args, " "),
				Tags: usecase.ParseTags(tagInput),
			})
			if err != nil {
				return err
			}
			printNote(cmd.OutOrStdout(), note)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&tagInput, "tags", "t", "", "comma separated tags")
	return cmd
}

func newListCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "List all notes",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: withApp(load, func(cmd *cobra.Command, a *app, args []string) error {
			notes, err := a.note.List(cmd.Context())
			if err != nil {
				return err
			}
			printNotes(cmd.OutOrStdout(), notes)
			return nil
		}),
	}
}

func newSearchCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "search [tag]",
		Short: "List notes carrying a tag",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(load, func(cmd *cobra.Command, a *app, args []string) error {
			notes, err := a.note.SearchByTag(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printNotes(cmd.OutOrStdout(), notes)
			return nil
		}),
	}
}

func newEditCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "edit [id] [text]",
		Short: "Replace the text of a note",
		Args:  cobra.MinimumNArgs(2),
		RunE: withApp(load, func(cmd *cobra.Command, a *app, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			found, err := a.note.Edit(cmd.Context(), id, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			if !found {
				return domain.NotFoundError{Resource: "note"}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %d\n", id)
			return nil
		}),
	}
}

func newDeleteCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:     "delete [id]",
		Short:   "Delete a note and its tag links",
		Aliases: []string{"rm"},
		Args:    cobra.ExactArgs(1),
		RunE: withApp(load, func(cmd *cobra.Command, a *app, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			found, err := a.note.Delete(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !found {
				return domain.NotFoundError{Resource: "note"}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d\n", id)
			return nil
		}),
	}
}

func newTagsCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List tags with their note counts",
		Args:  cobra.NoArgs,
		RunE: withApp(load, func(cmd *cobra.Command, a *app, args []string) error {
			tags, err := a.note.ListTags(cmd.Context())
			if err != nil {
				return err
			}
			for _, tag := range tags {
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%d)\n", tag.Name, tag.NoteCount)
			}
			return nil
		}),
	}
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid note id %q", s)
	}
	return uint(id), nil
}

func printNote(w io.Writer, note domain.Note) {
	fmt.Fprintf(w, "ID %d: %s\n", note.ID, note.Text)
}

func printNotes(w io.Writer, notes []domain.Note) {
	for _, note := range notes {
		printNote(w, note)
	}
}
