package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/quill"
	"github.com/aretw0/quill/pkg/core"
	"github.com/aretw0/quill/pkg/editor"
)

// contentFlags are shared by "note add" and "note edit".
type contentFlags struct {
	formats []string
	images  []string
	message string
}

func (f *contentFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&f.formats, "format", "f", nil, "Format applied to the whole content (bold, italic, underline, ul, ol, h1, h2, code)")
	cmd.Flags().StringSliceVar(&f.images, "image", nil, "Image file to embed as a data URI (repeatable)")
	cmd.Flags().StringVarP(&f.message, "message", "m", "", "Change reason recorded in the vault history")
}

// build runs the text through the editor: formats, then images.
// Text without either is stored exactly as typed.
func (f *contentFlags) build(ctx context.Context, g *globals, text string) (string, error) {
	draft := editor.NewTextDraft(text, editor.WithSerialUploads(true), editor.WithLogger(g.logger))

	for _, name := range f.formats {
		format, err := editor.ParseFormat(name)
		if err != nil {
			return "", err
		}
		if err := draft.ApplyAll(format); err != nil {
			return "", err
		}
	}

	uploads := make([]*editor.Upload, 0, len(f.images))
	for _, path := range f.images {
		uploads = append(uploads, draft.AttachImage(ctx, path))
	}
	for _, u := range uploads {
		if err := u.Wait(ctx); err != nil {
			return "", fmt.Errorf("failed to embed %s: %w", u.Path, err)
		}
	}

	return draft.Commit(ctx)
}

func (f *contentFlags) reason(subject string) string {
	if f.message != "" {
		return quill.AppendFooter(f.message)
	}
	return quill.FormatChangeReason(quill.CommitTypeFeat, "notes", subject, "")
}

func newNoteCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Create, edit, delete and list notes",
	}
	cmd.AddCommand(
		newNoteAddCmd(g),
		newNoteEditCmd(g),
		newNoteDeleteCmd(g),
		newNoteShowCmd(g),
		newNoteListCmd(g),
	)
	return cmd
}

func newNoteAddCmd(g *globals) *cobra.Command {
	var (
		category string
		content  contentFlags
	)

	cmd := &cobra.Command{
		Use:   "add [content]",
		Short: "Add a note to a category",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			store, _, err := g.open(ctx)
			if err != nil {
				return err
			}

			text, err := content.build(ctx, g, strings.Join(args, " "))
			if err != nil {
				return err
			}

			ctx = core.WithChangeReason(ctx, content.reason("add note to "+category))
			note, changed, err := store.CreateNote(ctx, text, category)
			if err != nil {
				return err
			}
			if !changed {
				return fmt.Errorf("%w: empty content or unknown category %q", errNoChange, category)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Note created: %d\n", note.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", core.DefaultCategories()[0], "Category of the note")
	content.register(cmd)
	return cmd
}

func newNoteEditCmd(g *globals) *cobra.Command {
	var content contentFlags

	cmd := &cobra.Command{
		Use:   "edit [id] [content]",
		Short: "Replace the content of a note",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			ctx := context.Background()
			store, _, err := g.open(ctx)
			if err != nil {
				return err
			}

			text, err := content.build(ctx, g, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}

			ctx = core.WithChangeReason(ctx, content.reason(fmt.Sprintf("edit note %d", id)))
			changed, err := store.UpdateNote(ctx, id, text)
			if err != nil {
				return err
			}
			if !changed {
				return fmt.Errorf("%w: note %d not found or empty content", errNoChange, id)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Note updated: %d\n", id)
			return nil
		},
	}

	content.register(cmd)
	return cmd
}

func newNoteDeleteCmd(g *globals) *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			ctx := context.Background()
			store, _, err := g.open(ctx)
			if err != nil {
				return err
			}

			reason := message
			if reason == "" {
				reason = quill.FormatChangeReason(quill.CommitTypeChore, "notes", fmt.Sprintf("delete note %d", id), "")
			}
			changed, err := store.DeleteNote(core.WithChangeReason(ctx, reason), id)
			if err != nil {
				return err
			}
			if !changed {
				return fmt.Errorf("%w: note %d not found", errNoChange, id)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Note deleted: %d\n", id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "Change reason recorded in the vault history")
	return cmd
}

func newNoteShowCmd(g *globals) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Print a single note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			store, _, err := g.open(context.Background())
			if err != nil {
				return err
			}

			note, ok := store.Note(id)
			if !ok {
				return fmt.Errorf("note %d not found", id)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), note)
			}
			printNote(cmd.OutOrStdout(), note)
			fmt.Fprintln(cmd.OutOrStdout(), note.Content)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}

func newNoteListCmd(g *globals) *cobra.Command {
	var (
		category string
		match    string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := g.open(context.Background())
			if err != nil {
				return err
			}

			var notes []core.Note
			switch {
			case match != "":
				notes, err = store.ListNotesMatching(match)
				if err != nil {
					return err
				}
			case category != "":
				notes = store.ListNotesByCategory(category)
			default:
				notes = store.Notes()
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), notes)
			}
			for _, note := range notes {
				printNote(cmd.OutOrStdout(), note)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Only notes of this category")
	cmd.Flags().StringVar(&match, "match", "", "Only notes whose category matches this glob")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}

func printNote(w io.Writer, note core.Note) {
	fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", note.ID, note.Category, note.UpdatedAt, preview(note.Content))
}

// preview returns the first line of content, shortened.
func preview(content string) string {
	line, _, _ := strings.Cut(content, "\n")
	if r := []rune(line); len(r) > 60 {
		return string(r[:57]) + "..."
	}
	return line
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid note id %q", s)
	}
	return id, nil
}
