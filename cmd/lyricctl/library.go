package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/sukalov/lyricforge/internal/ai"
	"github.com/sukalov/lyricforge/internal/db"
	"github.com/sukalov/lyricforge/internal/editor"
	"github.com/sukalov/lyricforge/internal/lyrics"
	"github.com/sukalov/lyricforge/internal/studio"
)

// LibraryGroup contains song library operations.
type LibraryGroup struct {
	List   LibraryListCmd   `cmd:"" help:"List saved songs"`
	Search LibrarySearchCmd `cmd:"" help:"Search saved songs by title, lyrics or tags"`
	Show   LibraryShowCmd   `cmd:"" help:"Print one saved song"`
	Add    LibraryAddCmd    `cmd:"" help:"Save a lyric file to the library"`
	Delete LibraryDeleteCmd `cmd:"" help:"Delete a saved song"`
}

// Owner scopes library commands to one chat.
type Owner struct {
	Owner int64 `required:"" help:"Owner chat ID"`
}

func openLibrary(app *App) (*db.Store, error) {
	store, err := db.Open(app.Ctx, app.Config.Library.DSN, app.Config.Library.AuthToken)
	if err != nil {
		return nil, fmt.Errorf("open library: %w", err)
	}
	return store, nil
}

func printEntries(app *App, entries []db.Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(app.Out, "no songs")
		return err
	}
	now := time.Now()
	for _, e := range entries {
		if _, err := fmt.Fprintf(app.Out, "%s  %-30s  %s\n", e.ID, e.Title, humanize.RelTime(e.UpdatedAt, now, "ago", "from now")); err != nil {
			return err
		}
	}
	return nil
}

type LibraryListCmd struct {
	Owner
	Limit int `short:"n" default:"20" help:"Maximum number of songs"`
}

func (c *LibraryListCmd) Run(app *App) error {
	store, err := openLibrary(app)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(app.Ctx, c.Owner.Owner, c.Limit)
	if err != nil {
		return err
	}
	return printEntries(app, entries)
}

type LibrarySearchCmd struct {
	Owner
	Query string `arg:"" help:"Search text"`
}

func (c *LibrarySearchCmd) Run(app *App) error {
	store, err := openLibrary(app)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Search(app.Ctx, c.Owner.Owner, c.Query)
	if err != nil {
		return err
	}
	return printEntries(app, entries)
}

type LibraryShowCmd struct {
	Owner
	ID     string `arg:"" help:"Song ID"`
	Format string `short:"f" default:"chords" help:"Output format: plain, chords or markdown"`
}

func (c *LibraryShowCmd) Run(app *App) error {
	format, err := lyrics.ParseFormat(c.Format)
	if err != nil {
		return err
	}
	store, err := openLibrary(app)
	if err != nil {
		return err
	}
	defer store.Close()

	entry, err := store.Get(app.Ctx, c.Owner.Owner, c.ID)
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("song %s not found", c.ID)
	}
	if err != nil {
		return err
	}
	doc := editor.FromText(entry.Title, entry.Lyrics)
	doc.Details = entry.Details
	_, err = fmt.Fprintln(app.Out, doc.Render(format))
	return err
}

type LibraryAddCmd struct {
	Owner
	File  string `arg:"" optional:"" help:"Lyric file (stdin when omitted)"`
	Title string `short:"t" help:"Song title (defaults to the file name)"`
	Tags  string `help:"Comma separated tags"`
}

func (c *LibraryAddCmd) Run(app *App) error {
	text, err := readInput(c.File)
	if err != nil {
		return err
	}
	store, err := openLibrary(app)
	if err != nil {
		return err
	}
	defer store.Close()

	entry := db.Entry{
		OwnerID: c.Owner.Owner,
		Title:   titleFor(c.Title, c.File),
		Lyrics:  lyrics.NormalizeFinalLyrics(text),
	}
	for _, tag := range strings.Split(c.Tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			entry.Details.Tags = append(entry.Details.Tags, tag)
		}
	}
	saved, changed, err := store.Save(app.Ctx, entry)
	if err != nil {
		return err
	}
	status := "saved"
	if !changed {
		status = "unchanged"
	}
	_, err = fmt.Fprintf(app.Out, "%s %s (%s)\n", status, saved.ID, saved.Title)
	return err
}

type LibraryDeleteCmd struct {
	Owner
	ID string `arg:"" help:"Song ID"`
}

func (c *LibraryDeleteCmd) Run(app *App) error {
	store, err := openLibrary(app)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Delete(app.Ctx, c.Owner.Owner, c.ID); err != nil {
		return err
	}
	_, err = fmt.Fprintf(app.Out, "deleted %s\n", c.ID)
	return err
}

// GenerateCmd runs one AI tool over a lyric file and prints the merged song.
type GenerateCmd struct {
	Tool   string `arg:"" help:"draft, polish, rewrite, continue, suggest-chords or rhyme"`
	Input  string `arg:"" optional:"" help:"Theme, direction or word for the tool"`
	File   string `short:"i" name:"file" help:"Current lyric file"`
	Format string `short:"f" default:"chords" help:"Output format: plain, chords or markdown"`
}

func (c *GenerateCmd) Run(app *App) error {
	tool, err := ai.ParseTool(c.Tool)
	if err != nil {
		return err
	}
	format, err := lyrics.ParseFormat(c.Format)
	if err != nil {
		return err
	}
	if tool.NeedsInput() && strings.TrimSpace(c.Input) == "" {
		return fmt.Errorf("%s needs some text to work with", tool)
	}

	doc := editor.New()
	if c.File != "" {
		text, err := readInput(c.File)
		if err != nil {
			return err
		}
		doc = editor.FromText(titleFor("", c.File), text)
	}

	client, err := ai.NewFromConfig(app.Config.AI)
	if err != nil {
		return err
	}

	current := doc.Text()
	lyricContext := ""
	if tool == ai.ToolRhyme {
		lyricContext = current
	}
	reply, err := client.Complete(app.Ctx, tool.Prompt(c.Input, current, doc.Details), lyricContext)
	if err != nil {
		return err
	}

	mode, merge := studio.ModeFor(tool)
	if !merge {
		_, err := fmt.Fprintln(app.Out, strings.TrimSpace(reply))
		return err
	}
	if cleaned := lyrics.NormalizeSectionLabels(lyrics.CleanGenerated(reply)); cleaned != "" {
		doc.Reconcile(mode, lyrics.Parse(cleaned))
	}
	_, err = fmt.Fprintln(app.Out, doc.Render(format))
	return err
}
