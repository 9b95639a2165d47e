// Command lyricctl works on lyric files offline: parsing, export, rhyme and
// meter reports, chord-site import, the song library and the AI tools.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/sukalov/lyricforge/internal/config"
	"github.com/sukalov/lyricforge/internal/editor"
	"github.com/sukalov/lyricforge/internal/logger"
	"github.com/sukalov/lyricforge/internal/lyrics"
	"github.com/sukalov/lyricforge/internal/lyrics/parsers/amdm"
	"github.com/sukalov/lyricforge/internal/studio"
)

const version = "0.1.0"

// CLI defines the command-line interface for lyricctl.
var CLI struct {
	Parse     ParseCmd     `cmd:"" help:"Parse a lyric file into sections (JSON)"`
	Export    ExportCmd    `cmd:"" help:"Render a lyric file as plain, chords or markdown"`
	Normalize NormalizeCmd `cmd:"" help:"Normalize section labels"`
	Rhymes    RhymesCmd    `cmd:"" help:"Report lines that rhyme"`
	Measure   MeasureCmd   `cmd:"" help:"Count syllables per line against a meter"`
	Import    ImportCmd    `cmd:"" help:"Import lyrics with chords from a supported chord site"`
	Library   LibraryGroup `cmd:"" help:"Song library operations"`
	Generate  GenerateCmd  `cmd:"" help:"Run an AI tool over a lyric file"`
	Version   VersionCmd   `cmd:"" help:"Print version information"`
}

// App carries what every command needs at run time.
type App struct {
	Ctx    context.Context
	Config *config.Config
	Out    io.Writer
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("lyricctl"),
		kong.Description("Lyric and chord tooling"),
		kong.UsageOnError(),
	)

	cfg, err := config.Load()
	ctx.FatalIfErrorf(err)
	logger.Setup(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = ctx.Run(&App{Ctx: runCtx, Config: cfg, Out: os.Stdout})
	ctx.FatalIfErrorf(err)
}

// readInput reads path, or stdin when path is empty or "-".
func readInput(path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// titleFor picks the explicit title, else the file's base name.
func titleFor(title, path string) string {
	if strings.TrimSpace(title) != "" {
		return title
	}
	if path == "" || path == "-" {
		return ""
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ParseCmd prints the parsed sections of a lyric file.
type ParseCmd struct {
	File string `arg:"" optional:"" help:"Lyric file (stdin when omitted)"`
}

func (c *ParseCmd) Run(app *App) error {
	text, err := readInput(c.File)
	if err != nil {
		return err
	}
	doc := editor.FromText(titleFor("", c.File), text)
	enc := json.NewEncoder(app.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(doc.Sections)
}

// ExportCmd renders a lyric file in one of the export formats.
type ExportCmd struct {
	File   string `arg:"" optional:"" help:"Lyric file (stdin when omitted)"`
	Format string `short:"f" help:"Output format: plain, chords or markdown" default:"markdown"`
	Title  string `short:"t" help:"Song title (defaults to the file name)"`
	Output string `short:"o" help:"Write to this file; a directory gets the generated file name"`
}

func (c *ExportCmd) Run(app *App) error {
	format, err := lyrics.ParseFormat(c.Format)
	if err != nil {
		return err
	}
	text, err := readInput(c.File)
	if err != nil {
		return err
	}
	doc := editor.FromText(titleFor(c.Title, c.File), text)
	content := doc.Render(format)

	if c.Output == "" {
		_, err := fmt.Fprintln(app.Out, content)
		return err
	}
	path := c.Output
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, lyrics.ExportFilename(doc.Title, format))
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	logger.Info(fmt.Sprintf("exported %q as %s to %s", doc.Title, format, path))
	return nil
}

// NormalizeCmd rewrites section labels into their canonical form.
type NormalizeCmd struct {
	File  string `arg:"" optional:"" help:"Lyric file (stdin when omitted)"`
	Final bool   `help:"Also strip label decoration left by chord sites"`
}

func (c *NormalizeCmd) Run(app *App) error {
	text, err := readInput(c.File)
	if err != nil {
		return err
	}
	if c.Final {
		text = lyrics.NormalizeFinalLyrics(text)
	} else {
		text = lyrics.NormalizeSectionLabels(text)
	}
	_, err = fmt.Fprintln(app.Out, text)
	return err
}

// RhymesCmd prints the rhyme groups of a lyric file.
type RhymesCmd struct {
	File string `arg:"" optional:"" help:"Lyric file (stdin when omitted)"`
}

func (c *RhymesCmd) Run(app *App) error {
	text, err := readInput(c.File)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(app.Out, studio.FormatRhymes(studio.FindRhymes(lyrics.Parse(text))))
	return err
}

// MeasureCmd prints syllable counts against the target for a meter.
type MeasureCmd struct {
	File          string `arg:"" optional:"" help:"Lyric file (stdin when omitted)"`
	TimeSignature string `short:"m" name:"meter" help:"Time signature (defaults to editor.time_signature)"`
}

func (c *MeasureCmd) Run(app *App) error {
	text, err := readInput(c.File)
	if err != nil {
		return err
	}
	meter := c.TimeSignature
	if meter == "" {
		meter = app.Config.Editor.TimeSignature
	}
	_, err = fmt.Fprintln(app.Out, studio.FormatMeasure(lyrics.Measure(lyrics.Parse(text), meter)))
	return err
}

// ImportCmd fetches a song page and writes its lyrics with chords.
type ImportCmd struct {
	URL     string   `arg:"" help:"Song page URL"`
	Output  string   `short:"o" help:"Output file (stdout when omitted)"`
	Retries uint64   `default:"2" help:"Retries on server errors"`
	Drop    []string `help:"Sections to leave out, e.g. intro,interlude"`
}

func (c *ImportCmd) Run(app *App) error {
	parser := amdm.NewParserWithClient(amdm.NewClient(amdm.WithRetries(c.Retries, time.Second)))
	for _, name := range c.Drop {
		section, err := amdm.ParseSection(name)
		if err != nil {
			return err
		}
		parser.DropSections(section)
	}
	result, err := lyrics.NewServiceWithParser(parser).ExtractLyrics(app.Ctx, c.URL)
	if err != nil {
		logger.Error(fmt.Sprintf("Error extracting lyrics\nURL: %s\nError: %v", c.URL, err))
		return err
	}
	if c.Output == "" {
		_, err := fmt.Fprintln(app.Out, result.Text)
		return err
	}
	if err := os.WriteFile(c.Output, []byte(result.Text), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", c.Output, err)
	}
	logger.Success(fmt.Sprintf("Lyrics imported\nURL: %s\nOutput: %s\nLength: %d chars", c.URL, c.Output, len(result.Text)))
	return nil
}

// VersionCmd prints the version.
type VersionCmd struct{}

func (c *VersionCmd) Run(app *App) error {
	_, err := fmt.Fprintf(app.Out, "lyricctl %s\n", version)
	return err
}
