/*
Copyright © 2025 Katie Mulliken <katie@mulliken.net>
*/
package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/mateconpizza/rotato"

	"github.com/agentultra/deliciousbackup/internal/core/backup"
)

// consoleProgress shows the stages of a run on a spinner.
type consoleProgress struct {
	from  string
	quiet bool

	start  func()
	mesg   func(string)
	prefix func(string)
	done   func(string)

	running bool
}

func newConsoleProgress(from string, quiet bool) *consoleProgress {
	p := &consoleProgress{from: from, quiet: quiet}
	if quiet {
		return p
	}

	sp := rotato.New(
		rotato.WithSpinnerColor(rotato.ColorGray),
		rotato.WithMesg("checking for changes..."),
		rotato.WithMesgColor(rotato.ColorBrightGreen, rotato.ColorStyleItalic),
		rotato.WithDoneColorMesg(rotato.ColorBrightGreen, rotato.ColorStyleItalic),
	)
	p.start = func() { sp.Start() }
	p.mesg = func(s string) { sp.UpdateMesg(s) }
	p.prefix = func(s string) { sp.UpdatePrefix(s) }
	p.done = func(s string) {
		if s == "" {
			sp.Done()
			return
		}
		sp.Done(s)
	}
	return p
}

func (p *consoleProgress) StageStarted(stage backup.Stage) {
	if p.quiet {
		return
	}
	if !p.running {
		p.start()
		p.running = true
	}

	switch stage {
	case backup.StageMode:
		p.mesg("checking for changes...")
	case backup.StageBookmarks:
		p.prefix("Fetching bookmarks")
		p.mesg(fmt.Sprintf("from %s (may take a while)...", p.from))
	case backup.StageTags:
		p.prefix("Fetching tags")
		p.mesg("...")
	case backup.StageLinks:
		p.prefix("Processing tags")
		p.mesg("...")
	case backup.StageFinalize:
		p.prefix("Finishing")
		p.mesg("...")
	}
}

func (p *consoleProgress) Progress(stage backup.Stage, current, total int) {
	if p.quiet {
		return
	}

	switch stage {
	case backup.StageBookmarks:
		p.prefix("Importing bookmarks")
	case backup.StageTags:
		p.prefix("Importing tags")
	case backup.StageLinks:
		p.prefix("Processing tags")
	}
	p.mesg(fmt.Sprintf("[%d/%d]", current, total))
}

// stop ends the spinner. err is the result of the run.
func (p *consoleProgress) stop(err error) {
	if p.quiet || !p.running {
		return
	}
	p.running = false
	if err != nil {
		p.prefix(color.New(color.FgRed, color.Bold).Sprint("Backup failed"))
		p.done("")
		return
	}
	p.prefix("Backup")
	p.done("done")
}

// printReport writes the outcome of a successful run. Labels that matched no
// tag are always reported, even when quiet.
func printReport(stdout, stderr io.Writer, r *backup.Report, quiet bool) {
	if len(r.Unresolved) > 0 {
		yellow := color.New(color.FgYellow, color.Bold).SprintFunc()
		fmt.Fprintf(stderr, "%s\n", yellow("Error associating the following:"))
		for _, u := range r.Unresolved {
			fmt.Fprintf(stderr, "  %s\n", u)
		}
	}

	if quiet {
		return
	}

	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	fmt.Fprintf(stdout, "%s %s backup: %d of %d bookmarks new, %d of %d tags new, %d links created\n",
		green("Done!"), r.Mode,
		r.BookmarksInserted, r.BookmarksFetched,
		r.TagsInserted, r.TagsFetched,
		r.LinksCreated,
	)
}
