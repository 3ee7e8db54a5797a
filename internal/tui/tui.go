// Package tui adapts the teacher's gocui console into an interactive
// search front-end over a searcher.Searcher: an input box, a max-results
// box, and a results pane, reached via `search -i <indexdir>`.
package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jroimartin/gocui"

	"nutrie/internal/docstore/leveldb"
	"nutrie/internal/searcher"
	"nutrie/internal/sl"
)

// TUI is the interactive search console.
type TUI struct {
	gui        *gocui.Gui
	search     *searcher.Searcher
	docs       *leveldb.Store // may be nil: snippets are optional
	log        *slog.Logger
	maxResults int
}

// New constructs a TUI over search (and, optionally, docs for snippet
// lookup). Call Start to run it; it owns the terminal until the user
// quits with Ctrl-C.
func New(log *slog.Logger, search *searcher.Searcher, docs *leveldb.Store, maxResults int) (*TUI, error) {
	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return nil, fmt.Errorf("tui.New: %w", err)
	}
	return &TUI{
		gui:        g,
		search:     search,
		docs:       docs,
		log:        log,
		maxResults: maxResults,
	}, nil
}

// Close releases the terminal.
func (t *TUI) Close() {
	t.gui.Close()
}

// Start runs the console's main loop until the user quits.
func (t *TUI) Start() error {
	t.gui.Cursor = true
	t.gui.SetManagerFunc(t.layout)

	if err := t.gui.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, quit); err != nil {
		t.log.Error("tui: failed to set keybinding", "error", sl.Err(err))
	}
	if err := t.gui.SetKeybinding("input", gocui.KeyEnter, gocui.ModNone, func(g *gocui.Gui, v *gocui.View) error {
		return t.runSearch(g, strings.TrimSpace(v.Buffer()))
	}); err != nil {
		t.log.Error("tui: failed to set keybinding", "error", sl.Err(err))
	}
	if err := t.gui.SetKeybinding("output", gocui.KeyArrowDown, gocui.ModNone, scrollDown); err != nil {
		t.log.Error("tui: failed to set keybinding", "error", sl.Err(err))
	}
	if err := t.gui.SetKeybinding("output", gocui.KeyArrowUp, gocui.ModNone, scrollUp); err != nil {
		t.log.Error("tui: failed to set keybinding", "error", sl.Err(err))
	}
	if err := t.gui.SetKeybinding("maxResults", gocui.KeyEnter, gocui.ModNone, t.setMaxResults); err != nil {
		t.log.Error("tui: failed to set keybinding", "error", sl.Err(err))
	}
	if err := t.gui.SetKeybinding("", gocui.KeyTab, gocui.ModNone, cycleViews); err != nil {
		t.log.Error("tui: failed to set keybinding", "error", sl.Err(err))
	}

	if err := t.gui.MainLoop(); err != nil && err != gocui.ErrQuit {
		return fmt.Errorf("tui: main loop: %w", err)
	}
	return nil
}

func cycleViews(g *gocui.Gui, v *gocui.View) error {
	switch g.CurrentView().Name() {
	case "input":
		_, _ = g.SetCurrentView("maxResults")
	case "maxResults":
		_, _ = g.SetCurrentView("output")
	default:
		_, _ = g.SetCurrentView("input")
	}
	return nil
}

func (t *TUI) setMaxResults(g *gocui.Gui, v *gocui.View) error {
	if n, err := strconv.Atoi(strings.TrimSpace(v.Buffer())); err == nil && n > 0 {
		t.maxResults = n
	}
	return nil
}

func scrollDown(g *gocui.Gui, v *gocui.View) error {
	_, oy := v.Origin()
	_, sy := v.Size()
	if oy+sy < len(v.BufferLines()) {
		return v.SetOrigin(0, oy+1)
	}
	return nil
}

func scrollUp(g *gocui.Gui, v *gocui.View) error {
	_, oy := v.Origin()
	if oy > 0 {
		return v.SetOrigin(0, oy-1)
	}
	return nil
}

func (t *TUI) layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	if maxX < 10 || maxY < 6 {
		return fmt.Errorf("tui: terminal window too small")
	}

	if v, err := g.SetView("input", maxX/4+1, 1, maxX-2, 3); err != nil {
		if !errors.Is(err, gocui.ErrUnknownView) {
			return err
		}
		v.Editable = true
		v.Title = "Query (space-separated terms)"
		v.Wrap = true
		_, _ = g.SetCurrentView("input")
	}

	if v, err := g.SetView("maxResults", maxX/4+1, 4, maxX/2, 6); err != nil {
		if !errors.Is(err, gocui.ErrUnknownView) {
			return err
		}
		v.Editable = true
		v.Title = "Max Results"
		v.Wrap = true
		fmt.Fprintf(v, "%d", t.maxResults)
	}

	if v, err := g.SetView("output", maxX/4+1, 7, maxX-2, maxY-2); err != nil {
		if !errors.Is(err, gocui.ErrUnknownView) {
			return err
		}
		v.Title = "Results"
		v.Wrap = true
	}

	if v, err := g.SetView("help", 0, 0, maxX/4, maxY-2); err != nil {
		if !errors.Is(err, gocui.ErrUnknownView) {
			return err
		}
		v.Title = "Keys"
		v.Wrap = true
		fmt.Fprintln(v, "Enter: search")
		fmt.Fprintln(v, "Tab: switch pane")
		fmt.Fprintln(v, "Up/Down: scroll")
		fmt.Fprintln(v, "Ctrl-C: quit")
	}

	return nil
}

func (t *TUI) runSearch(g *gocui.Gui, query string) error {
	output, err := g.View("output")
	if err != nil {
		return err
	}
	output.Clear()

	terms := strings.Fields(query)
	if len(terms) == 0 {
		fmt.Fprintln(output, "enter one or more terms")
		return nil
	}

	matches, err := t.search.Search(terms, false)
	if err != nil {
		fmt.Fprintf(output, "search error: %v\n", err)
		return nil
	}
	if len(matches) == 0 {
		fmt.Fprintln(output, "Not found!")
		return nil
	}

	fmt.Fprintf(output, "Found in %d docs!\n\n", len(matches))
	for i, m := range matches {
		if i >= t.maxResults {
			break
		}
		fmt.Fprintf(output, "doc %d  tf=%d  positions=%v\n", m.Doc, m.Tf, m.Positions)
		if t.docs != nil {
			if text, err := t.docs.Get(m.Doc); err == nil {
				fmt.Fprintf(output, "  %s\n", text)
			}
		}
	}
	return nil
}

func quit(g *gocui.Gui, v *gocui.View) error {
	return gocui.ErrQuit
}
