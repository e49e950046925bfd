package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"e2ekit/internal/domain"
	"e2ekit/internal/storage"
)

// maxSteps is how many step log lines the details pane shows
const maxSteps = 15

// ErrorViewer displays test failures in an interactive TUI
type ErrorViewer struct {
	storage storage.Storage
	out     io.Writer
}

// NewErrorViewer creates a new ErrorViewer. Resolved flags are saved through st.
func NewErrorViewer(st storage.Storage, out io.Writer) *ErrorViewer {
	return &ErrorViewer{storage: st, out: out}
}

// failureList is the viewer state, kept apart from tview for testing.
type failureList struct {
	results *domain.TestResultsOutput
	storage storage.Storage
}

func (l *failureList) len() int { return len(l.results.Details) }

func (l *failureList) unresolved() int {
	n := 0
	for _, f := range l.results.Details {
		if !f.Resolved {
			n++
		}
	}
	return n
}

// toggle flips the resolved flag of failure i and persists the results.
func (l *failureList) toggle(i int) error {
	if i < 0 || i >= l.len() {
		return nil
	}
	l.results.Details[i].Resolved = !l.results.Details[i].Resolved
	return l.storage.SaveOutput(l.results)
}

func (l *failureList) itemText(i int) string {
	f := l.results.Details[i]
	name := f.CaseID
	if name == "" {
		name = fmt.Sprintf("Test %d", i+1)
	}
	name = tview.Escape(name + " " + shortTitle(f.Title))
	if f.Resolved {
		return fmt.Sprintf("[gray]✓ [yellow]%d.[gray] %s[white]", i+1, name)
	}
	return fmt.Sprintf("[yellow]%d.[white] %s", i+1, name)
}

func (l *failureList) header() string {
	return fmt.Sprintf(" Test Failures (%d total, %d unresolved) | Use ↑↓ to navigate, [yellow]R[white] to mark resolved, → to view details, ← to go back, Ctrl+C to exit ",
		l.len(), l.unresolved())
}

func (l *failureList) stats(i int) string {
	f := l.results.Details[i]
	suite := f.Suite
	if suite == "" {
		suite = "Unknown suite"
	}
	caseID := f.CaseID
	if caseID == "" {
		caseID = "untagged"
	}
	return fmt.Sprintf("[cyan]suite:[white] [yellow]%s[white] [cyan]case:[white] [yellow]%s[white] [cyan]attempts:[white] %d\n",
		tview.Escape(suite), tview.Escape(caseID), f.Attempts)
}

// details formats a failure using tview color tags ([red], [cyan], etc.)
func (l *failureList) details(i int) string {
	f := l.results.Details[i]
	var b strings.Builder

	fmt.Fprintf(&b, "[red]✗ %s[white]\n\n", tview.Escape(f.Title))
	if f.TimedOut {
		b.WriteString("[magenta]Failed by the unit timeout[white]\n\n")
	}
	if f.Message != "" {
		fmt.Fprintf(&b, "[yellow]Message:[white]\n%s\n\n", tview.Escape(f.Message))
	}
	if len(f.Steps) > 0 {
		b.WriteString("[yellow]Steps:[white]\n")
		for j, s := range f.Steps {
			if j == maxSteps {
				fmt.Fprintf(&b, "  [gray]... and %d more steps[white]\n", len(f.Steps)-maxSteps)
				break
			}
			fmt.Fprintf(&b, "  %d. %s\n", j+1, tview.Escape(s))
		}
	}
	return b.String()
}

// shortTitle drops the describe path and @ID tag from a full unit title.
func shortTitle(t string) string {
	if i := strings.LastIndex(t, "|"); i >= 0 {
		t = t[i+1:]
	} else if i := strings.LastIndex(t, " > "); i >= 0 {
		t = t[i+3:]
	}
	if first, _, ok := strings.Cut(t, "\n"); ok {
		return first
	}
	return t
}

// View displays test failures in an interactive TUI
func (ev *ErrorViewer) View(results *domain.TestResultsOutput) error {
	if len(results.Details) == 0 {
		fmt.Fprintln(ev.out, color.GreenString("✓ No test failures found!"))
		return nil
	}

	state := &failureList{results: results, storage: ev.storage}
	app := tview.NewApplication()

	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)
	for i := 0; i < state.len(); i++ {
		list.AddItem(state.itemText(i), "", 0, nil)
	}
	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan)

	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false)
	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)
	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true).
		SetText(state.header())

	show := func(i int) {
		if i < 0 || i >= state.len() {
			return
		}
		statsView.SetText(state.stats(i))
		detailsView.SetText(state.details(i)).ScrollToBeginning()
	}

	var saveErr error
	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		case tcell.KeyRune:
			if event.Rune() == 'r' || event.Rune() == 'R' {
				i := list.GetCurrentItem()
				if err := state.toggle(i); err != nil {
					saveErr = err
				}
				list.SetItemText(i, state.itemText(i), "")
				headerView.SetText(state.header())
				show(i)
				return nil
			}
		}
		return event
	})
	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})
	list.SetChangedFunc(func(index int, _ string, _ string, _ rune) {
		show(index)
	})
	show(0)

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 3, 0, false).
		AddItem(tview.NewFlex().
			AddItem(detailsView, 0, 1, false).
			AddItem(tview.NewBox(), 2, 0, false), 0, 1, false)
	body := tview.NewFlex().
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)
	layout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(body, 0, 1, true)

	if err := app.SetRoot(layout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	if saveErr != nil {
		return fmt.Errorf("failed to save resolved status: %w", saveErr)
	}
	return nil
}
