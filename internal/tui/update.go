package tui

import (
	"context"
	"fmt"
	"strconv"
	"unicode"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/weeklit/internal/calendar"
	"github.com/julianstephens/weeklit/internal/constants"
	apperrors "github.com/julianstephens/weeklit/internal/errors"
	"github.com/julianstephens/weeklit/internal/logger"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		if m.quitting {
			return m, nil
		}
		m.refresh()
		return m, tick()

	case flushedMsg:
		if msg.err != nil {
			logger.Error("failed to save pending minutes on quit", "error", msg.err)
		}
		return m, tea.Quit

	case activitySavedMsg:
		if msg.err != nil {
			m.setError("Failed to save activity: " + apperrors.Format(msg.err))
			return m, nil
		}
		m.refresh()
		if msg.created {
			m.row = max(len(m.activities)-1, 0)
			m.setMessage(fmt.Sprintf("Added %s", msg.activity.Name))
		} else {
			m.setMessage(fmt.Sprintf("Saved %s", msg.activity.Name))
		}
		return m, nil

	case activityDeletedMsg:
		m.refresh()
		if msg.err != nil {
			m.setError(fmt.Sprintf("Failed to delete %s: %s", msg.name, apperrors.Format(msg.err)))
		} else {
			m.setMessage(fmt.Sprintf("Deleted %s", msg.name))
		}
		return m, nil
	}

	switch m.state {
	case constants.StateAddActivity, constants.StateEditActivity:
		return m.updateForm(msg)
	case constants.StateEditCell:
		return m.updateCell(msg)
	case constants.StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	case constants.StateDetail:
		return m.updateDetail(msg)
	}
	return m.updateWeek(msg)
}

func (m Model) updateWeek(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(k, m.keys.Quit):
		return m.quit()
	case key.Matches(k, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(k, m.keys.Up):
		if m.row > 0 {
			m.row--
		}
	case key.Matches(k, m.keys.Down):
		if m.row < len(m.activities)-1 {
			m.row++
		}
	case key.Matches(k, m.keys.Left):
		if m.col > 0 {
			m.col--
		}
	case key.Matches(k, m.keys.Right):
		if m.col < constants.DaysPerWeek-1 {
			m.col++
		}
	case key.Matches(k, m.keys.PrevWeek):
		m.navigate(m.nav.Prev)
	case key.Matches(k, m.keys.NextWeek):
		m.navigate(m.nav.Next)
	case key.Matches(k, m.keys.Today):
		m.navigate(m.nav.Today)
		m.col = m.todayColumn()
	case key.Matches(k, m.keys.Enter):
		return m.startCellEdit("")
	case key.Matches(k, m.keys.Clear):
		m.commitMinutes("0")
	case key.Matches(k, m.keys.Add):
		return m.startAddActivity()
	case key.Matches(k, m.keys.Edit):
		return m.startEditActivity()
	case key.Matches(k, m.keys.Delete):
		if a, ok := m.selected(); ok {
			m.deleteID = a.ID
			m.state = constants.StateConfirmDelete
		}
	case key.Matches(k, m.keys.Detail):
		if _, ok := m.selected(); ok {
			m.state = constants.StateDetail
		}
	default:
		if k.Type == tea.KeyRunes && len(k.Runes) == 1 && unicode.IsDigit(k.Runes[0]) {
			return m.startCellEdit(string(k.Runes))
		}
	}
	return m, nil
}

// navigate moves the shown week. The anchor moves even when it cannot be saved.
func (m *Model) navigate(move func(context.Context) error) {
	if err := move(context.Background()); err != nil {
		logger.Warn("failed to save week anchor", "error", err)
	}
	m.message = ""
}

func (m Model) startCellEdit(initial string) (tea.Model, tea.Cmd) {
	a, ok := m.selected()
	if !ok {
		return m, nil
	}
	if initial == "" {
		if cur := a.History.Minutes(m.selectedDate()); cur > 0 {
			initial = strconv.Itoa(cur)
		}
	}
	m.input.SetValue(initial)
	m.input.CursorEnd()
	m.state = constants.StateEditCell
	m.message = ""
	cmd := m.input.Focus()
	return m, cmd
}

func (m Model) updateCell(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.Type {
		case tea.KeyCtrlC:
			return m.quit()
		case tea.KeyEsc:
			m.input.Blur()
			m.state = constants.StateWeek
			return m, nil
		case tea.KeyEnter:
			if m.commitMinutes(m.input.Value()) {
				m.input.Blur()
				m.state = constants.StateWeek
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// commitMinutes writes raw into the selected cell. Rejected input leaves the
// cell unchanged and reports why.
func (m *Model) commitMinutes(raw string) bool {
	a, ok := m.selected()
	if !ok {
		return false
	}
	date := m.selectedDate()
	if !m.store.SetMinutes(a.ID, date, raw) {
		m.setError(fmt.Sprintf("%q is not a whole number of minutes between 0 and %d", raw, constants.MaxMinutesPerDay))
		return false
	}
	m.refresh()
	m.setMessage(fmt.Sprintf("%s %s: %s", a.Name, calendar.FormatDate(date), formatCell(m.store.Minutes(a.ID, date))))
	return true
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch k.String() {
	case "y", "Y":
		m.state = constants.StateWeek
		return m, m.deleteActivity(m.deleteID)
	case "n", "N", "esc", "q":
		m.state = constants.StateWeek
		m.deleteID = ""
	case "ctrl+c":
		return m.quit()
	}
	return m, nil
}

func (m Model) deleteActivity(id string) tea.Cmd {
	s := m.store
	a, ok := s.Get(id)
	if !ok {
		return nil
	}
	return func() tea.Msg {
		return activityDeletedMsg{name: a.Name, err: s.Delete(context.Background(), id)}
	}
}

func (m Model) updateDetail(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(k, m.keys.Quit):
		return m.quit()
	case key.Matches(k, m.keys.Back):
		m.state = constants.StateWeek
	case key.Matches(k, m.keys.PrevWeek):
		m.navigate(m.nav.Prev)
	case key.Matches(k, m.keys.NextWeek):
		m.navigate(m.nav.Next)
	}
	return m, nil
}
