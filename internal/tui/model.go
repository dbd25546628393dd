package tui

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/weeklit/internal/calendar"
	"github.com/julianstephens/weeklit/internal/constants"
	apperrors "github.com/julianstephens/weeklit/internal/errors"
	"github.com/julianstephens/weeklit/internal/models"
	"github.com/julianstephens/weeklit/internal/navigation"
	"github.com/julianstephens/weeklit/internal/store"
	"github.com/julianstephens/weeklit/internal/tui/forms"
	"github.com/julianstephens/weeklit/internal/validation"
)

const (
	refreshInterval  = time.Second
	quitFlushTimeout = 10 * time.Second
)

type tickMsg time.Time

type flushedMsg struct{ err error }

type activitySavedMsg struct {
	activity models.Activity
	created  bool
	err      error
}

type activityDeletedMsg struct {
	name string
	err  error
}

type Model struct {
	store *store.Store
	nav   *navigation.Navigator
	today func() time.Time

	state        constants.SessionState
	keys         KeyMap
	help         help.Model
	input        textinput.Model
	form         *huh.Form
	activityForm *forms.ActivityFormModel
	editingID    string
	deleteID     string

	activities []models.Activity
	row        int
	col        int

	message           string
	isError           bool
	validationWarning string
	syncFailure       string
	quitting          bool
	width             int
	height            int
}

func NewModel(s *store.Store, nav *navigation.Navigator) Model {
	return newModel(s, nav, calendar.Today)
}

func newModel(s *store.Store, nav *navigation.Navigator, today func() time.Time) Model {
	ti := textinput.New()
	ti.Placeholder = "0"
	ti.CharLimit = 3
	ti.Width = 5
	ti.Prompt = ""

	m := Model{
		store: s,
		nav:   nav,
		today: today,
		state: constants.StateWeek,
		keys:  DefaultKeyMap(),
		help:  help.New(),
		input: ti,
	}
	m.col = m.todayColumn()
	m.refresh()
	return m
}

func (m Model) ShortHelp() []key.Binding {
	switch m.state {
	case constants.StateDetail:
		return []key.Binding{m.keys.Back, m.keys.Quit}
	case constants.StateEditCell:
		return []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
			key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		}
	}
	return m.keys.ShortHelp()
}

func (m Model) FullHelp() [][]key.Binding {
	if m.state != constants.StateWeek {
		return [][]key.Binding{m.ShortHelp()}
	}
	return m.keys.FullHelp()
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// refresh copies the store's list and keeps the cursor in range
func (m *Model) refresh() {
	m.activities = m.store.Activities()
	if m.row >= len(m.activities) {
		m.row = max(len(m.activities)-1, 0)
	}
	m.updateValidationStatus()
	m.updateSyncStatus()
}

func (m *Model) updateValidationStatus() {
	result := validation.New().ValidateActivities(m.activities)
	if result.HasConflicts() {
		m.validationWarning = fmt.Sprintf("⚠ %d data warning(s), run 'weeklit doctor'", len(result.Conflicts))
	} else {
		m.validationWarning = ""
	}
}

// updateSyncStatus reports minutes updates that stopped retrying. The banner
// stays until the activity is edited again.
func (m *Model) updateSyncStatus() {
	var names []string
	var authErr, firstErr error
	for _, a := range m.activities {
		err := m.store.Sync().LastError(a.ID)
		if err == nil {
			continue
		}
		names = append(names, a.Name)
		if firstErr == nil {
			firstErr = err
		}
		if authErr == nil && apperrors.IsAuth(err) {
			authErr = err
		}
	}
	m.syncFailure = describeSyncFailure(names, authErr, firstErr)
}

func describeSyncFailure(names []string, authErr, firstErr error) string {
	if firstErr == nil {
		return ""
	}
	who := strings.Join(names, ", ")
	if authErr != nil {
		return fmt.Sprintf("✗ %s not saved: %v. Run 'weeklit auth set-token', then edit to retry", who, authErr)
	}
	var exhausted *apperrors.TransientSyncError
	if stderrors.As(firstErr, &exhausted) {
		return fmt.Sprintf("✗ %s not saved after %d attempts: %v. Edit to retry", who, exhausted.Attempts, exhausted.Err)
	}
	if ve, ok := apperrors.AsValidation(firstErr); ok {
		return fmt.Sprintf("✗ %s not saved: %s", who, ve.Message)
	}
	return fmt.Sprintf("✗ %s not saved: %v", who, firstErr)
}

func (m Model) selected() (models.Activity, bool) {
	if m.row < 0 || m.row >= len(m.activities) {
		return models.Activity{}, false
	}
	return m.activities[m.row], true
}

func (m Model) selectedDate() time.Time {
	return m.nav.Week()[m.col]
}

// todayColumn is today's position in the shown week, or Monday for other weeks
func (m Model) todayColumn() int {
	today := calendar.DateOnly(m.today())
	for i, d := range m.nav.Week() {
		if d.Equal(today) {
			return i
		}
	}
	return 0
}

func (m *Model) setMessage(msg string) {
	m.message = msg
	m.isError = false
}

func (m *Model) setError(msg string) {
	m.message = msg
	m.isError = true
}

func (m Model) quit() (Model, tea.Cmd) {
	m.quitting = true
	s := m.store
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), quitFlushTimeout)
		defer cancel()
		return flushedMsg{err: s.FlushAll(ctx)}
	}
}
