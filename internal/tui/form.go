package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/weeklit/internal/constants"
	"github.com/julianstephens/weeklit/internal/tui/forms"
)

func (m Model) startAddActivity() (tea.Model, tea.Cmd) {
	m.activityForm = &forms.ActivityFormModel{}
	m.form = forms.NewActivityForm(m.activityForm, "New activity")
	m.editingID = ""
	m.state = constants.StateAddActivity
	cmd := m.form.Init()
	return m, cmd
}

func (m Model) startEditActivity() (tea.Model, tea.Cmd) {
	a, ok := m.selected()
	if !ok {
		return m, nil
	}
	m.activityForm = forms.FromActivity(a)
	m.form = forms.NewActivityForm(m.activityForm, "Edit activity")
	m.editingID = a.ID
	m.state = constants.StateEditActivity
	cmd := m.form.Init()
	return m, cmd
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.Type == tea.KeyEsc {
		m.state = constants.StateWeek
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		cmd = tea.Batch(cmd, m.saveActivity())
		m.state = constants.StateWeek
	case huh.StateAborted:
		m.state = constants.StateWeek
	}
	return m, cmd
}

// saveActivity turns the completed form into a create or edit call run off
// the UI goroutine
func (m Model) saveActivity() tea.Cmd {
	s := m.store
	fm := m.activityForm

	if m.state == constants.StateAddActivity {
		draft, err := fm.Draft()
		return func() tea.Msg {
			if err != nil {
				return activitySavedMsg{err: err}
			}
			a, err := s.Create(context.Background(), draft)
			return activitySavedMsg{activity: a, created: true, err: err}
		}
	}

	orig, ok := s.Get(m.editingID)
	if !ok {
		return nil
	}
	patch, err := fm.Patch(orig)
	return func() tea.Msg {
		if err != nil {
			return activitySavedMsg{err: err}
		}
		if patch.IsEmpty() {
			return activitySavedMsg{activity: orig}
		}
		a, err := s.Edit(context.Background(), orig.ID, patch)
		return activitySavedMsg{activity: a, err: err}
	}
}
