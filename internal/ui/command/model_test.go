package command

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		line string
		want CommandMsg
		ok   bool
	}{
		{line: "refresh", want: CommandMsg{Name: "refresh", Args: []string{}}, ok: true},
		{line: "  Read   All ", want: CommandMsg{Name: "read all", Args: []string{}}, ok: true},
		{line: "new task now", want: CommandMsg{Name: "new task", Args: []string{"now"}}, ok: true},
		{line: "overdue mine", want: CommandMsg{Name: "overdue", Args: []string{"mine"}}, ok: true},
		{line: "   ", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, ok := Parse(tt.line)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestEnterEmitsCommandAndClearsInput(t *testing.T) {
	m := New(80, 20)
	m.Focus()

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("projects")})
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, cmd)
	assert.Equal(t, CommandMsg{Name: "projects", Args: []string{}}, cmd())
	assert.Empty(t, m.input.Value())
}
