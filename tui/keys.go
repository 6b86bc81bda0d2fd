package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the judge's bindings. It implements help.KeyMap.
type keyMap struct {
	Left    key.Binding
	Right   key.Binding
	Both    key.Binding
	Neither key.Binding
	Skip    key.Binding
	Ignore  key.Binding
	Undo    key.Binding
	Redo    key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Left: key.NewBinding(
			key.WithKeys("left", "a"),
			key.WithHelp("←/a", "keep left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "d"),
			key.WithHelp("→/d", "keep right"),
		),
		Both: key.NewBinding(
			key.WithKeys("up", "b"),
			key.WithHelp("↑/b", "keep both"),
		),
		Neither: key.NewBinding(
			key.WithKeys("down", "n"),
			key.WithHelp("↓/n", "keep neither"),
		),
		Skip: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "skip pair"),
		),
		Ignore: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "another round"),
		),
		Undo: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "undo"),
		),
		Redo: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "redo"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.Both, k.Neither, k.Skip, k.Undo, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Both, k.Neither},
		{k.Skip, k.Ignore, k.Undo, k.Redo, k.Quit},
	}
}
