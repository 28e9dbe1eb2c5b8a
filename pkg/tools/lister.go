package tools

import "github.com/kira1928/javatools/pkg/ui"

// List prints and returns the installed versions, marking the active one.
func (m *Manager) List(sess Session) ([]string, error) {
	created, err := m.store.Ensure()
	if err != nil {
		return nil, err
	}
	if created {
		m.out.Plain("Created directory: %s", m.store.Root())
	}
	versions, err := m.store.Installed()
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		m.out.Plain("No Java versions installed.")
		return versions, nil
	}

	active, _ := m.Current(sess)
	m.out.Plain("Available Java versions:")
	for _, v := range versions {
		if v == active {
			m.out.Plain("%s", ui.ActiveStyle.Render("* "+v))
			continue
		}
		m.out.Plain("- %s", v)
	}
	return versions, nil
}
