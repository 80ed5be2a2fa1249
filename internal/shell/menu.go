package shell

import (
	"fmt"
	"io"
	"strings"
)

type menuItem struct {
	key   string
	label string
}

type menu struct {
	title string
	items []menuItem
}

var mainMenu = menu{
	title: "Noita Save Manager",
	items: []menuItem{
		{"1", "Backup Current Save"},
		{"2", "Activate Save"},
		{"3", "Launch Noita"},
		{"4", "Launch Noita MP Proxy"},
		{"5", "Delete Backup"},
		{"6", "Settings"},
		{"7", "Help"},
		{"9", "Exit"},
	},
}

var settingsMenu = menu{
	title: "Settings",
	items: []menuItem{
		{"1", "Change path to Noita save folder"},
		{"2", "Change path to Noita MP Proxy"},
		{"3", "Save & Return to Main Menu"},
		{"9", "Restore default settings"},
	},
}

// lookup returns the item whose key matches input.
func (m menu) lookup(input string) (menuItem, bool) {
	input = strings.TrimSpace(input)
	for _, it := range m.items {
		if it.key == input {
			return it, true
		}
	}
	return menuItem{}, false
}

func (m menu) render(w io.Writer) {
	fmt.Fprintf(w, "\n\n%s\n%s\n", m.title, strings.Repeat("-", len(m.title)))
	for _, it := range m.items {
		fmt.Fprintf(w, "%s. %s\n", it.key, it.label)
	}
	fmt.Fprintln(w)
}

const helpText = `
Noita Save Manager Help
-----------------------
1. Backup Current Save: Create a backup of your current Noita save.
2. Activate Save: Restore a previously created backup.
3. Launch Noita: Start the game.
4. Launch Noita MP Proxy: Start the multiplayer proxy.
5. Delete Backup: Delete a previously created backup.
6. Settings: Change the save folder and proxy paths.
7. Help: Display this help message.
9. Exit: Exit the application.

Close Noita before activating a save, or the game may overwrite it.
`
