package application

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/JonMunkholm/nutrition/internal/schema"
)

/* ----------------------------------------
	MENU TREE
---------------------------------------- */

type MenuItem struct {
	Label   string
	Submenu *Menu
	Action  func(m *Model) tea.Cmd
}

type Menu struct {
	Title  string
	Items  []MenuItem
	Parent *Menu
}

/* ----------------------------------------
	MENU TREE DEFINITION
---------------------------------------- */

func linkParents(menu *Menu, parent *Menu) {
	menu.Parent = parent

	for i := range menu.Items {
		item := &menu.Items[i]

		if item.Label == "Back" {
			item.Submenu = parent
			continue
		}

		if item.Submenu != nil {
			linkParents(item.Submenu, menu)
		}
	}
}

func buildMenuTree(m *Model) *Menu {
	root := &Menu{
		Title: "Main Menu",
		Items: []MenuItem{
			{Label: "Refresh", Action: (*Model).load},
			{Label: "Add / Update Item", Action: (*Model).openForm},
			{Label: "Delete Selected", Action: (*Model).deleteSelected},
			{Label: "Sort ->", Submenu: loadSortMenu()},
			{Label: "Rows per page ->", Submenu: loadPageSizeMenu(m)},
			{Label: "Store ->", Submenu: loadStoreMenu(m)},
			{Label: "Quit", Action: func(*Model) tea.Cmd { return tea.Quit }},
		},
	}

	linkParents(root, nil)

	return root
}

/* ----------------------------------------
	LOAD MENUS
---------------------------------------- */

func loadSortMenu() *Menu {
	menu := &Menu{Title: "Sort"}
	for _, col := range schema.Columns() {
		menu.Items = append(menu.Items, MenuItem{
			Label: "By " + col.Label,
			Action: func(m *Model) tea.Cmd {
				m.requestSort(col.Key)
				return nil
			},
		})
	}
	menu.Items = append(menu.Items, MenuItem{Label: "Back"})
	return menu
}

func loadPageSizeMenu(m *Model) *Menu {
	menu := &Menu{Title: "Rows per page"}
	for _, size := range m.sess.Table().View().PageSizes {
		menu.Items = append(menu.Items, MenuItem{
			Label: fmt.Sprintf("%d rows", size),
			Action: func(m *Model) tea.Cmd {
				m.setPageSize(size)
				return nil
			},
		})
	}
	menu.Items = append(menu.Items, MenuItem{Label: "Back"})
	return menu
}

// loadStoreMenu lists the bulk store operations. Without a store the menu
// only explains why it is empty.
func loadStoreMenu(m *Model) *Menu {
	if m.store == nil {
		return &Menu{
			Title: "Store",
			Items: []MenuItem{
				{Label: "Store admin unavailable"},
				{Label: "Back"},
			},
		}
	}

	store := m.store
	return &Menu{
		Title: "Store",
		Items: []MenuItem{
			{Label: "Count Items", Action: func(m *Model) tea.Cmd { return m.run(store.Count()) }},
			{Label: "Seed Sample Data", Action: func(m *Model) tea.Cmd { return m.run(store.SeedSample()) }},
			{Label: "Reset Store", Action: func(m *Model) tea.Cmd { return m.run(store.ResetAll()) }},
			{Label: "Back"},
		},
	}
}
