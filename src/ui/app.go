package ui

import (
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
)

// Actions are the tray menu callbacks. They run on the fyne thread and must
// not block.
type Actions struct {
	Action    func()
	Configure func()
	Copy      func()
}

// App wraps the fyne application that owns the overlay window and the tray.
type App struct {
	fyne     fyne.App
	menu     *fyne.Menu
	toggle   *fyne.MenuItem
	profiles *fyne.MenuItem
}

func New(id string) *App {
	return &App{fyne: app.NewWithID(id)}
}

// SetupTray installs the system tray menu. fyne appends its own Quit item.
func (a *App) SetupTray(title string, actions Actions) {
	desk, ok := a.fyne.(desktop.App)
	if !ok {
		log.Printf("ui: no system tray on this driver")
		return
	}
	a.toggle = fyne.NewMenuItem(actionLabel("stopped"), actions.Action)
	a.profiles = fyne.NewMenuItem("Profile", nil)
	a.profiles.ChildMenu = fyne.NewMenu("", profileItems(nil, "", nil)...)
	a.menu = fyne.NewMenu(title,
		a.toggle,
		fyne.NewMenuItem("Configure regions", actions.Configure),
		a.profiles,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Copy last translation", actions.Copy),
	)
	desk.SetSystemTrayMenu(a.menu)
	desk.SetSystemTrayIcon(Icon)
}

// SetState relabels the start/stop tray entry.
func (a *App) SetState(state string) {
	fyne.Do(func() {
		if a.toggle == nil {
			return
		}
		a.toggle.Label = actionLabel(state)
		a.menu.Refresh()
	})
}

// SetProfiles fills the Profile submenu and ticks current. onSelect runs on
// the fyne thread.
func (a *App) SetProfiles(titles []string, current string, onSelect func(title string)) {
	titles = append([]string(nil), titles...)
	fyne.Do(func() {
		if a.profiles == nil {
			return
		}
		a.profiles.ChildMenu.Items = profileItems(titles, current, onSelect)
		a.menu.Refresh()
	})
}

func profileItems(titles []string, current string, onSelect func(string)) []*fyne.MenuItem {
	if len(titles) == 0 {
		item := fyne.NewMenuItem("(no profiles)", nil)
		item.Disabled = true
		return []*fyne.MenuItem{item}
	}
	items := make([]*fyne.MenuItem, 0, len(titles))
	for _, title := range titles {
		item := fyne.NewMenuItem(title, func() {
			if onSelect != nil && title != current {
				onSelect(title)
			}
		})
		item.Checked = title == current
		items = append(items, item)
	}
	return items
}

func actionLabel(state string) string {
	if state == "started" {
		return "Stop translating"
	}
	return "Start translating"
}

// OnStopped registers fn to run after the fyne loop ends.
func (a *App) OnStopped(fn func()) { a.fyne.Lifecycle().SetOnStopped(fn) }

// Run blocks on the fyne event loop. Call it from the main goroutine.
func (a *App) Run() { a.fyne.Run() }

func (a *App) Quit() { fyne.Do(a.fyne.Quit) }
