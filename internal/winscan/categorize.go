package winscan

import "strings"

// Category buckets an application by what it is used for. The bucket feeds
// usage scoring and status output; it never affects placement directly.
type Category string

const (
	CategoryTerminal Category = "terminal"
	CategoryBrowser  Category = "browser"
	CategoryEditor   Category = "editor"
	CategoryChat     Category = "chat"
	CategoryMedia    Category = "media"
	CategoryGame     Category = "game"
	CategoryDevTool  Category = "devtool"
	CategorySystem   Category = "system"
	CategoryOther    Category = "other"
)

var processCategories = map[string]Category{
	// Terminals
	"alacritty":      CategoryTerminal,
	"kitty":          CategoryTerminal,
	"wezterm":        CategoryTerminal,
	"wezterm-gui":    CategoryTerminal,
	"foot":           CategoryTerminal,
	"gnome-terminal": CategoryTerminal,
	"konsole":        CategoryTerminal,
	"xterm":          CategoryTerminal,
	"urxvt":          CategoryTerminal,
	"st":             CategoryTerminal,
	"tilix":          CategoryTerminal,
	"terminator":     CategoryTerminal,
	"ghostty":        CategoryTerminal,

	// Browsers
	"firefox":        CategoryBrowser,
	"firefox-bin":    CategoryBrowser,
	"chromium":       CategoryBrowser,
	"chrome":         CategoryBrowser,
	"google-chrome":  CategoryBrowser,
	"brave":          CategoryBrowser,
	"vivaldi-bin":    CategoryBrowser,
	"opera":          CategoryBrowser,
	"epiphany":       CategoryBrowser,
	"librewolf":      CategoryBrowser,
	"qutebrowser":    CategoryBrowser,
	"microsoft-edge": CategoryBrowser,

	// Editors
	"code":         CategoryEditor,
	"codium":       CategoryEditor,
	"nvim":         CategoryEditor,
	"gvim":         CategoryEditor,
	"emacs":        CategoryEditor,
	"subl":         CategoryEditor,
	"sublime_text": CategoryEditor,
	"zed":          CategoryEditor,
	"kate":         CategoryEditor,
	"gedit":        CategoryEditor,
	"obsidian":     CategoryEditor,

	// Chat
	"slack":            CategoryChat,
	"discord":          CategoryChat,
	"telegram-desktop": CategoryChat,
	"signal-desktop":   CategoryChat,
	"element-desktop":  CategoryChat,
	"thunderbird":      CategoryChat,
	"zoom":             CategoryChat,
	"teams":            CategoryChat,

	// Media
	"vlc":        CategoryMedia,
	"mpv":        CategoryMedia,
	"spotify":    CategoryMedia,
	"rhythmbox":  CategoryMedia,
	"clementine": CategoryMedia,
	"obs":        CategoryMedia,
	"gimp":       CategoryMedia,
	"inkscape":   CategoryMedia,
	"krita":      CategoryMedia,

	// Games
	"steam":              CategoryGame,
	"lutris":             CategoryGame,
	"heroic":             CategoryGame,
	"retroarch":          CategoryGame,
	"minecraft-launcher": CategoryGame,

	// Dev tools
	"jetbrains-idea":    CategoryDevTool,
	"jetbrains-goland":  CategoryDevTool,
	"jetbrains-pycharm": CategoryDevTool,
	"postman":           CategoryDevTool,
	"insomnia":          CategoryDevTool,
	"dbeaver":           CategoryDevTool,
	"wireshark":         CategoryDevTool,
	"virt-manager":      CategoryDevTool,

	// System utilities
	"nautilus":             CategorySystem,
	"dolphin":              CategorySystem,
	"thunar":               CategorySystem,
	"pcmanfm":              CategorySystem,
	"nemo":                 CategorySystem,
	"gnome-system-monitor": CategorySystem,
	"pavucontrol":          CategorySystem,
	"blueman-manager":      CategorySystem,
	"baobab":               CategorySystem,
}

// Categorize maps a process name to its category. Unknown processes are
// CategoryOther. Matching is case-insensitive on the bare executable name.
func Categorize(process string) Category {
	name := strings.ToLower(strings.TrimSpace(process))
	name = strings.TrimSuffix(name, ".exe")
	if cat, ok := processCategories[name]; ok {
		return cat
	}
	return CategoryOther
}

// IsTerminal reports whether the process is a known terminal emulator.
func IsTerminal(process string) bool {
	return Categorize(process) == CategoryTerminal
}
