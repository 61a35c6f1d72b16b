// internal/engine/dynamic/chrome.go
package dynamic

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog/log"
)

// FindChrome locates a Chrome/Chromium executable. A non-empty preferred path
// (from config or SHELF_CHROME_PATH) wins when it is executable. An empty
// result lets chromedp fall back to its own lookup.
func FindChrome(preferred string) string {
	if preferred != "" {
		if isExecutable(preferred) {
			log.Debug().Str("path", preferred).Msg("Chrome found at configured path")
			return preferred
		}
		log.Warn().Str("path", preferred).Msg("Configured Chrome path is not executable")
	}

	for _, path := range chromeCandidates() {
		if isExecutable(path) {
			log.Debug().Str("path", path).Str("os", runtime.GOOS).Msg("Chrome found at standard location")
			return path
		}
	}

	if path := findInPath(); path != "" {
		log.Debug().Str("path", path).Msg("Chrome found in PATH")
		return path
	}

	log.Warn().Str("os", runtime.GOOS).Msg("Chrome not found, falling back to chromedp default")
	return ""
}

func chromeCandidates() []string {
	home := os.Getenv("HOME")

	switch runtime.GOOS {
	case "darwin":
		candidates := []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
			"/Applications/Microsoft Edge.app/Contents/MacOS/Microsoft Edge",
			"/Applications/Brave Browser.app/Contents/MacOS/Brave Browser",
		}
		if home != "" {
			candidates = append(candidates,
				filepath.Join(home, "Applications/Google Chrome.app/Contents/MacOS/Google Chrome"),
				filepath.Join(home, "Applications/Chromium.app/Contents/MacOS/Chromium"),
			)
		}
		return candidates

	case "windows":
		var candidates []string
		for _, base := range []string{os.Getenv("ProgramFiles"), os.Getenv("ProgramFiles(x86)"), os.Getenv("LocalAppData")} {
			if base == "" {
				continue
			}
			candidates = append(candidates,
				filepath.Join(base, "Google\\Chrome\\Application\\chrome.exe"),
				filepath.Join(base, "Chromium\\Application\\chrome.exe"),
				filepath.Join(base, "Microsoft\\Edge\\Application\\msedge.exe"),
			)
		}
		return candidates

	default:
		candidates := []string{
			"/usr/bin/google-chrome-stable",
			"/usr/bin/google-chrome",
			"/usr/bin/chromium-browser",
			"/usr/bin/chromium",
			"/snap/bin/chromium",
			"/usr/bin/microsoft-edge",
		}
		if home != "" {
			candidates = append(candidates,
				filepath.Join(home, ".local/share/flatpak/exports/bin/com.google.Chrome"),
				filepath.Join(home, ".local/share/flatpak/exports/bin/org.chromium.Chromium"),
			)
		}
		return candidates
	}
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode()&0111 != 0
}

func findInPath() string {
	for _, name := range []string{
		"google-chrome-stable",
		"google-chrome",
		"chromium",
		"chromium-browser",
		"chrome",
		"msedge",
	} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}
