// internal/engine/dynamic/browser.go
package dynamic

import (
	"github.com/chromedp/chromedp"
)

// allocatorOptions builds the Chrome command line for one collection run
func allocatorOptions(chromePath string, headless bool, userAgent, proxyServer string) []chromedp.ExecAllocatorOption {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-breakpad", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-hang-monitor", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("log-level", "3"),
		chromedp.Flag("window-size", "1920,1080"),
		chromedp.Flag("disk-cache-size", "0"),
	}

	if chromePath != "" {
		opts = append([]chromedp.ExecAllocatorOption{chromedp.ExecPath(chromePath)}, opts...)
	}

	if headless {
		opts = append(opts, chromedp.Flag("headless", "new"))
	} else {
		opts = append(opts, chromedp.Flag("headless", false))
	}

	if userAgent != "" {
		opts = append(opts, chromedp.UserAgent(userAgent))
	}

	if proxyServer != "" {
		opts = append(opts, chromedp.ProxyServer(proxyServer))
	}

	return opts
}
