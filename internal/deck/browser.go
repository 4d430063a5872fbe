package deck

import (
	"os/exec"
	"runtime"
)

// Browser opens a URL for the user.
type Browser interface {
	Open(url string) error
}

// SystemBrowser launches the operating system's default browser.
type SystemBrowser struct{}

func (SystemBrowser) Open(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}

// BrowserFunc adapts a function to Browser.
type BrowserFunc func(url string) error

func (f BrowserFunc) Open(url string) error { return f(url) }
