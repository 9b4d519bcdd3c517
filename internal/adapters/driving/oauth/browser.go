package oauth

import (
	"fmt"
	"os/exec"
	"runtime"
)

// launchers maps GOOS to the command that hands a URL to the desktop.
var launchers = map[string][]string{
	"darwin":  {"open"},
	"linux":   {"xdg-open"},
	"freebsd": {"xdg-open"},
	"windows": {"rundll32", "url.dll,FileProtocolHandler"},
}

// OpenBrowser asks the desktop to open url without waiting for it.
func OpenBrowser(url string) error {
	argv, ok := launchers[runtime.GOOS]
	if !ok {
		return fmt.Errorf("no browser launcher for %s", runtime.GOOS)
	}
	cmd := exec.Command(argv[0], append(argv[1:], url)...) //nolint:gosec // fixed launcher, url is an argument
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
