package shared

import (
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// EnvBrowser names a browser command that takes precedence over the platform default.
const EnvBrowser = "BROWSER"

// OpenBrowser starts the user's browser on rawURL without waiting for it to exit.
//
// Only http and https URLs are opened.
func OpenBrowser(rawURL string) error {
	name, args, err := browserCommand(runtime.GOOS, os.Getenv(EnvBrowser), rawURL)
	if err != nil {
		return err
	}

	if err := exec.Command(name, args...).Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}

// browserCommand picks the command that opens rawURL on goos. A non-empty override is split on spaces
// and gets the URL as its last argument.
func browserCommand(goos, override, rawURL string) (string, []string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", nil, fmt.Errorf("%w: refusing to open %q", ErrInvalidInput, rawURL)
	}

	if fields := strings.Fields(override); len(fields) > 0 {
		return fields[0], append(fields[1:], rawURL), nil
	}

	switch goos {
	case "darwin":
		return "open", []string{rawURL}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{rawURL}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", rawURL}, nil
	default:
		return "", nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}
