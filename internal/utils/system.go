package utils

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// SystemInfo holds information about the current system
type SystemInfo struct {
	OS            string
	Architecture  string
	ChromePresent bool
	ChromePath    string
}

// DetectSystem returns information about the current operating system and architecture
func DetectSystem() SystemInfo {
	return SystemInfo{
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
	}
}

// --------------------------------------
// CHROME CHECK
// --------------------------------------

var chromeBinaries = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
}

// CheckChrome looks for Chrome/Chromium, preferring the configured path.
func CheckChrome(configured string) (bool, string) {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return true, configured
		}
	}

	for _, bin := range chromeBinaries {
		if path, err := exec.LookPath(bin); err == nil {
			return true, path
		}
	}

	for _, path := range commonChromePaths(runtime.GOOS) {
		if _, err := os.Stat(path); err == nil {
			return true, path
		}
	}

	return false, ""
}

func commonChromePaths(goos string) []string {
	switch goos {
	case "darwin":
		return []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
		}

	case "linux":
		return []string{
			"/usr/bin/google-chrome",
			"/usr/bin/google-chrome-stable",
			"/usr/bin/chromium",
			"/usr/bin/chromium-browser",
			"/snap/bin/chromium",
		}

	case "windows":
		return []string{
			`C:\Program Files\Google\Chrome\Application\chrome.exe`,
			`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
		}

	default:
		return nil
	}
}

// --------------------------------------
// VALIDATION
// --------------------------------------

// ValidateSystemRequirements reports on w whether PNG previews can be
// rendered and returns the Chrome path to use.
func ValidateSystemRequirements(w io.Writer, configured string) (string, error) {
	sysInfo := DetectSystem()

	fmt.Fprintf(w, "System Information:\n")
	fmt.Fprintf(w, "  OS: %s\n", sysInfo.OS)
	fmt.Fprintf(w, "  Architecture: %s\n\n", sysInfo.Architecture)

	sysInfo.ChromePresent, sysInfo.ChromePath = CheckChrome(configured)

	if sysInfo.ChromePresent {
		fmt.Fprintf(w, "✓ Chrome/Chromium found at: %s\n", sysInfo.ChromePath)
		fmt.Fprintf(w, "  Version: %s\n\n", chromeVersion(sysInfo.ChromePath))
		return sysInfo.ChromePath, nil
	}

	fmt.Fprintln(w, "✗ Chrome / Chromium not found!")
	fmt.Fprintln(w, "  It is required for PNG ticket previews. Text, XML and HTML previews still work.")
	fmt.Fprintln(w)

	ChromeInstallationInstructions(w, sysInfo.OS)

	return "", fmt.Errorf("chrome/chromium is required but not installed")
}

func chromeVersion(path string) string {
	output, err := exec.Command(path, "--version").Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(output))
}

// --------------------------------------
// INSTALLATION INSTRUCTIONS
// --------------------------------------

func ChromeInstallationInstructions(w io.Writer, osType string) {
	fmt.Fprintln(w, "Installation Instructions:")
	fmt.Fprintln(w)

	switch osType {
	case "linux":
		fmt.Fprintln(w, "Ubuntu / Debian:")
		fmt.Fprintln(w, "  sudo apt update")
		fmt.Fprintln(w, "  sudo apt install chromium-browser")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Fedora:")
		fmt.Fprintln(w, "  sudo dnf install chromium")

	case "darwin":
		fmt.Fprintln(w, "Using Homebrew:")
		fmt.Fprintln(w, "  brew install --cask google-chrome")

	case "windows":
		fmt.Fprintln(w, "Download Google Chrome:")
		fmt.Fprintln(w, "  https://www.google.com/chrome/")

	default:
		fmt.Fprintln(w, "Please install Chrome or Chromium for your OS.")
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Or point CHROME_PATH at an existing binary.")
}
