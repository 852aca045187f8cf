// Package notify sends desktop notifications when a watched layout changes
// safety level.
package notify

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"floorsense/internal/rating"
)

// Notifier sends system notifications.
type Notifier struct {
	Enabled bool
}

// Send sends a system notification.
// On macOS it uses osascript, on Linux notify-send when it is installed.
// Elsewhere this is a no-op.
func (n *Notifier) Send(title, message string) error {
	if n == nil || !n.Enabled {
		return nil
	}

	switch runtime.GOOS {
	case "darwin":
		return sendMacOSNotification(title, message)
	case "linux":
		return sendLinuxNotification(title, message)
	}
	return nil
}

// sendMacOSNotification uses osascript to display a notification.
func sendMacOSNotification(title, message string) error {
	script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeQuotes(message), escapeQuotes(title))
	cmd := exec.Command("osascript", "-e", script)

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	return nil
}

func sendLinuxNotification(title, message string) error {
	bin, err := exec.LookPath("notify-send")
	if err != nil {
		return nil
	}
	if err := exec.Command(bin, title, message).Run(); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	return nil
}

func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

// FormatLevelChange formats a notification for a layout whose safety level
// moved from one bucket to another.
func FormatLevelChange(layoutName string, from, to rating.SafetyLevel, score float64) (title, message string) {
	if to.Rank() < from.Rank() {
		title = "⚠️ floorsense: safety level dropped"
	} else {
		title = "✅ floorsense: safety level improved"
	}
	message = fmt.Sprintf("%s: %s → %s (%.0f/100)", layoutName, from, to, score)
	return title, message
}

// FormatInvalidLayout formats a notification for a layout file that no
// longer parses.
func FormatInvalidLayout(path string, err error) (title, message string) {
	return "❌ floorsense: layout invalid", fmt.Sprintf("%s: %v", path, err)
}

// FormatAssessmentFailed formats a notification for a layout that parses but
// cannot be assessed, for example because a link names an unknown zone.
func FormatAssessmentFailed(layoutName string, err error) (title, message string) {
	return "❌ floorsense: assessment failed", fmt.Sprintf("%s: %v", layoutName, err)
}
