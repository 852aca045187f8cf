package notify

import (
	"errors"
	"strings"
	"testing"

	"floorsense/internal/rating"
)

func TestFormatLevelChange(t *testing.T) {
	title, msg := FormatLevelChange("lobby", rating.LevelGood, rating.LevelModerate, 61)
	if !strings.Contains(title, "dropped") {
		t.Fatalf("title = %q", title)
	}
	if msg != "lobby: good → moderate (61/100)" {
		t.Fatalf("message = %q", msg)
	}

	title, _ = FormatLevelChange("lobby", rating.LevelCritical, rating.LevelExcellent, 90)
	if !strings.Contains(title, "improved") {
		t.Fatalf("title = %q", title)
	}
}

func TestFormatInvalidLayout(t *testing.T) {
	_, msg := FormatInvalidLayout("layouts/a.yml", errors.New("zones[0].size.width must be > 0"))
	if msg != "layouts/a.yml: zones[0].size.width must be > 0" {
		t.Fatalf("message = %q", msg)
	}
}

func TestFormatAssessmentFailed(t *testing.T) {
	title, msg := FormatAssessmentFailed("lobby", errors.New(`link l1: zone "ghost": zone not found`))
	if !strings.Contains(title, "assessment failed") {
		t.Fatalf("title = %q", title)
	}
	if msg != `lobby: link l1: zone "ghost": zone not found` {
		t.Fatalf("message = %q", msg)
	}
}

func TestDisabledNotifierIsNoop(t *testing.T) {
	var n *Notifier
	if err := n.Send("t", "m"); err != nil {
		t.Fatal(err)
	}
	if err := (&Notifier{}).Send("t", "m"); err != nil {
		t.Fatal(err)
	}
}

func TestEscapeQuotes(t *testing.T) {
	if got := escapeQuotes(`say "hi"`); got != `say \"hi\"` {
		t.Fatalf("got %q", got)
	}
}
