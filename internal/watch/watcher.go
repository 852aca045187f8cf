// Package watch polls a layout file and re-assesses it through an editor
// session whenever its content changes.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"floorsense/internal/audit"
	"floorsense/internal/editor"
	"floorsense/internal/history"
	"floorsense/internal/layout"
	"floorsense/internal/notify"
	"floorsense/internal/rating"
)

const defaultInterval = 2 * time.Second

// Sender delivers a desktop notification. *notify.Notifier implements it.
type Sender interface {
	Send(title, message string) error
}

// Options wires the optional collaborators of a Watcher. Nil fields are
// skipped.
type Options struct {
	Interval  time.Duration
	LinksPath string
	History   *history.Store
	Audit     *audit.Logger
	Notifier  Sender
	Logger    *slog.Logger
}

// Change describes one processed edit of the watched file.
type Change struct {
	Hash      string
	Result    editor.Result
	RunID     string
	Previous  rating.SafetyLevel
	Regressed bool
}

// Watcher monitors a layout file and its links file. It uses polling,
// checking the mtimes first and the sha256 of the contents second.
type Watcher struct {
	path    string
	session *editor.Session
	opts    Options

	mu        sync.Mutex
	lastMtime fileTimes
	lastKey   string
	lastLevel rating.SafetyLevel

	done     chan struct{}
	stopOnce sync.Once
}

// New returns a watcher feeding session with edits of the layout at path.
func New(path string, session *editor.Session, opts Options) *Watcher {
	if opts.Interval <= 0 {
		opts.Interval = defaultInterval
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Watcher{
		path:    path,
		session: session,
		opts:    opts,
		done:    make(chan struct{}),
	}
}

// Run checks the file immediately and then on every tick until ctx is done
// or Stop is called. Check failures are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context) error {
	w.event(audit.WatchStarted, map[string]any{
		"path":     w.path,
		"interval": w.opts.Interval.String(),
	})
	defer w.event(audit.WatchStopped, map[string]any{"path": w.path})

	w.tick(ctx)

	ticker := time.NewTicker(w.opts.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.done:
			return nil
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

// Stop ends Run.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
	})
}

func (w *Watcher) tick(ctx context.Context) {
	if _, err := w.Check(ctx); err != nil && !errors.Is(err, editor.ErrSuperseded) {
		w.opts.Logger.Warn("watch: check failed", "path", w.path, "err", err)
	}
}

// Check re-assesses the layout if the layout file or the links file changed
// since the last call. It returns nil when nothing changed. A failure for a
// given pair of contents is reported once; the next call returns nil until
// either file changes again.
func (w *Watcher) Check(ctx context.Context) (*Change, error) {
	mtime, err := w.mtimes()
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	if mtime.equal(w.lastMtime) {
		w.mu.Unlock()
		return nil, nil
	}
	w.mu.Unlock()

	data, err := os.ReadFile(w.path)
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	linksData, err := w.readLinks()
	if err != nil {
		return nil, err
	}
	hash := layout.Hash(data)
	key := hash + ":" + layout.Hash(linksData)

	w.mu.Lock()
	if key == w.lastKey {
		w.lastMtime = mtime
		w.mu.Unlock()
		return nil, nil
	}
	w.lastKey = key
	w.lastMtime = mtime
	w.mu.Unlock()

	l, err := layout.Parse(data, w.path)
	if err != nil {
		w.notifyInvalid(w.path, err)
		return nil, err
	}

	var links []layout.CollaborationLink
	if linksData != nil {
		links, err = layout.ParseLinks(linksData, w.opts.LinksPath)
		if err != nil {
			w.notifyInvalid(w.opts.LinksPath, err)
			return nil, err
		}
	}

	res, err := w.session.Edit(ctx, l, links)
	if err != nil {
		if !errors.Is(err, editor.ErrSuperseded) && w.opts.Notifier != nil {
			title, msg := notify.FormatAssessmentFailed(l.Name, err)
			w.send(title, msg)
		}
		return nil, err
	}
	change := &Change{Hash: hash, Result: res}
	safety := res.Report.Safety

	w.opts.Logger.Info("watch: layout re-assessed",
		"layout", l.Name,
		"generation", res.Generation,
		"efficiency", res.Report.Efficiency.OverallScore,
		"safety", safety.OverallScore,
		"level", safety.SafetyLevel,
	)

	if err := w.track(l.Name, hash, change); err != nil {
		return change, err
	}

	w.event(audit.WatchChanged, map[string]any{
		"layout":      l.Name,
		"hash":        hash,
		"generation":  res.Generation,
		"run_id":      change.RunID,
		"efficiency":  res.Report.Efficiency.OverallScore,
		"safety":      safety.OverallScore,
		"level":       safety.SafetyLevel,
		"prev_level":  change.Previous,
		"regressed":   change.Regressed,
		"skipped":     len(res.Report.Efficiency.SkippedLinks),
		"observed_at": time.Now().UTC().Format(time.RFC3339),
	})

	if change.Regressed {
		w.event(audit.WatchRegressed, map[string]any{
			"layout": l.Name,
			"from":   change.Previous,
			"to":     safety.SafetyLevel,
			"score":  safety.OverallScore,
		})
		if w.opts.Notifier != nil {
			title, msg := notify.FormatLevelChange(l.Name, change.Previous, safety.SafetyLevel, safety.OverallScore)
			w.send(title, msg)
		}
	}
	return change, nil
}

// fileTimes holds the modification times of the layout and links files. A
// missing links file has the zero time.
type fileTimes struct {
	layout time.Time
	links  time.Time
}

func (a fileTimes) equal(b fileTimes) bool {
	return a.layout.Equal(b.layout) && a.links.Equal(b.links)
}

func (w *Watcher) mtimes() (fileTimes, error) {
	var ft fileTimes
	info, err := os.Stat(w.path)
	if err != nil {
		return ft, fmt.Errorf("stat layout: %w", err)
	}
	ft.layout = info.ModTime()
	if w.opts.LinksPath == "" {
		return ft, nil
	}
	info, err = os.Stat(w.opts.LinksPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return ft, fmt.Errorf("stat links: %w", err)
	default:
		ft.links = info.ModTime()
	}
	return ft, nil
}

// readLinks returns the links file content, or nil when no links file is
// configured or it has been removed.
func (w *Watcher) readLinks() ([]byte, error) {
	if w.opts.LinksPath == "" {
		return nil, nil
	}
	data, err := os.ReadFile(w.opts.LinksPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read links: %w", err)
	}
	return data, nil
}

func (w *Watcher) notifyInvalid(path string, err error) {
	if w.opts.Notifier == nil {
		return
	}
	title, msg := notify.FormatInvalidLayout(path, err)
	w.send(title, msg)
}

// track records the run and compares its level with the last level seen
// for the layout. With a history store the last level survives restarts.
func (w *Watcher) track(name, hash string, change *Change) error {
	level := change.Result.Report.Safety.SafetyLevel

	w.mu.Lock()
	prev := w.lastLevel
	w.lastLevel = level
	w.mu.Unlock()

	if w.opts.History != nil {
		stored, err := w.opts.History.GetKV(levelKey(name))
		if err != nil {
			return err
		}
		prev = rating.SafetyLevel(stored)
	}
	change.Previous = prev
	change.Regressed = prev != "" && level.Rank() < prev.Rank()

	if w.opts.History == nil {
		return nil
	}
	run, err := w.opts.History.Record(change.Result.Report, hash, "watch")
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	change.RunID = run.ID
	return w.opts.History.SetKV(levelKey(name), string(level))
}

func levelKey(layoutName string) string {
	return "level:" + layoutName
}

func (w *Watcher) send(title, msg string) {
	if err := w.opts.Notifier.Send(title, msg); err != nil {
		w.opts.Logger.Warn("watch: notification failed", "err", err)
	}
}

func (w *Watcher) event(eventType string, payload map[string]any) {
	if w.opts.Audit == nil {
		return
	}
	if err := w.opts.Audit.LogEvent("watch", eventType, payload); err != nil {
		w.opts.Logger.Warn("watch: audit log failed", "event", eventType, "err", err)
	}
}
