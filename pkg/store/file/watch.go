package file

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	content "github.com/goliatone/go-content"
)

// ChangeFunc is invoked once per debounced external change to a section
// file.
type ChangeFunc func(section content.Section, path string)

const (
	debounceWindow = 250 * time.Millisecond
	selfWriteGrace = time.Second
)

// Watch reports edits made to section files by other processes until ctx is
// cancelled. Writes performed through this Store are not reported. Rapid
// successive events for one section are collapsed.
func (s *Store) Watch(ctx context.Context, fn ChangeFunc) error {
	if !s.Configured() {
		return content.ErrTierUnavailable
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return classify("create content dir", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(s.dir); err != nil {
		return err
	}
	s.logger.Info("watching content dir", zap.String("dir", s.dir))

	pending := map[content.Section]time.Time{}
	ticker := time.NewTicker(debounceWindow / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			section, relevant := sectionForEvent(event)
			if !relevant {
				continue
			}
			pending[section] = time.Now()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watcher error", zap.Error(err))
		case now := <-ticker.C:
			for section, at := range pending {
				if now.Sub(at) < debounceWindow {
					continue
				}
				delete(pending, section)
				if s.writtenRecently(section, selfWriteGrace) {
					continue
				}
				s.logger.Debug("content file changed", zap.String("section", string(section)))
				if fn != nil {
					fn(section, s.Path(section))
				}
			}
		}
	}
}

func sectionForEvent(event fsnotify.Event) (content.Section, bool) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return "", false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") || filepath.Ext(base) != ".json" {
		return "", false
	}
	section := content.Section(strings.TrimSuffix(base, ".json"))
	return section, section.Valid()
}
