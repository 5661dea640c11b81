package file

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/simbleau/convo/pkg/codec"
	"github.com/simbleau/convo/pkg/tree"
)

// Source implements ports.TreeSource over a dialogue file on disk. Every
// Load re-decodes the file, so a Load after a Watch signal picks up edits.
type Source struct {
	Path string
}

// NewSource creates a source reading the dialogue file at path.
func NewSource(path string) *Source {
	return &Source{Path: path}
}

// Load decodes the file into a validated tree.
func (s *Source) Load(ctx context.Context) (*tree.Tree, error) {
	return codec.DecodeFile(s.Path)
}

// Watch signals whenever the dialogue file changes, implementing
// ports.Watchable for hot-reload. The directory is watched rather than the
// file itself because editors typically save via rename, which replaces the
// watched inode. Bursts of events coalesce into one pending signal. The
// channel closes when ctx is done.
func (s *Source) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	dir := filepath.Dir(s.Path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	ch := make(chan struct{}, 1)
	go func() {
		defer watcher.Close()
		defer close(ch)

		base := filepath.Base(s.Path)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != base {
					continue
				}
				if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
					continue
				}
				select {
				case ch <- struct{}{}:
				default: // a signal is already pending
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return ch, nil
}
