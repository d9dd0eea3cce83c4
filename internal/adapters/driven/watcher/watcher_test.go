package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reqscan/internal/core/ports/driven"
)

func newLoop(debounce time.Duration) *loop {
	return &loop{debounce: debounce, pending: make(map[string]pending)}
}

func TestHandleEvent(t *testing.T) {
	tests := []struct {
		name     string
		op       fsnotify.Op
		wantType driven.FileEventType
		recorded bool
	}{
		{"create", fsnotify.Create, driven.FileCreated, true},
		{"write", fsnotify.Write, driven.FileUpdated, true},
		{"remove", fsnotify.Remove, 0, false},
		{"rename", fsnotify.Rename, 0, false},
		{"chmod", fsnotify.Chmod, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newLoop(time.Second)
			l.handleEvent(fsnotify.Event{Name: "/x/a.pdf", Op: tt.op})

			p, ok := l.pending["/x/a.pdf"]
			assert.Equal(t, tt.recorded, ok)
			if ok {
				assert.Equal(t, tt.wantType, p.typ)
			}
		})
	}
}

func TestHandleEvent_CreateThenWriteStaysCreated(t *testing.T) {
	l := newLoop(time.Second)
	l.handleEvent(fsnotify.Event{Name: "/x/a.pdf", Op: fsnotify.Create})
	l.handleEvent(fsnotify.Event{Name: "/x/a.pdf", Op: fsnotify.Write})

	assert.Equal(t, driven.FileCreated, l.pending["/x/a.pdf"].typ)
}

func TestSettled(t *testing.T) {
	dir := t.TempDir()
	fresh := filepath.Join(dir, "fresh.pdf")
	old := filepath.Join(dir, "old.docx")
	gone := filepath.Join(dir, "gone.pdf")
	require.NoError(t, os.WriteFile(fresh, []byte("x"), 0600))
	require.NoError(t, os.WriteFile(old, []byte("x"), 0600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0700))

	now := time.Now()
	l := newLoop(time.Second)
	l.pending[fresh] = pending{at: now, typ: driven.FileCreated}
	l.pending[old] = pending{at: now.Add(-2 * time.Second), typ: driven.FileUpdated}
	l.pending[gone] = pending{at: now.Add(-2 * time.Second), typ: driven.FileCreated}
	l.pending[filepath.Join(dir, "sub")] = pending{at: now.Add(-2 * time.Second), typ: driven.FileCreated}

	events := l.settled(now)

	assert.Equal(t, []driven.FileEvent{{Path: old, Type: driven.FileUpdated}}, events)
	assert.Contains(t, l.pending, fresh)
	assert.Len(t, l.pending, 1)
}

func TestWatch_NotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "f.pdf")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0600))

	_, err := New().Watch(context.Background(), file)
	assert.Error(t, err)

	_, err = New().Watch(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestWatch_CoalescesWrites(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := New(WithDebounce(200*time.Millisecond)).Watch(ctx, dir)
	require.NoError(t, err)

	path := filepath.Join(dir, "spec.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err = f.WriteString("chunk")
		require.NoError(t, err)
		time.Sleep(20 * time.Millisecond)
	}
	require.NoError(t, f.Close())

	select {
	case ev := <-events:
		resolved, err := filepath.EvalSymlinks(path)
		require.NoError(t, err)
		got, err := filepath.EvalSymlinks(ev.Path)
		require.NoError(t, err)
		assert.Equal(t, resolved, got)
		assert.Equal(t, driven.FileCreated, ev.Type)
	case <-time.After(5 * time.Second):
		t.Fatal("no event received")
	}

	select {
	case ev, ok := <-events:
		if ok {
			t.Fatalf("unexpected second event: %+v", ev)
		}
	case <-time.After(500 * time.Millisecond):
	}

	cancel()
	for range events {
	}
}

func TestWatch_ClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	events, err := New().Watch(ctx, t.TempDir())
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed")
	}
}
