package typing

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signal struct {
	to       string
	isTyping bool
}

type recorder struct {
	mu      sync.Mutex
	signals []signal
}

func (r *recorder) emit(to string, isTyping bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signals = append(r.signals, signal{to: to, isTyping: isTyping})
}

func (r *recorder) get() []signal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]signal(nil), r.signals...)
}

func TestDebouncer_StartsOnFirstKeystroke(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	d := NewDebouncer(time.Hour, rec.emit)
	defer d.Close()

	assert.Equal(t, Idle, d.State("bob"))
	d.Keystroke("bob")
	d.Keystroke("bob")
	d.Keystroke("bob")

	assert.Equal(t, Typing, d.State("bob"))
	assert.Equal(t, []signal{{to: "bob", isTyping: true}}, rec.get())
}

func TestDebouncer_QuietPeriodEmitsStop(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	d := NewDebouncer(20*time.Millisecond, rec.emit)
	defer d.Close()

	d.Keystroke("bob")

	require.Eventually(t, func() bool {
		return d.State("bob") == Idle
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []signal{
		{to: "bob", isTyping: true},
		{to: "bob", isTyping: false},
	}, rec.get())
}

func TestDebouncer_KeystrokeResetsQuietTimer(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	d := NewDebouncer(100*time.Millisecond, rec.emit)
	defer d.Close()

	d.Keystroke("bob")
	for i := 0; i < 5; i++ {
		time.Sleep(40 * time.Millisecond)
		d.Keystroke("bob")
	}
	// 200ms elapsed since the first keystroke but never 100ms of quiet.
	assert.Equal(t, Typing, d.State("bob"))
	assert.Len(t, rec.get(), 1)
}

func TestDebouncer_Stop(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	d := NewDebouncer(time.Hour, rec.emit)
	defer d.Close()

	d.Stop("bob")
	assert.Empty(t, rec.get(), "stop while idle emits nothing")

	d.Keystroke("bob")
	d.Stop("bob")
	d.Stop("bob")

	assert.Equal(t, Idle, d.State("bob"))
	assert.Equal(t, []signal{
		{to: "bob", isTyping: true},
		{to: "bob", isTyping: false},
	}, rec.get())
}

func TestDebouncer_PerRecipient(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	d := NewDebouncer(time.Hour, rec.emit)
	defer d.Close()

	d.Keystroke("bob")
	d.Keystroke("carol")
	d.Stop("bob")

	assert.Equal(t, Idle, d.State("bob"))
	assert.Equal(t, Typing, d.State("carol"))
}

func TestDebouncer_Close(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	d := NewDebouncer(10*time.Millisecond, rec.emit)

	d.Keystroke("bob")
	d.Close()
	d.Keystroke("carol")

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, []signal{{to: "bob", isTyping: true}}, rec.get())
}

func TestDebouncer_StopAfterSlowStart(t *testing.T) {
	t.Parallel()

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	rec := &recorder{}
	d := NewDebouncer(time.Hour, func(to string, isTyping bool) {
		if isTyping {
			once.Do(func() {
				close(entered)
				<-release
			})
		}
		rec.emit(to, isTyping)
	})
	defer d.Close()

	go d.Keystroke("bob")
	<-entered

	stopped := make(chan struct{})
	go func() {
		d.Stop("bob")
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("stop finished while the start signal was still being sent")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("stop did not finish")
	}

	assert.Equal(t, []signal{
		{to: "bob", isTyping: true},
		{to: "bob", isTyping: false},
	}, rec.get())
	assert.Equal(t, Idle, d.State("bob"))
}
