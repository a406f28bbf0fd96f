package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"ragdesk/internal/domain"
)

type notificationMsg domain.Notification

// stateChangedMsg tells the model to re-read service snapshots.
type stateChangedMsg struct{}

// Bridge carries notifications and state-change signals from service
// goroutines into the Bubble Tea event loop. It implements domain.Notifier.
type Bridge struct {
	msgs    chan tea.Msg
	changed chan struct{}
	done    chan struct{}
	once    sync.Once
}

func NewBridge() *Bridge {
	return &Bridge{
		msgs:    make(chan tea.Msg, 64),
		changed: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// Notify queues n for display. It drops n once the bridge is closed.
func (b *Bridge) Notify(n domain.Notification) {
	select {
	case b.msgs <- notificationMsg(n):
	case <-b.done:
	}
}

// Changed signals a state change. Signals coalesce while one is pending.
func (b *Bridge) Changed() {
	select {
	case b.changed <- struct{}{}:
	default:
	}
}

// Close releases goroutines blocked in Notify and stops the pump.
func (b *Bridge) Close() {
	b.once.Do(func() { close(b.done) })
}

// wait returns the next bridged message. Notifications are preferred so a
// burst of them is not starved by state changes.
func (b *Bridge) wait() tea.Msg {
	select {
	case m := <-b.msgs:
		return m
	default:
	}
	select {
	case m := <-b.msgs:
		return m
	case <-b.changed:
		return stateChangedMsg{}
	case <-b.done:
		return nil
	}
}
