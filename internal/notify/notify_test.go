package notify

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"ragdesk/internal/domain"
)

func TestConsole(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	c := NewConsole(&buf)
	c.Notify(domain.Notification{Level: domain.LevelSuccess, Message: "uploaded"})
	c.Notify(domain.Notification{Level: domain.LevelError, Message: "boom"})
	c.Notify(domain.Notification{Level: domain.LevelInfo, Message: "fyi"})
	assert.Equal(t, "✓ uploaded\n✗ boom\n• fyi\n", buf.String())
}

func TestMultiAndRecorder(t *testing.T) {
	var a, b Recorder
	n := Logged(Multi(&a, nil, &b), zap.NewNop())
	n.Notify(Errorf("Query failed: %s", "index unavailable"))
	n.Notify(domain.Notification{Level: domain.LevelSuccess, Message: "ok"})

	assert.Equal(t, a.All(), b.All())
	assert.Equal(t, []string{"Query failed: index unavailable"}, a.Messages(domain.LevelError))
	assert.Equal(t, []string{"ok"}, a.Messages(domain.LevelSuccess))
}
