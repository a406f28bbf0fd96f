package app

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragdesk/internal/config"
	"ragdesk/internal/domain"
	"ragdesk/internal/notify"
)

func TestNewWiresBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/files":
			fmt.Fprint(w, `[{"name":"a.pdf","path":"/kb/a.pdf"}]`)
		case "/models":
			fmt.Fprint(w, `{"models":["local-llm"]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	cfg := &config.AppConfig{
		Backend:  config.BackendConfig{BaseURL: srv.URL, TimeoutSecs: 5},
		Features: config.FeaturesConfig{ModelSelector: true},
	}
	rec := &notify.Recorder{}
	c := New(cfg, nil, rec)

	require.NoError(t, c.Files.Load(context.Background()))
	require.NoError(t, c.Models.Load(context.Background()))

	assert.Equal(t, srv.URL, c.Client.BaseURL())
	assert.Len(t, c.Files.Files(), 1)
	assert.Equal(t, "local-llm", c.Models.Selected())
	assert.True(t, c.Chat.RequiresModel())
	assert.Nil(t, c.Inspector)
	assert.NotNil(t, c.Excerpter)
	assert.Empty(t, rec.All())
}

func TestNotificationsReachNotifier(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	cfg := &config.AppConfig{
		Backend: config.BackendConfig{BaseURL: srv.URL},
		Qdrant:  config.QdrantConfig{URL: "http://localhost:6333", Collection: "knowledge_base"},
	}
	rec := &notify.Recorder{}
	c := New(cfg, nil, rec)

	assert.Error(t, c.Files.Load(context.Background()))
	errs := rec.Messages(domain.LevelError)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "Failed to fetch files: ")
	assert.Contains(t, errs[0], srv.URL+"/files")
	assert.False(t, c.Chat.RequiresModel())
	require.NotNil(t, c.Inspector)
	assert.Equal(t, "http://localhost:6333/dashboard", c.Inspector.DashboardURL())
}
