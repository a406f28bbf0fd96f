package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"ragdesk/internal/domain"
	"ragdesk/internal/service"
	"ragdesk/internal/summarizer"
	"ragdesk/internal/vectorstore"
)

// Deps are the services the TUI drives. Inspector may be nil.
type Deps struct {
	Files     *service.FileRegistry
	Chat      *service.ChatSession
	Embedding *service.EmbeddingJobMonitor
	Models    *service.ModelCatalog
	Inspector vectorstore.Inspector
	Excerpter *summarizer.Excerpter
}

type focus int

const (
	focusChat focus = iota
	focusFiles
	focusUpload
)

const (
	toastTTL    = 4 * time.Second
	maxToasts   = 3
	maxLogLines = 8
	filesWidth  = 36
)

type toast struct {
	id int
	n  domain.Notification
}

type toastExpiredMsg struct{ id int }

type collectionMsg struct {
	info    vectorstore.CollectionInfo
	missing string
	err     error
}

// queryDoneMsg ends the submit started from the input box.
type queryDoneMsg struct{}

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	ctx    context.Context
	deps   Deps
	bridge *Bridge

	input    textinput.Model
	upload   textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	focus         focus
	cursor        int
	pendingDelete string
	toasts        []toast
	nextToast     int
	collection    *vectorstore.CollectionInfo
	missing       string
	collectionErr error
	sending       bool
	embedRunning  bool
	messageCount  int
	width         int
	height        int
	ready         bool
}

// New creates a new TUI model instance. Every service reports its state
// changes through bridge, which must also be the services' notifier.
func New(ctx context.Context, deps Deps, bridge *Bridge) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0

	up := textinput.New()
	up.Prompt = "upload: "
	up.Placeholder = "space-separated file paths"
	up.CharLimit = 0

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	deps.Files.Subscribe(bridge.Changed)
	deps.Chat.Subscribe(bridge.Changed)
	deps.Embedding.Subscribe(bridge.Changed)
	deps.Models.Subscribe(bridge.Changed)

	return Model{
		ctx:      ctx,
		deps:     deps,
		bridge:   bridge,
		input:    ti,
		upload:   up,
		viewport: viewport.New(0, 0),
		spinner:  sp,
	}
}

// Init loads the file list, the model list and the collection state.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.spinner.Tick, m.bridge.wait, m.loadFiles(), m.refreshCollection()}
	if m.deps.Chat.RequiresModel() {
		cmds = append(cmds, m.loadModels())
	}
	return tea.Batch(cmds...)
}

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case notificationMsg:
		cmd := m.addToast(domain.Notification(msg))
		return m, tea.Batch(m.bridge.wait, cmd)
	case toastExpiredMsg:
		for i, t := range m.toasts {
			if t.id == msg.id {
				m.toasts = append(m.toasts[:i:i], m.toasts[i+1:]...)
				break
			}
		}
		return m, nil
	case stateChangedMsg:
		cmd := m.syncState()
		return m, tea.Batch(m.bridge.wait, cmd)
	case collectionMsg:
		m.collectionErr = msg.err
		if msg.err == nil {
			info := msg.info
			m.collection = &info
			m.missing = msg.missing
		}
		return m, nil
	case queryDoneMsg:
		m.sending = false
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m.forward(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.focus == focusUpload {
		return m.handleUploadKey(msg)
	}
	if m.pendingDelete != "" {
		name := m.pendingDelete
		m.pendingDelete = ""
		if msg.String() == "y" {
			return m, m.removeFile(name)
		}
		return m, nil
	}
	switch msg.String() {
	case "tab":
		if m.focus == focusChat {
			m.focus = focusFiles
			m.input.Blur()
			return m, nil
		}
		m.focus = focusChat
		return m, m.input.Focus()
	case "ctrl+n":
		m.cycleModel()
		return m, nil
	}
	if m.focus == focusFiles {
		return m.handleFilesKey(msg)
	}
	switch msg.String() {
	case "enter":
		return m, m.submit()
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m.forward(msg)
}

func (m Model) handleFilesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	files := m.deps.Files.Files()
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(files)-1 {
			m.cursor++
		}
	case " ":
		if m.cursor < len(files) {
			m.deps.Files.Toggle(files[m.cursor].Name)
		}
	case "d":
		if m.cursor < len(files) {
			m.pendingDelete = files[m.cursor].Name
		}
	case "r":
		return m, m.loadFiles()
	case "u":
		m.focus = focusUpload
		m.upload.Reset()
		return m, m.upload.Focus()
	case "e":
		if !m.deps.Embedding.Start(m.ctx) {
			return m, m.addToast(domain.Notification{Level: domain.LevelInfo, Message: "Embedding is already running."})
		}
	case "m":
		m.cycleModel()
	case "M":
		if m.deps.Chat.RequiresModel() {
			return m, m.refreshModels()
		}
	case "i":
		return m, m.refreshCollection()
	}
	return m, nil
}

func (m Model) handleUploadKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.focus = focusFiles
		m.upload.Blur()
		return m, nil
	case tea.KeyEnter:
		paths := strings.Fields(m.upload.Value())
		m.focus = focusFiles
		m.upload.Blur()
		m.upload.Reset()
		return m, m.uploadFiles(paths)
	}
	var cmd tea.Cmd
	m.upload, cmd = m.upload.Update(msg)
	return m, cmd
}

func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case focusChat:
		m.input, cmd = m.input.Update(msg)
	case focusUpload:
		m.upload, cmd = m.upload.Update(msg)
	}
	return m, cmd
}

// submit sends the input as a query. It is ignored while a query is in
// flight, including one whose Cmd has not started yet, and keeps the input
// when no model is chosen.
func (m *Model) submit() tea.Cmd {
	chat := m.deps.Chat
	query := m.input.Value()
	if m.busy() || strings.TrimSpace(query) == "" {
		return nil
	}
	m.sending = true
	model := m.deps.Models.Selected()
	if !chat.RequiresModel() || model != "" {
		m.input.Reset()
	}
	sel := m.deps.Files.Selection()
	ctx := m.ctx
	return func() tea.Msg {
		_ = chat.Submit(ctx, query, sel, model)
		return queryDoneMsg{}
	}
}

func (m Model) busy() bool { return m.sending || m.deps.Chat.Busy() }

func (m *Model) cycleModel() {
	if m.deps.Chat.RequiresModel() {
		m.deps.Models.Cycle()
	}
}

func (m *Model) addToast(n domain.Notification) tea.Cmd {
	id := m.nextToast
	m.nextToast++
	m.toasts = append(m.toasts, toast{id: id, n: n})
	if len(m.toasts) > maxToasts {
		m.toasts = m.toasts[len(m.toasts)-maxToasts:]
	}
	return tea.Tick(toastTTL, func(time.Time) tea.Msg { return toastExpiredMsg{id: id} })
}

// syncState re-reads the snapshots the view depends on.
func (m *Model) syncState() tea.Cmd {
	if n := len(m.deps.Files.Files()); m.cursor >= n {
		m.cursor = max(0, n-1)
	}
	if m.pendingDelete != "" {
		if _, ok := m.deps.Files.Lookup(m.pendingDelete); !ok {
			m.pendingDelete = ""
		}
	}

	var cmd tea.Cmd
	running := m.deps.Embedding.Running()
	if m.embedRunning && !running {
		cmd = m.refreshCollection()
	}
	m.embedRunning = running

	msgs := m.deps.Chat.Messages()
	m.viewport.SetContent(m.renderChat(msgs))
	if len(msgs) != m.messageCount {
		m.messageCount = len(msgs)
		m.viewport.GotoBottom()
	}
	return cmd
}

func (m *Model) resize(width, height int) {
	m.ready = true
	m.width, m.height = width, height
	_, ph := panelStyle.GetFrameSize()
	_, qh := queryBoxStyle.GetFrameSize()
	reserved := 1 + maxToasts + qh + 1 + 1 // header, toasts, input, help
	m.viewport.Width = max(20, width-filesWidth-4-4)
	m.viewport.Height = max(3, height-reserved-ph)
	m.input.Width = max(10, width-8)
	m.upload.Width = max(10, width-16)
	m.viewport.SetContent(m.renderChat(m.deps.Chat.Messages()))
}

func (m Model) loadFiles() tea.Cmd {
	files, ctx := m.deps.Files, m.ctx
	return func() tea.Msg {
		_ = files.Load(ctx)
		return nil
	}
}

func (m Model) loadModels() tea.Cmd {
	models, ctx := m.deps.Models, m.ctx
	return func() tea.Msg {
		_ = models.Load(ctx)
		return nil
	}
}

func (m Model) refreshModels() tea.Cmd {
	models, ctx := m.deps.Models, m.ctx
	return func() tea.Msg {
		_ = models.Refresh(ctx)
		return nil
	}
}

func (m Model) removeFile(name string) tea.Cmd {
	files, ctx := m.deps.Files, m.ctx
	info, ok := files.Lookup(name)
	if !ok {
		return nil
	}
	return func() tea.Msg {
		_ = files.Remove(ctx, info)
		return nil
	}
}

func (m Model) uploadFiles(paths []string) tea.Cmd {
	if len(paths) == 0 {
		return nil
	}
	files, ctx, bridge := m.deps.Files, m.ctx, m.bridge
	return func() tea.Msg {
		uploads, closeAll, err := service.OpenUploads(paths)
		if err != nil {
			bridge.Notify(domain.Notification{Level: domain.LevelError, Message: "File upload failed: " + err.Error()})
			return nil
		}
		defer closeAll()
		_ = files.Upload(ctx, uploads)
		return nil
	}
}

func (m Model) refreshCollection() tea.Cmd {
	insp, ctx := m.deps.Inspector, m.ctx
	if insp == nil {
		return nil
	}
	return func() tea.Msg {
		info, err := insp.Collection(ctx)
		msg := collectionMsg{info: info, err: err}
		if err == nil && !info.Exists {
			msg.missing = vectorstore.DescribeMissing(ctx, insp, info.Name)
		}
		return msg
	}
}
