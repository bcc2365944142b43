package tui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"librarian/internal/domain"
	"librarian/internal/moderation"
	"librarian/internal/service"
	"librarian/internal/watch"
)

type fakeLibrarian struct {
	result *service.TurnResult
	err    error
	asked  []string
	models []string
}

func (f *fakeLibrarian) Ask(ctx context.Context, query, model string) (*service.TurnResult, error) {
	f.asked = append(f.asked, query+"|"+model)
	return f.result, f.err
}

func (f *fakeLibrarian) Models() []string     { return f.models }
func (f *fakeLibrarian) DefaultModel() string { return f.models[0] }

type fakeIllustrator struct {
	replies []string
	err     error
}

func (f *fakeIllustrator) FromReply(ctx context.Context, reply string) (string, error) {
	f.replies = append(f.replies, reply)
	return "outputs/images/1984.png", f.err
}

const hobbitReply = "Recomandare: The Hobbit\n\nBilbo pleaca la drum. Dragonul Smaug pazeste comoara."

func completed() *service.TurnResult {
	return &service.TurnResult{State: service.Completed, Reply: hobbitReply, Title: "The Hobbit", Model: "gpt-4o-mini"}
}

func newFake() *fakeLibrarian {
	return &fakeLibrarian{result: completed(), models: []string{"gpt-4o-mini", "gpt-4.1-mini"}}
}

func typeAndEnter(t *testing.T, m Model, text string) (Model, tea.Cmd) {
	t.Helper()
	m.input.SetValue(text)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(Model), cmd
}

func TestModel_SubmitRunsTurn(t *testing.T) {
	lib := newFake()
	m := New(context.Background(), lib, moderation.NewWordList(), Options{})
	sized, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	m = sized.(Model)

	m, cmd := typeAndEnter(t, m, "o carte cu dragoni")
	require.NotNil(t, cmd)
	assert.True(t, m.busy)
	assert.Empty(t, m.input.Value())

	msg := m.ask("o carte cu dragoni")()
	next, _ := m.Update(msg)
	m = next.(Model)

	assert.False(t, m.busy)
	assert.Equal(t, []string{"o carte cu dragoni|gpt-4o-mini"}, lib.asked)
	require.Len(t, m.history, 2)
	assert.Equal(t, domain.RoleUser, m.history[0].Role)
	assert.Equal(t, hobbitReply, m.history[1].Content)
	assert.Equal(t, hobbitReply, m.lastReply)
	assert.Contains(t, m.View(), "The Hobbit")
}

func TestModel_ProfanityBlocked(t *testing.T) {
	lib := newFake()
	m := New(context.Background(), lib, moderation.NewWordList(), Options{})
	m, cmd := typeAndEnter(t, m, "fuck this")
	assert.Nil(t, cmd)
	assert.False(t, m.busy)
	require.Len(t, m.history, 2)
	assert.Equal(t, moderation.BlockedMessage, m.history[1].Content)
	assert.Empty(t, lib.asked)
}

func TestModel_TurnError(t *testing.T) {
	lib := newFake()
	lib.err = errors.New("embedding provider failed")
	m := New(context.Background(), lib, nil, Options{})
	m, _ = typeAndEnter(t, m, "magie")
	next, _ := m.Update(m.ask("magie")())
	m = next.(Model)
	assert.Contains(t, m.status, "embedding provider failed")
	assert.Empty(t, m.lastReply)
}

func TestModel_NoMatchIsNotIllustrated(t *testing.T) {
	lib := newFake()
	lib.result = &service.TurnResult{State: service.NoMatch, Reply: service.NoMatchMessage, Model: "gpt-4o-mini"}
	il := &fakeIllustrator{}
	m := New(context.Background(), lib, nil, Options{Illustrator: il})
	m, _ = typeAndEnter(t, m, "roboti")
	next, _ := m.Update(m.ask("roboti")())
	m = next.(Model)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlG})
	m = next.(Model)
	assert.Nil(t, cmd)
	assert.Contains(t, m.status, "Nu exista")
}

func TestModel_Illustrate(t *testing.T) {
	il := &fakeIllustrator{}
	m := New(context.Background(), newFake(), nil, Options{Illustrator: il})
	m.lastReply = hobbitReply

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlG})
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.True(t, m.busy)

	next, _ = m.Update(imageMsg{path: "outputs/images/the-hobbit.png"})
	m = next.(Model)
	assert.False(t, m.busy)
	assert.Contains(t, m.status, "the-hobbit.png")
}

func TestModel_CycleModel(t *testing.T) {
	m := New(context.Background(), newFake(), nil, Options{})
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)
	assert.Equal(t, "gpt-4.1-mini", m.model)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "gpt-4o-mini", next.(Model).model)
}

func TestModel_ExitWord(t *testing.T) {
	m := New(context.Background(), newFake(), nil, Options{})
	_, cmd := typeAndEnter(t, m, "exit")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_DriftNotice(t *testing.T) {
	ch := make(chan watch.Event, 1)
	m := New(context.Background(), newFake(), nil, Options{Drift: ch})
	next, cmd := m.Update(driftMsg(watch.Event{Path: "data/book_summaries.txt", Operation: watch.Modified}))
	assert.Contains(t, next.(Model).status, "seed --force")
	assert.NotNil(t, cmd, "keeps listening")
}

func TestHighlightBestSentence(t *testing.T) {
	style := lipgloss.NewStyle()
	out := highlightBestSentence("Bilbo pleaca la drum. Dragonul Smaug pazeste comoara.", "dragonul", style)
	assert.Equal(t, "Bilbo pleaca la drum. Dragonul Smaug pazeste comoara.", out)
	assert.Equal(t, "", highlightBestSentence("", "x", style))
}

func TestREPL_Conversation(t *testing.T) {
	lib := newFake()
	il := &fakeIllustrator{}
	in := strings.NewReader("o carte cu dragoni\ny\nfuck\n\nexit\n")
	var out bytes.Buffer

	require.NoError(t, NewREPL(lib, moderation.NewWordList(), il).Run(context.Background(), in, &out))

	text := out.String()
	assert.Contains(t, text, hobbitReply)
	assert.Contains(t, text, "Generez o ilustratie pentru „The Hobbit”?")
	assert.Contains(t, text, "Imagine generata: outputs/images/1984.png")
	assert.Contains(t, text, moderation.BlockedMessage)
	assert.Contains(t, text, "La revedere!")
	assert.Equal(t, []string{"o carte cu dragoni|gpt-4o-mini"}, lib.asked)
	assert.Equal(t, []string{hobbitReply}, il.replies)
}

func TestREPL_ErrorsDoNotStopLoop(t *testing.T) {
	lib := newFake()
	lib.err = errors.New("boom")
	var out bytes.Buffer
	require.NoError(t, NewREPL(lib, nil, nil).Run(context.Background(), strings.NewReader("a\nb\n"), &out))
	assert.Equal(t, 2, strings.Count(out.String(), "Eroare: boom"))
}
