package bot

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	telebot "gopkg.in/telebot.v3"

	"github.com/dmikhr/coinpurse-bot/internal/bot/handlers"
)

// fakeContext implements just enough of telebot.Context for routing tests;
// unimplemented methods panic via the embedded nil interface.
type fakeContext struct {
	telebot.Context
	text string
}

func (f *fakeContext) Text() string { return f.text }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCommandToken(t *testing.T) {
	testCases := []struct {
		text     string
		expected string
	}{
		{text: "/balance", expected: "/balance"},
		{text: "/gamble 50", expected: "/gamble"},
		{text: "/balance@coinpurse_bot", expected: "/balance"},
		{text: "/transfer@coinpurse_bot 42 100", expected: "/transfer"},
		{text: "  /work  ", expected: "/work"},
		{text: "hello", expected: ""},
		{text: "", expected: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.text, func(t *testing.T) {
			assert.Equal(t, tc.expected, commandToken(tc.text))
		})
	}
}

func TestRouter_DispatchesRegisteredCommand(t *testing.T) {
	router := NewRouter(testLogger())

	var called string
	router.RegisterCommand("/balance", func(c telebot.Context) error {
		called = "/balance"
		return nil
	})

	err := router.Route(&fakeContext{text: "/balance 123"})
	require.NoError(t, err)
	assert.Equal(t, "/balance", called)
}

func TestRouter_FallsBackToDefault(t *testing.T) {
	router := NewRouter(testLogger())

	var fallback bool
	router.SetDefault(func(c telebot.Context) error {
		fallback = true
		return nil
	})

	err := router.Route(&fakeContext{text: "/unknown"})
	require.NoError(t, err)
	assert.True(t, fallback)
}

func TestRouter_NoHandlerIsSilent(t *testing.T) {
	router := NewRouter(testLogger())

	err := router.Route(&fakeContext{text: "plain text"})
	assert.NoError(t, err)
}

func TestRouter_MiddlewareOrder(t *testing.T) {
	router := NewRouter(testLogger())

	var order []string
	mw := func(name string) handlers.Middleware {
		return func(next handlers.Handler) handlers.Handler {
			return func(c telebot.Context) error {
				order = append(order, name)
				return next(c)
			}
		}
	}

	router.Use(mw("first"))
	router.Use(mw("second"))
	router.RegisterCommand("/work", func(c telebot.Context) error {
		order = append(order, "handler")
		return nil
	})

	err := router.Route(&fakeContext{text: "/work"})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "handler"}, order)
}

func TestRouter_HandlerErrorPropagates(t *testing.T) {
	router := NewRouter(testLogger())

	boom := errors.New("boom")
	router.RegisterCommand("/work", func(c telebot.Context) error {
		return boom
	})

	err := router.Route(&fakeContext{text: "/work"})
	assert.ErrorIs(t, err, boom)
}
