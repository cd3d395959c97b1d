package bot

import (
	"log/slog"
	"strings"
	"sync"

	telebot "gopkg.in/telebot.v3"

	"github.com/dmikhr/coinpurse-bot/internal/bot/handlers"
)

// Router dispatches incoming text commands to registered handlers through the
// middleware chain.
type Router struct {
	mu             sync.RWMutex
	commands       map[string]handlers.Handler
	defaultHandler handlers.Handler
	middlewares    []handlers.Middleware
	log            *slog.Logger
}

// NewRouter builds a Router with empty registries.
func NewRouter(log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}

	return &Router{
		commands:    make(map[string]handlers.Handler),
		middlewares: make([]handlers.Middleware, 0),
		log:         log,
	}
}

// RegisterCommand registers a handler for a bot command.
func (r *Router) RegisterCommand(cmd string, h handlers.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[cmd] = h
}

// Use appends a middleware to the chain.
func (r *Router) Use(mw handlers.Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middlewares = append(r.middlewares, mw)
}

// SetDefault sets the fallback handler for unmatched commands.
func (r *Router) SetDefault(h handlers.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaultHandler = h
}

// Route directs the incoming update to the appropriate handler.
func (r *Router) Route(c telebot.Context) error {
	if c == nil {
		return nil
	}

	command := commandToken(c.Text())

	r.mu.RLock()
	handler, ok := r.commands[command]
	if !ok {
		handler = r.defaultHandler
	}
	chain := append([]handlers.Middleware(nil), r.middlewares...)
	r.mu.RUnlock()

	if handler == nil {
		r.log.Info("no handler registered", slog.String("command", command))
		return nil
	}

	for i := len(chain) - 1; i >= 0; i-- {
		if chain[i] == nil {
			continue
		}
		handler = chain[i](handler)
	}

	return handler(c)
}

// commandToken extracts the leading /command from a message, dropping any
// @botname suffix and arguments.
func commandToken(text string) string {
	text = strings.TrimSpace(text)
	if text == "" || !strings.HasPrefix(text, "/") {
		return ""
	}

	if idx := strings.IndexByte(text, ' '); idx >= 0 {
		text = text[:idx]
	}

	if idx := strings.IndexByte(text, '@'); idx >= 0 {
		text = text[:idx]
	}

	return text
}
