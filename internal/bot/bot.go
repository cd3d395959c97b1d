// Package bot wires the Telegram transport around the economy engine.
package bot

import (
	"fmt"
	"log/slog"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/dmikhr/coinpurse-bot/internal/bot/handlers"
	"github.com/dmikhr/coinpurse-bot/internal/economy"
	apperrors "github.com/dmikhr/coinpurse-bot/internal/errors"
	"github.com/dmikhr/coinpurse-bot/internal/ratelimit"
	"github.com/dmikhr/coinpurse-bot/pkg/config"
)

const defaultPollTimeout = 10 * time.Second

// ModePolling and ModeWebhook select how updates are received.
const (
	ModePolling = "polling"
	ModeWebhook = "webhook"
)

// Bot owns the telebot instance and the command router.
type Bot struct {
	bot    *telebot.Bot
	router *Router
	log    *slog.Logger
}

// New constructs the bot, registers all command handlers and installs the
// middleware chain.
func New(cfg config.Config, engine *economy.Engine, limiter ratelimit.Limiter, log *slog.Logger) (*Bot, error) {
	if log == nil {
		log = slog.Default()
	}

	poller, err := buildPoller(cfg.Bot)
	if err != nil {
		return nil, fmt.Errorf("build poller: %w", err)
	}

	tb, err := telebot.NewBot(telebot.Settings{
		Token:  cfg.Bot.Token,
		Poller: poller,
		OnError: func(err error, c telebot.Context) {
			log.Error("telebot error", slog.Any("error", err))
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	b := &Bot{
		bot:    tb,
		router: NewRouter(log),
		log:    log,
	}

	b.setupRouter(cfg, engine, limiter)
	tb.Handle(telebot.OnText, b.router.Route)

	return b, nil
}

func buildPoller(cfg config.BotConfig) (telebot.Poller, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultPollTimeout
	}

	switch cfg.Mode {
	case ModeWebhook:
		return &telebot.Webhook{
			Listen:   ":8443",
			Endpoint: &telebot.WebhookEndpoint{PublicURL: cfg.WebhookURL},
		}, nil
	case ModePolling, "":
		return &telebot.LongPoller{Timeout: timeout}, nil
	default:
		return nil, fmt.Errorf("unknown bot mode %q", cfg.Mode)
	}
}

func (b *Bot) setupRouter(cfg config.Config, engine *economy.Engine, limiter ratelimit.Limiter) {
	errHandler := apperrors.NewHandler(b.log, cfg.Sentry.Enabled)

	b.router.Use(RecoveryMiddleware(b.log, errHandler))
	b.router.Use(ErrorHandlingMiddleware(errHandler))
	b.router.Use(LoggingMiddleware(b.log))
	if limiter != nil {
		b.router.Use(RateLimitMiddleware(limiter, ratelimit.NewRules(cfg.RateLimit), b.log))
	}
	b.router.Use(MetricsMiddleware)

	h := handlers.NewEconomy(engine, cfg.Bot.IsAdmin, b.log)

	b.router.RegisterCommand(CommandStart, h.Start)
	b.router.RegisterCommand(CommandHelp, h.Help)
	b.router.RegisterCommand(CommandBalance, h.Balance)
	b.router.RegisterCommand(CommandJobList, h.JobList)
	b.router.RegisterCommand(CommandJobChoose, h.JobChoose)
	b.router.RegisterCommand(CommandPromote, h.JobPromote)
	b.router.RegisterCommand(CommandWork, h.Work)
	b.router.RegisterCommand(CommandGamble, h.Gamble)
	b.router.RegisterCommand(CommandSlots, h.Slots)
	b.router.RegisterCommand(CommandRob, h.Rob)
	b.router.RegisterCommand(CommandLotteryBuy, h.LotteryBuy)
	b.router.RegisterCommand(CommandLotteryDraw, h.LotteryDraw)
	b.router.RegisterCommand(CommandShop, h.Shop)
	b.router.RegisterCommand(CommandBuy, h.Buy)
	b.router.RegisterCommand(CommandSell, h.Sell)
	b.router.RegisterCommand(CommandUse, h.Use)
	b.router.RegisterCommand(CommandInventory, h.Inventory)
	b.router.RegisterCommand(CommandDeposit, h.Deposit)
	b.router.RegisterCommand(CommandWithdraw, h.Withdraw)
	b.router.RegisterCommand(CommandTransfer, h.Transfer)
	b.router.RegisterCommand(CommandLoan, h.Loan)
	b.router.RegisterCommand(CommandRepay, h.Repay)
	b.router.RegisterCommand(CommandInterest, h.Interest)
	b.router.RegisterCommand(CommandHistory, h.History)

	b.router.SetDefault(func(c telebot.Context) error {
		// Plain text is ignored; only slash commands are meaningful.
		if cmd := commandToken(c.Text()); cmd != "" {
			return c.Send("Unknown command. Use /help to see what I can do.")
		}

		return nil
	})
}

// Start begins receiving updates. It blocks until Stop is called.
func (b *Bot) Start() {
	b.log.Info("bot starting", slog.String("username", b.bot.Me.Username))
	b.bot.Start()
}

// Stop halts update delivery.
func (b *Bot) Stop() {
	b.log.Info("bot stopping")
	b.bot.Stop()
}

// Telebot exposes the underlying client for health checks.
func (b *Bot) Telebot() *telebot.Bot {
	return b.bot
}
