// Package handlers maps Telegram commands onto economy engine operations.
// Handlers only parse arguments and render results; all ledger rules live in
// the engine.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/dmikhr/coinpurse-bot/internal/economy"
)

var errMissingArgument = errors.New("missing command argument")

// Economy bundles the command handlers over a single engine instance.
type Economy struct {
	engine  *economy.Engine
	isAdmin func(userID int64) bool
	log     *slog.Logger
}

// NewEconomy constructs the economy command handlers. isAdmin gates the
// privileged lottery draw; the engine itself performs no authorization.
func NewEconomy(engine *economy.Engine, isAdmin func(userID int64) bool, log *slog.Logger) *Economy {
	if log == nil {
		log = slog.Default()
	}
	if isAdmin == nil {
		isAdmin = func(int64) bool { return false }
	}

	return &Economy{
		engine:  engine,
		isAdmin: isAdmin,
		log:     log,
	}
}

// Start greets a new user and touches their ledger so it exists from the
// first interaction.
func (h *Economy) Start(c telebot.Context) error {
	userID, err := senderID(c)
	if err != nil {
		return err
	}

	balance, err := h.engine.Balance(context.Background(), userID)
	if err != nil {
		return err
	}

	return c.Send(fmt.Sprintf(
		"Welcome to the coinpurse economy! You start with 💵 %d in your wallet. Use /help to see all commands.",
		balance.Wallet,
	))
}

// Help lists the command surface.
func (h *Economy) Help(c telebot.Context) error {
	return c.Send(strings.Join([]string{
		"💰 Economy commands:",
		"/balance — wallet and bank balance",
		"/job_list /job_choose <job> /job_promote /work — jobs",
		"/gamble <amount> /slots <amount> /rob <user_id> — gambling",
		"/lottery_buy <tickets> /lottery_draw — lottery",
		"/shop /buy <item> /sell <item> /use <item> /inventory — shop",
		"/deposit <amount> /withdraw <amount> /transfer <user_id> <amount> — bank",
		"/loan <amount> /repay <amount> /interest — credit",
		"/history — your last actions",
	}, "\n"))
}

// Balance reports wallet and bank.
func (h *Economy) Balance(c telebot.Context) error {
	userID, err := senderID(c)
	if err != nil {
		return err
	}

	balance, err := h.engine.Balance(context.Background(), userID)
	if err != nil {
		return err
	}

	return c.Send(fmt.Sprintf("Wallet: 💵 %d | Bank: 💵 %d", balance.Wallet, balance.Bank))
}

// JobList shows available jobs.
func (h *Economy) JobList(c telebot.Context) error {
	jobs := h.engine.ListJobs()

	lines := make([]string, 0, len(jobs)+1)
	lines = append(lines, "Available jobs:")
	for _, job := range jobs {
		lines = append(lines, "- "+job)
	}

	return c.Send(strings.Join(lines, "\n"))
}

// JobChoose picks a job.
func (h *Economy) JobChoose(c telebot.Context) error {
	userID, err := senderID(c)
	if err != nil {
		return err
	}

	job, err := stringArg(c, 0)
	if err != nil {
		return c.Send("Usage: /job_choose <job>")
	}

	result, err := h.engine.ChooseJob(context.Background(), userID, job)
	if err != nil {
		return err
	}

	return c.Send(fmt.Sprintf("You are now working as a %s.", result.Job))
}

// JobPromote raises the job level.
func (h *Economy) JobPromote(c telebot.Context) error {
	userID, err := senderID(c)
	if err != nil {
		return err
	}

	result, err := h.engine.Promote(context.Background(), userID)
	if err != nil {
		return err
	}

	return c.Send(fmt.Sprintf("Congrats! Promoted at %s. Level %d pay unlocked!", result.Job, result.JobLevel))
}

// Work runs a shift.
func (h *Economy) Work(c telebot.Context) error {
	userID, err := senderID(c)
	if err != nil {
		return err
	}

	result, err := h.engine.Work(context.Background(), userID)
	if err != nil {
		return err
	}

	return c.Send(fmt.Sprintf("You worked as a %s and earned 💵 %d!", result.Job, result.Earnings))
}

// Gamble flips a coin for the stake.
func (h *Economy) Gamble(c telebot.Context) error {
	userID, err := senderID(c)
	if err != nil {
		return err
	}

	amount, err := amountArg(c, 0)
	if err != nil {
		return c.Send("Usage: /gamble <amount>")
	}

	result, err := h.engine.Gamble(context.Background(), userID, amount)
	if err != nil {
		return err
	}

	if result.Won {
		return c.Send(fmt.Sprintf("You gambled %d and won 💵 %d.", result.Amount, result.Amount))
	}

	return c.Send(fmt.Sprintf("You gambled %d and lost 💵 %d.", result.Amount, result.Amount))
}

// Slots spins the slot machine.
func (h *Economy) Slots(c telebot.Context) error {
	userID, err := senderID(c)
	if err != nil {
		return err
	}

	amount, err := amountArg(c, 0)
	if err != nil {
		return c.Send("Usage: /slots <amount>")
	}

	result, err := h.engine.Slots(context.Background(), userID, amount)
	if err != nil {
		return err
	}

	reel := strings.Join(result.Symbols[:], "")
	if result.Jackpot {
		return c.Send(fmt.Sprintf("JACKPOT! %s You won 💵 %d", reel, result.Payout))
	}

	return c.Send(fmt.Sprintf("%s You lost 💵 %d", reel, -result.Payout))
}

// Rob attempts to rob another user, identified by a numeric ID argument or a
// reply to one of their messages.
func (h *Economy) Rob(c telebot.Context) error {
	userID, err := senderID(c)
	if err != nil {
		return err
	}

	targetID, err := targetRef(c, 0)
	if err != nil {
		return c.Send("Usage: /rob <user_id> (or reply to the target's message)")
	}

	result, err := h.engine.Rob(context.Background(), userID, targetID)
	if err != nil {
		return err
	}

	if result.Success {
		return c.Send(fmt.Sprintf("You successfully robbed %s for 💵 %d!", targetID, result.Amount))
	}

	return c.Send(fmt.Sprintf("You failed the robbery and lost 💵 %d.", result.Amount))
}

// LotteryBuy purchases lottery tickets.
func (h *Economy) LotteryBuy(c telebot.Context) error {
	userID, err := senderID(c)
	if err != nil {
		return err
	}

	count, err := countArg(c, 0)
	if err != nil {
		return c.Send("Usage: /lottery_buy <tickets>")
	}

	result, err := h.engine.BuyTickets(context.Background(), userID, count)
	if err != nil {
		return err
	}

	return c.Send(fmt.Sprintf("Bought %d tickets for 💵 %d.", result.Bought, result.Cost))
}

// LotteryDraw runs the draw. Only configured administrators may trigger it;
// the gate lives here because the engine's draw is unconditional.
func (h *Economy) LotteryDraw(c telebot.Context) error {
	sender := c.Sender()
	if sender == nil || !h.isAdmin(sender.ID) {
		return c.Send("Only admins can draw the lottery.")
	}

	result, err := h.engine.Draw(context.Background())
	if err != nil {
		return err
	}

	return c.Send(fmt.Sprintf("🎉 Lottery draw: %s won 💵 %d!", result.WinnerID, result.Prize))
}

// Shop lists the shop catalog.
func (h *Economy) Shop(c telebot.Context) error {
	items := h.engine.ListShop()

	lines := make([]string, 0, len(items)+1)
	lines = append(lines, "🛒 Shop:")
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("%s — 💵 %d", item.Name, item.Price))
	}

	return c.Send(strings.Join(lines, "\n"))
}

// Buy purchases a shop item.
func (h *Economy) Buy(c telebot.Context) error {
	userID, err := senderID(c)
	if err != nil {
		return err
	}

	item, err := stringArg(c, 0)
	if err != nil {
		return c.Send("Usage: /buy <item>")
	}

	result, err := h.engine.BuyItem(context.Background(), userID, item)
	if err != nil {
		return err
	}

	return c.Send(fmt.Sprintf("You bought %s for 💵 %d.", result.Item, result.Price))
}

// Sell sells an inventory item.
func (h *Economy) Sell(c telebot.Context) error {
	userID, err := senderID(c)
	if err != nil {
		return err
	}

	item, err := stringArg(c, 0)
	if err != nil {
		return c.Send("Usage: /sell <item>")
	}

	result, err := h.engine.SellItem(context.Background(), userID, item)
	if err != nil {
		return err
	}

	return c.Send(fmt.Sprintf("Sold %s for 💵 %d.", result.Item, result.Value))
}

// Use uses an inventory item.
func (h *Economy) Use(c telebot.Context) error {
	userID, err := senderID(c)
	if err != nil {
		return err
	}

	item, err := stringArg(c, 0)
	if err != nil {
		return c.Send("Usage: /use <item>")
	}

	if err := h.engine.UseItem(context.Background(), userID, item); err != nil {
		return err
	}

	return c.Send(fmt.Sprintf("You used %s!", item))
}

// Inventory lists held items.
func (h *Economy) Inventory(c telebot.Context) error {
	userID, err := senderID(c)
	if err != nil {
		return err
	}

	items, err := h.engine.Inventory(context.Background(), userID)
	if err != nil {
		return err
	}

	if len(items) == 0 {
		return c.Send("Inventory empty.")
	}

	return c.Send("Your inventory: " + strings.Join(items, ", "))
}

// Deposit moves cash into the bank.
func (h *Economy) Deposit(c telebot.Context) error {
	userID, err := senderID(c)
	if err != nil {
		return err
	}

	amount, err := amountArg(c, 0)
	if err != nil {
		return c.Send("Usage: /deposit <amount>")
	}

	result, err := h.engine.Deposit(context.Background(), userID, amount)
	if err != nil {
		return err
	}

	return c.Send(fmt.Sprintf("Deposited 💵 %d into the bank. Bank: 💵 %d", amount, result.Bank))
}

// Withdraw moves cash out of the bank.
func (h *Economy) Withdraw(c telebot.Context) error {
	userID, err := senderID(c)
	if err != nil {
		return err
	}

	amount, err := amountArg(c, 0)
	if err != nil {
		return c.Send("Usage: /withdraw <amount>")
	}

	result, err := h.engine.Withdraw(context.Background(), userID, amount)
	if err != nil {
		return err
	}

	return c.Send(fmt.Sprintf("Withdrew 💵 %d from the bank. Wallet: 💵 %d", amount, result.Wallet))
}

// Transfer sends bank money to another user.
func (h *Economy) Transfer(c telebot.Context) error {
	userID, err := senderID(c)
	if err != nil {
		return err
	}

	// Without a reply target a single argument is ambiguous: it would be
	// read as both the recipient and the amount.
	if !hasReplyTarget(c) && len(c.Args()) < 2 {
		return c.Send("Usage: /transfer <user_id> <amount> (or reply with /transfer <amount>)")
	}

	targetID, err := targetRef(c, 0)
	if err != nil {
		return c.Send("Usage: /transfer <user_id> <amount> (or reply with /transfer <amount>)")
	}

	amount, err := lastAmountArg(c)
	if err != nil {
		return c.Send("Usage: /transfer <user_id> <amount>")
	}

	result, err := h.engine.Transfer(context.Background(), userID, targetID, amount)
	if err != nil {
		return err
	}

	return c.Send(fmt.Sprintf("Transferred 💵 %d to %s.", result.Amount, result.To))
}

// Loan takes a loan with interest.
func (h *Economy) Loan(c telebot.Context) error {
	userID, err := senderID(c)
	if err != nil {
		return err
	}

	amount, err := amountArg(c, 0)
	if err != nil {
		return c.Send("Usage: /loan <amount>")
	}

	result, err := h.engine.TakeLoan(context.Background(), userID, amount)
	if err != nil {
		return err
	}

	return c.Send(fmt.Sprintf("Loan approved. You received 💵 %d. Pay back 💵 %.2f total.", amount, result.Loan))
}

// Repay pays down the loan.
func (h *Economy) Repay(c telebot.Context) error {
	userID, err := senderID(c)
	if err != nil {
		return err
	}

	amount, err := amountArg(c, 0)
	if err != nil {
		return c.Send("Usage: /repay <amount>")
	}

	result, err := h.engine.Repay(context.Background(), userID, amount)
	if err != nil {
		return err
	}

	return c.Send(fmt.Sprintf("Repaid 💵 %.2f. Remaining loan: 💵 %.2f", result.Applied, result.Loan))
}

// Interest claims bank interest.
func (h *Economy) Interest(c telebot.Context) error {
	userID, err := senderID(c)
	if err != nil {
		return err
	}

	result, err := h.engine.ClaimInterest(context.Background(), userID)
	if err != nil {
		return err
	}

	return c.Send(fmt.Sprintf("💵 %d interest added to your bank.", result.Earned))
}

// History shows the last actions.
func (h *Economy) History(c telebot.Context) error {
	userID, err := senderID(c)
	if err != nil {
		return err
	}

	entries, err := h.engine.Recent(context.Background(), userID, economy.DefaultHistoryLimit)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		return c.Send("No history yet.")
	}

	return c.Send("📜 Last actions:\n" + strings.Join(entries, "\n"))
}

func senderID(c telebot.Context) (string, error) {
	if c == nil || c.Sender() == nil {
		return "", errors.New("update has no sender")
	}

	return strconv.FormatInt(c.Sender().ID, 10), nil
}

func stringArg(c telebot.Context, idx int) (string, error) {
	args := c.Args()
	if idx >= len(args) || strings.TrimSpace(args[idx]) == "" {
		return "", errMissingArgument
	}

	return strings.TrimSpace(args[idx]), nil
}

func amountArg(c telebot.Context, idx int) (int64, error) {
	raw, err := stringArg(c, idx)
	if err != nil {
		return 0, err
	}

	return strconv.ParseInt(raw, 10, 64)
}

func countArg(c telebot.Context, idx int) (int, error) {
	raw, err := stringArg(c, idx)
	if err != nil {
		return 0, err
	}

	return strconv.Atoi(raw)
}

// lastAmountArg parses the final argument as an amount, so /transfer works
// both with an explicit target ID and in reply mode.
func lastAmountArg(c telebot.Context) (int64, error) {
	args := c.Args()
	if len(args) == 0 {
		return 0, errMissingArgument
	}

	return strconv.ParseInt(strings.TrimSpace(args[len(args)-1]), 10, 64)
}

// hasReplyTarget reports whether the update replies to a message whose
// sender can serve as the other party of a two-user command.
func hasReplyTarget(c telebot.Context) bool {
	msg := c.Message()

	return msg != nil && msg.ReplyTo != nil && msg.ReplyTo.Sender != nil
}

// targetRef resolves the other party of a two-user command: the replied-to
// message's sender when present, otherwise a numeric ID argument.
func targetRef(c telebot.Context, idx int) (string, error) {
	if hasReplyTarget(c) {
		return strconv.FormatInt(c.Message().ReplyTo.Sender.ID, 10), nil
	}

	raw, err := stringArg(c, idx)
	if err != nil {
		return "", err
	}

	if _, err := strconv.ParseInt(raw, 10, 64); err != nil {
		return "", err
	}

	return raw, nil
}
