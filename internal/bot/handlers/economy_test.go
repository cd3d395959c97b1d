package handlers

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	telebot "gopkg.in/telebot.v3"

	"github.com/dmikhr/coinpurse-bot/internal/economy"
	"github.com/dmikhr/coinpurse-bot/internal/ledgerstore"
)

// fakeContext implements the slice of telebot.Context the handlers touch.
type fakeContext struct {
	telebot.Context
	sender  *telebot.User
	args    []string
	message *telebot.Message
	sent    []string
}

func (f *fakeContext) Sender() *telebot.User     { return f.sender }
func (f *fakeContext) Args() []string            { return f.args }
func (f *fakeContext) Message() *telebot.Message { return f.message }

func (f *fakeContext) Send(what interface{}, _ ...interface{}) error {
	f.sent = append(f.sent, fmt.Sprint(what))
	return nil
}

func (f *fakeContext) lastSent(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, f.sent)

	return f.sent[len(f.sent)-1]
}

func testHandlers(t *testing.T) *Economy {
	t.Helper()

	store, err := ledgerstore.NewFileStore(t.TempDir()+"/ledgers.json", nil)
	require.NoError(t, err)

	engine := economy.NewEngine(store, nil, nil)

	return NewEconomy(engine, func(id int64) bool { return id == 777 }, nil)
}

func userContext(id int64, args ...string) *fakeContext {
	return &fakeContext{sender: &telebot.User{ID: id}, args: args}
}

func TestBalanceHandler(t *testing.T) {
	h := testHandlers(t)
	c := userContext(1)

	require.NoError(t, h.Balance(c))
	assert.Equal(t, "Wallet: 💵 100 | Bank: 💵 0", c.lastSent(t))
}

func TestDepositHandler(t *testing.T) {
	h := testHandlers(t)

	c := userContext(1, "40")
	require.NoError(t, h.Deposit(c))
	assert.Contains(t, c.lastSent(t), "Deposited 💵 40")

	c = userContext(1)
	require.NoError(t, h.Deposit(c))
	assert.Contains(t, c.lastSent(t), "Usage: /deposit")

	c = userContext(1, "lots")
	require.NoError(t, h.Deposit(c))
	assert.Contains(t, c.lastSent(t), "Usage: /deposit")
}

func TestJobChooseHandler(t *testing.T) {
	h := testHandlers(t)

	c := userContext(1, "miner")
	require.NoError(t, h.JobChoose(c))
	assert.Contains(t, c.lastSent(t), "working as a miner")

	c = userContext(1, "astronaut")
	err := h.JobChoose(c)
	assert.Error(t, err)
}

func TestLotteryDrawHandler_AdminOnly(t *testing.T) {
	h := testHandlers(t)

	c := userContext(1)
	require.NoError(t, h.Balance(c))

	c = userContext(1)
	require.NoError(t, h.LotteryDraw(c))
	assert.Equal(t, "Only admins can draw the lottery.", c.lastSent(t))

	c = userContext(777)
	require.NoError(t, h.LotteryDraw(c))
	assert.Contains(t, c.lastSent(t), "Lottery draw:")
}

func TestTransferHandler_TargetResolution(t *testing.T) {
	h := testHandlers(t)

	// seed both ledgers and give the sender bank balance
	require.NoError(t, h.Balance(userContext(1)))
	require.NoError(t, h.Balance(userContext(2)))
	require.NoError(t, h.Deposit(userContext(1, "80")))

	// explicit numeric target argument
	c := userContext(1, "2", "30")
	require.NoError(t, h.Transfer(c))
	assert.Contains(t, c.lastSent(t), "Transferred 💵 30 to 2")

	// reply mode: target comes from the replied-to message
	c = userContext(1, "20")
	c.message = &telebot.Message{ReplyTo: &telebot.Message{Sender: &telebot.User{ID: 2}}}
	require.NoError(t, h.Transfer(c))
	assert.Contains(t, c.lastSent(t), "Transferred 💵 20 to 2")

	// non-numeric target
	c = userContext(1, "bob", "10")
	require.NoError(t, h.Transfer(c))
	assert.Contains(t, c.lastSent(t), "Usage: /transfer")

	// a single argument without a reply target is ambiguous and must not
	// be read as both the recipient and the amount
	c = userContext(1, "50")
	require.NoError(t, h.Transfer(c))
	assert.Contains(t, c.lastSent(t), "Usage: /transfer")
	assert.NotContains(t, c.lastSent(t), "Transferred")
}

func TestHistoryHandler(t *testing.T) {
	h := testHandlers(t)

	c := userContext(1)
	require.NoError(t, h.History(c))
	assert.Equal(t, "No history yet.", c.lastSent(t))

	require.NoError(t, h.Deposit(userContext(1, "10")))

	c = userContext(1)
	require.NoError(t, h.History(c))
	assert.Contains(t, c.lastSent(t), "Deposited 10")
}

func TestMissingSender(t *testing.T) {
	h := testHandlers(t)

	err := h.Balance(&fakeContext{})
	assert.Error(t, err)
}
