package bot

// Command constants for the economy bot.
const (
	CommandStart       = "/start"
	CommandHelp        = "/help"
	CommandBalance     = "/balance"
	CommandJobList     = "/job_list"
	CommandJobChoose   = "/job_choose"
	CommandPromote     = "/job_promote"
	CommandWork        = "/work"
	CommandGamble      = "/gamble"
	CommandSlots       = "/slots"
	CommandRob         = "/rob"
	CommandLotteryBuy  = "/lottery_buy"
	CommandLotteryDraw = "/lottery_draw"
	CommandShop        = "/shop"
	CommandBuy         = "/buy"
	CommandSell        = "/sell"
	CommandUse         = "/use"
	CommandInventory   = "/inventory"
	CommandDeposit     = "/deposit"
	CommandWithdraw    = "/withdraw"
	CommandTransfer    = "/transfer"
	CommandLoan        = "/loan"
	CommandRepay       = "/repay"
	CommandInterest    = "/interest"
	CommandHistory     = "/history"
)
