package discord

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"cashbot/internal/game"

	"github.com/bwmarrin/discordgo"
)

// Command is a parsed prefix command. Name is already resolved from any
// alias.
type Command struct {
	Name string
	Args []string
}

var aliases = map[string]string{
	"bal":      "money",
	"lb":       "leaderboard",
	"dep":      "deposit",
	"with":     "withdraw",
	"rl":       "roulette",
	"bj":       "blackjack",
	"lot":      "lottery",
	"commands": "botm9wd",
	"menu":     "botm9wd",
	"help":     "botm9wd",
}

// ParseCommand splits content into a command when it starts with prefix.
func ParseCommand(prefix, content string) (Command, bool) {
	content = strings.TrimSpace(content)
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return Command{}, false
	}
	fields := strings.Fields(strings.TrimPrefix(content, prefix))
	if len(fields) == 0 {
		return Command{}, false
	}
	name := strings.ToLower(fields[0])
	if canonical, ok := aliases[name]; ok {
		name = canonical
	}
	return Command{Name: name, Args: fields[1:]}, true
}

var mentionPattern = regexp.MustCompile(`^<@!?(\d+)>$`)

// parseUser accepts a mention or a bare snowflake.
func parseUser(arg string) (string, bool) {
	if m := mentionPattern.FindStringSubmatch(arg); m != nil {
		return m[1], true
	}
	if arg != "" && strings.Trim(arg, "0123456789") == "" {
		return arg, true
	}
	return "", false
}

func pageArg(args []string) int {
	if len(args) == 0 {
		return 1
	}
	page, err := strconv.Atoi(args[0])
	if err != nil || page < 1 {
		return 1
	}
	return page
}

const customIDSep = ":"

func customID(kind, action, arg string) string {
	return kind + customIDSep + action + customIDSep + arg
}

func splitCustomID(id string) (kind, action, arg string, ok bool) {
	parts := strings.SplitN(id, customIDSep, 3)
	if len(parts) != 3 {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}

type request struct {
	userID    string
	channelID string
	args      []string
}

type reply struct {
	embed      *discordgo.MessageEmbed
	components []discordgo.MessageComponent
	// sessionID is set when the message shows a live game that must be
	// edited on expiry.
	sessionID string
}

type handler func(ctx context.Context, req request) (reply, error)

func (b *Bot) commands() map[string]handler {
	return map[string]handler{
		"balance":     b.cmdBalance,
		"money":       b.cmdMoney,
		"leaderboard": b.cmdLeaderboard,
		"deposit":     b.cmdDeposit,
		"withdraw":    b.cmdWithdraw,
		"pay":         b.cmdPay,
		"work":        b.cmdEarn(b.svc.Work),
		"crime":       b.cmdEarn(b.svc.Crime),
		"97ab":        b.cmdEarn(b.svc.Hustle),
		"nextwork":    b.cmdNextWork,
		"rob":         b.cmdRob,
		"chfara":      b.cmdRobberies,
		"roulette":    b.cmdRoulette,
		"dice":        b.cmdDice,
		"blackjack":   b.cmdBlackjack,
		"rps":         b.cmdRPS,
		"lottery":     b.cmdLottery,
		"botm9wd":     b.cmdHelp,
		"apitoken":    b.cmdAPIToken,
	}
}

func (b *Bot) cmdBalance(ctx context.Context, req request) (reply, error) {
	acct, err := b.svc.Balance(ctx, req.userID)
	if err != nil {
		return reply{}, err
	}
	e := b.present.Account("💰 Your Balances", acct)
	e.Fields = append(e.Fields, field("💳 Total", money(acct.Wealth()), false))
	return reply{embed: e}, nil
}

func (b *Bot) cmdMoney(ctx context.Context, req request) (reply, error) {
	v, err := b.svc.Money(ctx, req.userID)
	if err != nil {
		return reply{}, err
	}
	return reply{embed: b.present.Money(v)}, nil
}

func (b *Bot) cmdLeaderboard(ctx context.Context, req request) (reply, error) {
	return b.leaderboardPage(ctx, pageArg(req.args))
}

func (b *Bot) leaderboardPage(ctx context.Context, page int) (reply, error) {
	lb, err := b.svc.Leaderboard(ctx, page)
	if err != nil {
		return reply{}, err
	}
	return reply{embed: b.present.Leaderboard(lb), components: b.present.Pager("lb", lb.Page, lb.Pages)}, nil
}

func (b *Bot) cmdDeposit(ctx context.Context, req request) (reply, error) {
	if len(req.args) < 1 {
		return reply{embed: b.present.Usage("Deposit Help", "!deposit <amount>\n!deposit all", "!deposit 5000")}, nil
	}
	amt, err := game.ParseAmount(req.args[0])
	if err != nil {
		return reply{}, err
	}
	acct, err := b.svc.Deposit(ctx, req.userID, amt)
	if err != nil {
		return reply{}, err
	}
	return reply{embed: b.present.Account("🏦 Deposit Successful", acct)}, nil
}

func (b *Bot) cmdWithdraw(ctx context.Context, req request) (reply, error) {
	if len(req.args) < 1 {
		return reply{embed: b.present.Usage("Withdraw Help", "!withdraw <amount>\n!withdraw all", "!withdraw 5000")}, nil
	}
	amt, err := game.ParseAmount(req.args[0])
	if err != nil {
		return reply{}, err
	}
	acct, err := b.svc.Withdraw(ctx, req.userID, amt)
	if err != nil {
		return reply{}, err
	}
	return reply{embed: b.present.Account("🏦 Withdrawal Successful", acct)}, nil
}

func (b *Bot) cmdPay(ctx context.Context, req request) (reply, error) {
	if len(req.args) < 2 {
		return reply{embed: b.present.Usage("Pay Help", "!pay @user <amount>", "!pay @JohnDoe 1000")}, nil
	}
	to, ok := parseUser(req.args[0])
	if !ok {
		return reply{}, game.ErrInvalidTarget
	}
	amt, err := game.ParseAmount(req.args[1])
	if err != nil {
		return reply{}, err
	}
	res, err := b.svc.Pay(ctx, req.userID, to, amt)
	if err != nil {
		return reply{}, err
	}
	return reply{embed: b.present.Payment(res)}, nil
}

func (b *Bot) cmdEarn(action func(context.Context, string) (game.EarningResult, error)) handler {
	return func(ctx context.Context, req request) (reply, error) {
		res, err := action(ctx, req.userID)
		if err != nil {
			return reply{}, err
		}
		return reply{embed: b.present.Earning(res)}, nil
	}
}

func (b *Bot) cmdNextWork(ctx context.Context, req request) (reply, error) {
	work, err := b.svc.Cooldown(ctx, req.userID, game.CooldownWork)
	if err != nil {
		return reply{}, err
	}
	crime, err := b.svc.Cooldown(ctx, req.userID, game.CooldownCrime)
	if err != nil {
		return reply{}, err
	}
	return reply{embed: b.present.Cooldowns(work, crime)}, nil
}

func (b *Bot) cmdRob(ctx context.Context, req request) (reply, error) {
	if len(req.args) < 1 {
		return reply{embed: b.present.Usage("Rob Help", "!rob @user", "!rob @JohnDoe")}, nil
	}
	target, ok := parseUser(req.args[0])
	if !ok {
		return reply{}, game.ErrInvalidTarget
	}
	res, err := b.svc.Rob(ctx, req.userID, target)
	if err != nil {
		return reply{}, err
	}
	return reply{embed: b.present.Robbery(res)}, nil
}

func (b *Bot) cmdRobberies(ctx context.Context, req request) (reply, error) {
	return b.robberyPage(ctx, req.userID, pageArg(req.args))
}

func (b *Bot) robberyPage(ctx context.Context, userID string, page int) (reply, error) {
	rb, err := b.svc.Robberies(ctx, userID, page)
	if err != nil {
		return reply{}, err
	}
	return reply{embed: b.present.Robberies(rb), components: b.present.Pager("rob", rb.Page, rb.Pages)}, nil
}

func (b *Bot) cmdRoulette(ctx context.Context, req request) (reply, error) {
	if len(req.args) < 2 {
		return reply{embed: b.present.Usage("Roulette Help",
			"!roulette <number/color> <bet>\n!roulette <number/color> all",
			"!roulette red 100\n!roulette 7 50\n!roulette black all")}, nil
	}
	bet, err := game.ParseRouletteBet(req.args[0])
	if err != nil {
		return reply{}, err
	}
	amt, err := game.ParseAmount(req.args[1])
	if err != nil {
		return reply{}, err
	}
	res, err := b.svc.PlayRoulette(ctx, req.userID, amt, bet)
	if err != nil {
		return reply{}, err
	}
	return reply{embed: b.present.Roulette(res)}, nil
}

func (b *Bot) cmdDice(ctx context.Context, req request) (reply, error) {
	if len(req.args) < 2 {
		return reply{embed: b.present.Usage("Dice Help", "!dice <bet_amount> <number>", "!dice 1000 6\n!dice all 3")}, nil
	}
	amt, err := game.ParseAmount(req.args[0])
	if err != nil {
		return reply{}, err
	}
	called, err := strconv.Atoi(req.args[1])
	if err != nil {
		return reply{}, game.ErrInvalidChoice
	}
	res, err := b.svc.PlayDice(ctx, req.userID, amt, called)
	if err != nil {
		return reply{}, err
	}
	return reply{embed: b.present.Dice(res)}, nil
}

func (b *Bot) cmdBlackjack(ctx context.Context, req request) (reply, error) {
	if len(req.args) < 1 {
		return reply{embed: b.present.Usage("Blackjack Help", "!blackjack <bet>\n!blackjack all", "!bj 500")}, nil
	}
	amt, err := game.ParseAmount(req.args[0])
	if err != nil {
		return reply{}, err
	}
	v, err := b.svc.StartBlackjack(ctx, req.userID, amt)
	if err != nil {
		return reply{}, err
	}
	e, comps := b.present.Blackjack(v)
	return reply{embed: e, components: comps, sessionID: v.ID}, nil
}

func (b *Bot) cmdRPS(ctx context.Context, req request) (reply, error) {
	if len(req.args) < 1 {
		return reply{embed: b.present.Usage("Rock Paper Scissors Help", "!rps @player <bet_amount>\n!rps @player", "!rps @JohnDoe 1000\n!rps @JohnDoe")}, nil
	}
	opponent, ok := parseUser(req.args[0])
	if !ok {
		return reply{}, game.ErrInvalidTarget
	}
	var amt game.Amount
	if len(req.args) > 1 {
		parsed, err := game.ParseAmount(req.args[1])
		if err != nil {
			return reply{}, err
		}
		amt = parsed
	}
	v, err := b.svc.Challenge(ctx, req.userID, opponent, amt)
	if err != nil {
		return reply{}, err
	}
	e, comps := b.present.Duel(v)
	return reply{embed: e, components: comps, sessionID: v.ID}, nil
}

func (b *Bot) cmdLottery(ctx context.Context, req request) (reply, error) {
	action := ""
	if len(req.args) > 0 {
		action = strings.ToLower(req.args[0])
	}
	switch action {
	case "":
		st, err := b.svc.LotteryStatus(ctx)
		if err != nil {
			return reply{}, err
		}
		mine, err := b.svc.MyTickets(ctx, req.userID)
		if err != nil {
			return reply{}, err
		}
		return reply{embed: b.present.LotteryStatus(st, len(mine))}, nil
	case "buy":
		if len(req.args) < 2 {
			return reply{embed: b.present.Usage("Lottery Help", "!lottery buy <amount>", "!lottery buy 10")}, nil
		}
		count, err := strconv.Atoi(req.args[1])
		if err != nil {
			return reply{}, game.ErrInvalidAmount
		}
		tp, err := b.svc.BuyTickets(ctx, req.userID, count)
		if err != nil {
			return reply{}, err
		}
		return reply{embed: b.present.TicketPurchase(tp)}, nil
	case "numbers":
		mine, err := b.svc.MyTickets(ctx, req.userID)
		if err != nil {
			return reply{}, err
		}
		return reply{embed: b.present.Tickets(mine)}, nil
	default:
		return reply{}, fmt.Errorf("%w: use buy or numbers", game.ErrInvalidChoice)
	}
}

func (b *Bot) cmdHelp(context.Context, request) (reply, error) {
	return reply{embed: b.present.Help()}, nil
}

// cmdAPIToken DMs the caller a token scoped to their own account.
func (b *Bot) cmdAPIToken(_ context.Context, req request) (reply, error) {
	token, exp, err := b.tokens.Issue(req.userID)
	if err != nil {
		return reply{}, err
	}
	b.sendDM("api token dm", req.userID, b.present.APITokenDM(req.userID, token, exp))
	return reply{embed: b.present.APITokenSent(exp)}, nil
}
