package discord

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cashbot/internal/game"

	"github.com/bwmarrin/discordgo"
)

const (
	colorBlue   = 0x3498DB
	colorGreen  = 0x2ECC71
	colorRed    = 0xE74C3C
	colorGold   = 0xF1C40F
	colorOrange = 0xE67E22
	colorGrey   = 0x95A5A6
)

// Presenter turns domain results into embeds. It holds the command prefix
// so usage hints match the running bot.
type Presenter struct {
	prefix string
}

func NewPresenter(prefix string) Presenter {
	return Presenter{prefix: prefix}
}

func mention(userID string) string {
	return "<@" + userID + ">"
}

// money renders a signed amount with thousands separators.
func money(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	raw := strconv.FormatInt(v, 10)
	var b strings.Builder
	for i, r := range raw {
		if i > 0 && (len(raw)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "$" + b.String()
}

func field(name, value string, inline bool) *discordgo.MessageEmbedField {
	return &discordgo.MessageEmbedField{Name: name, Value: value, Inline: inline}
}

func humanDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// Error maps a domain error to a red embed. Unknown errors are reported
// generically so store details never reach the channel.
func (p Presenter) Error(err error) *discordgo.MessageEmbed {
	title, desc := "❌ Something went wrong", "Please try again later."
	var cooldown *game.CooldownError
	switch {
	case errors.As(err, &cooldown):
		title = "⏳ Slow down"
		desc = fmt.Sprintf("You can %s again in %s.", cooldown.Kind, humanDuration(cooldown.Remaining))
	case errors.Is(err, game.ErrInsufficientFunds):
		title, desc = "❌ Insufficient Cash", err.Error()+"\nWithdraw from your bank first!"
	case errors.Is(err, game.ErrInvalidAmount):
		title, desc = "❌ Invalid Amount", "Amount must be a positive number or 'all'!"
	case errors.Is(err, game.ErrInvalidTarget):
		title, desc = "❌ Invalid Target", "You need to pick another player."
	case errors.Is(err, game.ErrInvalidChoice):
		title, desc = "❌ Invalid Choice", err.Error()
	case errors.Is(err, game.ErrNothingToSteal):
		title, desc = "❌ Nothing to Steal", "Your target has no cash on hand."
	case errors.Is(err, game.ErrNotYourGame):
		title, desc = "❌ Not Your Game", "Only the players in this game can use these buttons."
	case errors.Is(err, game.ErrAlreadyActed):
		title, desc = "❌ Already Chosen", "You already made your choice."
	case errors.Is(err, game.ErrNotAccepted):
		title, desc = "⌛ Not Accepted", "Wait for the challenge to be accepted."
	case errors.Is(err, game.ErrSessionNotFound), errors.Is(err, game.ErrSessionEnded):
		title, desc = "❌ Game Over", "This game has already finished."
	}
	return &discordgo.MessageEmbed{Title: title, Description: desc, Color: colorRed}
}

func (p Presenter) Usage(title, usage, example string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "ℹ️ " + title,
		Color: colorBlue,
		Fields: []*discordgo.MessageEmbedField{
			field("Usage", strings.ReplaceAll(usage, "!", p.prefix), false),
			field("Example", strings.ReplaceAll(example, "!", p.prefix), false),
		},
	}
}

func (p Presenter) Money(v game.MoneyView) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "💰 Your Balances",
		Color: colorGreen,
		Fields: []*discordgo.MessageEmbedField{
			field("💵 Cash", money(v.Cash), true),
			field("🏦 Bank", money(v.Bank), true),
			field("💳 Total", money(v.Wealth), false),
			field("🏆 Rank", "#"+strconv.Itoa(v.Rank), false),
		},
	}
}

func (p Presenter) Account(title string, a game.Account) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: title,
		Color: colorGreen,
		Fields: []*discordgo.MessageEmbedField{
			field("💵 Cash", money(a.Cash), true),
			field("🏦 Bank", money(a.Bank), true),
		},
	}
}

func (p Presenter) Payment(r game.PaymentResult) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "💸 Payment Sent",
		Description: fmt.Sprintf("%s paid %s %s.", mention(r.From.UserID), mention(r.To.UserID), money(r.Amount)),
		Color:       colorGreen,
		Fields: []*discordgo.MessageEmbedField{
			field("Your Cash", money(r.From.Cash), true),
		},
	}
}

func (p Presenter) Leaderboard(lb game.LeaderboardPage) *discordgo.MessageEmbed {
	var b strings.Builder
	for _, row := range lb.Rows {
		fmt.Fprintf(&b, "**#%d** %s %s\n", row.Rank, mention(row.UserID), money(row.Wealth))
	}
	if b.Len() == 0 {
		b.WriteString("Nobody has any money yet.")
	}
	return &discordgo.MessageEmbed{
		Title:       "🏆 Richest Players",
		Description: b.String(),
		Color:       colorGold,
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Page %d/%d", lb.Page, lb.Pages)},
	}
}

func (p Presenter) Robberies(rb game.RobberyBoard) *discordgo.MessageEmbed {
	var b strings.Builder
	for _, row := range rb.Rows {
		fmt.Fprintf(&b, "**#%d** %s %s stolen (%d ✅ / %d ❌)\n", row.Rank, mention(row.UserID), money(row.TotalStolen), row.Successful, row.Failed)
	}
	if b.Len() == 0 {
		b.WriteString("No robberies yet.")
	}
	self := fmt.Sprintf("%s stolen, %d successful, %d failed", money(rb.Self.TotalStolen), rb.Self.Successful, rb.Self.Failed)
	if rb.SelfRank > 0 {
		self = fmt.Sprintf("#%d, %s", rb.SelfRank, self)
	}
	return &discordgo.MessageEmbed{
		Title:       "🦹 Top Robbers",
		Description: b.String(),
		Color:       colorOrange,
		Fields:      []*discordgo.MessageEmbedField{field("Your Record", self, false)},
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Page %d/%d", rb.Page, rb.Pages)},
	}
}

// Pager renders previous/next buttons for paged boards. kind prefixes the
// custom id so the interaction handler can route the click.
func (p Presenter) Pager(kind string, page, pages int) []discordgo.MessageComponent {
	if pages <= 1 {
		return nil
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: "◀ Previous", Style: discordgo.SecondaryButton, CustomID: customID(kind, "page", strconv.Itoa(page-1)), Disabled: page <= 1},
			discordgo.Button{Label: "Next ▶", Style: discordgo.SecondaryButton, CustomID: customID(kind, "page", strconv.Itoa(page+1)), Disabled: page >= pages},
		}},
	}
}

func (p Presenter) Earning(r game.EarningResult) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{Color: colorGreen}
	switch {
	case r.Outcome == "caught":
		e.Title = "🚓 Busted!"
		e.Description = fmt.Sprintf("You got caught and paid a %s fine.", money(-r.Amount))
		e.Color = colorRed
	case r.Action == "crime":
		e.Title = "🦹 Crime Paid Off"
		e.Description = fmt.Sprintf("You got away with %s!", money(r.Amount))
	case r.Action == "97ab" && r.Amount == 0:
		e.Title = "😶 Slow Night"
		e.Description = "You earned nothing this time."
		e.Color = colorGrey
	case r.Action == "97ab":
		e.Title = "💃 Night Shift"
		e.Description = fmt.Sprintf("You earned %s.", money(r.Amount))
	default:
		e.Title = "💼 Work Complete"
		e.Description = fmt.Sprintf("You earned %s.", money(r.Amount))
	}
	e.Fields = []*discordgo.MessageEmbedField{field("💵 Cash", money(r.Account.Cash), false)}
	e.Footer = &discordgo.MessageEmbedFooter{Text: "Available again " + r.NextAt.UTC().Format("15:04 MST")}
	return e
}

func (p Presenter) Cooldowns(work, crime time.Duration) *discordgo.MessageEmbed {
	status := func(d time.Duration) string {
		if d <= 0 {
			return "✅ Ready"
		}
		return "⏳ " + humanDuration(d)
	}
	return &discordgo.MessageEmbed{
		Title: "⏰ Cooldowns",
		Color: colorBlue,
		Fields: []*discordgo.MessageEmbedField{
			field("Work", status(work), true),
			field("Crime / 97ab", status(crime), true),
		},
	}
}

func (p Presenter) Robbery(r game.RobberyResult) *discordgo.MessageEmbed {
	switch r.Outcome {
	case game.RobberySuccess:
		return &discordgo.MessageEmbed{
			Title:       "🦹 Robbery Successful",
			Description: fmt.Sprintf("You stole %s from %s!", money(r.Amount), mention(r.Target.UserID)),
			Color:       colorGreen,
			Fields:      []*discordgo.MessageEmbedField{field("💵 Cash", money(r.Robber.Cash), false)},
		}
	case game.RobberyCaught:
		return &discordgo.MessageEmbed{
			Title:       "🚓 Caught!",
			Description: fmt.Sprintf("You were caught robbing %s and fined %s.", mention(r.Target.UserID), money(r.Amount)),
			Color:       colorRed,
			Fields:      []*discordgo.MessageEmbedField{field("💵 Cash", money(r.Robber.Cash), false)},
		}
	default:
		return p.Error(game.ErrNothingToSteal)
	}
}

func (p Presenter) Roulette(r game.RouletteResult) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{Color: colorRed}
	landed := fmt.Sprintf("Ball landed on %d (%s)!", r.Number, r.Color)
	if r.Won {
		e.Title = "🎰 You Won!"
		e.Description = fmt.Sprintf("%s\nYou won %s!", landed, money(r.Net))
		e.Color = colorGreen
	} else {
		e.Title = "😢 You Lost!"
		e.Description = fmt.Sprintf("%s\nYou lost %s!", landed, money(r.Stake))
	}
	e.Fields = []*discordgo.MessageEmbedField{
		field("Bet", r.Bet.String(), true),
		field("💰 New Cash Balance", money(r.Account.Cash), true),
	}
	return e
}

func (p Presenter) Dice(r game.DiceResult) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{Color: colorRed}
	rolled := fmt.Sprintf("You called %d, the die shows %d.", r.Called, r.Rolled)
	if r.Won {
		e.Title = "🎲 Winner!"
		e.Description = fmt.Sprintf("%s\nYou won %s!", rolled, money(r.Net))
		e.Color = colorGreen
	} else {
		e.Title = "🎲 No Luck"
		e.Description = fmt.Sprintf("%s\nYou lost %s.", rolled, money(r.Stake))
	}
	e.Fields = []*discordgo.MessageEmbedField{field("💰 New Cash Balance", money(r.Account.Cash), false)}
	return e
}

func renderHand(cards []game.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.Rank + suitSymbol(c.Suit)
	}
	return strings.Join(parts, " ")
}

func suitSymbol(s game.Suit) string {
	switch s {
	case game.Hearts:
		return "♥"
	case game.Diamonds:
		return "♦"
	case game.Clubs:
		return "♣"
	default:
		return "♠"
	}
}

func (p Presenter) Blackjack(v game.BlackjackView) (*discordgo.MessageEmbed, []discordgo.MessageComponent) {
	e := &discordgo.MessageEmbed{
		Title: "🃏 Blackjack",
		Color: colorBlue,
		Fields: []*discordgo.MessageEmbedField{
			field("Your Hand", fmt.Sprintf("%s (%d)", renderHand(v.Player), v.PlayerValue), false),
			field("Dealer's Hand", fmt.Sprintf("%s (%d)", renderHand(v.Dealer), v.DealerValue), false),
			field("Bet", money(v.Bet), true),
		},
	}
	switch v.State {
	case game.BlackjackInProgress:
		e.Description = mention(v.Owner) + ", hit or stand?"
		return e, []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Hit", Style: discordgo.PrimaryButton, CustomID: customID("bj", "hit", v.ID)},
				discordgo.Button{Label: "Stand", Style: discordgo.SecondaryButton, CustomID: customID("bj", "stand", v.ID)},
			}},
		}
	case game.BlackjackTimedOut:
		e.Description = "⏰ Game timed out. Your bet was returned."
		e.Color = colorGrey
		return e, nil
	}
	switch v.Outcome {
	case game.OutcomeWin:
		e.Description = fmt.Sprintf("🎉 You win %s!", money(v.Payout-v.Bet))
		e.Color = colorGreen
	case game.OutcomePush:
		e.Description = "🤝 Push. Your bet was returned."
		e.Color = colorGold
	default:
		if v.State == game.BlackjackBusted {
			e.Description = "💥 Bust! You lose " + money(v.Bet) + "."
		} else {
			e.Description = "😢 Dealer wins. You lose " + money(v.Bet) + "."
		}
		e.Color = colorRed
	}
	e.Fields = append(e.Fields, field("💵 Cash", money(v.Account.Cash), true))
	return e, nil
}

func (p Presenter) Duel(v game.DuelView) (*discordgo.MessageEmbed, []discordgo.MessageComponent) {
	e := &discordgo.MessageEmbed{
		Title: "🎮 Rock Paper Scissors",
		Color: colorBlue,
	}
	if v.Bet > 0 {
		e.Fields = append(e.Fields, field("💰 Bet Amount", money(v.Bet), false))
	}
	switch v.Stage {
	case game.DuelPending:
		e.Description = fmt.Sprintf("%s has challenged %s to a game!", mention(v.Challenger), mention(v.Opponent))
		return e, []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Accept", Style: discordgo.SuccessButton, CustomID: customID("rps", "accept", v.ID)},
				discordgo.Button{Label: "Decline", Style: discordgo.DangerButton, CustomID: customID("rps", "decline", v.ID)},
			}},
		}
	case game.DuelActive:
		waiting := []string{}
		for _, player := range []string{v.Challenger, v.Opponent} {
			if !contains(v.Chosen, player) {
				waiting = append(waiting, mention(player))
			}
		}
		e.Description = "Choose your move! Waiting for " + strings.Join(waiting, " and ") + "."
		return e, []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "🪨 Rock", Style: discordgo.PrimaryButton, CustomID: customID("rps", string(game.Rock), v.ID)},
				discordgo.Button{Label: "📄 Paper", Style: discordgo.PrimaryButton, CustomID: customID("rps", string(game.Paper), v.ID)},
				discordgo.Button{Label: "✂️ Scissors", Style: discordgo.PrimaryButton, CustomID: customID("rps", string(game.Scissors), v.ID)},
			}},
		}
	case game.DuelDeclined:
		e.Description = mention(v.Opponent) + " declined the challenge."
		e.Color = colorGrey
	case game.DuelExpired:
		e.Description = "⏰ The challenge timed out."
		e.Color = colorGrey
	case game.DuelResolved:
		e.Fields = append(e.Fields,
			field(userLabel(v.Challenger), string(v.Hands[v.Challenger]), true),
			field(userLabel(v.Opponent), string(v.Hands[v.Opponent]), true),
		)
		if v.Winner == "" {
			e.Description = "🤝 It's a tie!"
			e.Color = colorGold
		} else {
			e.Description = "🏆 " + mention(v.Winner) + " wins!"
			if v.Payout > 0 {
				e.Description += " They take " + money(v.Payout) + "."
			}
			e.Color = colorGreen
		}
	}
	return e, nil
}

func userLabel(userID string) string {
	return "Player " + userID
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func (p Presenter) Expiry(ev game.SessionExpiry) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{Title: "⏰ Game Timed Out", Color: colorGrey}
	switch {
	case ev.Kind == game.SessionBlackjack:
		e.Description = "The blackjack round expired. Your bet was returned."
	case ev.Refunded > 0:
		e.Description = fmt.Sprintf("The rock paper scissors game expired. Both players got %s back.", money(ev.Refunded))
	default:
		e.Description = "The rock paper scissors challenge expired."
	}
	return e
}

func (p Presenter) LotteryStatus(st game.LotteryStatus, mine int) *discordgo.MessageEmbed {
	next := "First draw pending"
	if !st.FirstDrawPending {
		next = "In " + humanDuration(st.NextDrawIn)
	}
	return &discordgo.MessageEmbed{
		Title:       "🎟️ Lottery Status",
		Description: "Try your luck in the daily lottery!",
		Color:       colorBlue,
		Fields: []*discordgo.MessageEmbedField{
			field("🏆 Current Jackpot", money(st.Jackpot), false),
			field("🎫 Your Tickets", fmt.Sprintf("You have %d tickets", mine), false),
			field("⏰ Next Draw", next, false),
			field("💰 Ticket Price", money(st.TicketPrice)+" each", false),
			field("Commands", fmt.Sprintf("%slottery buy <amount>\n%slottery numbers", p.prefix, p.prefix), false),
		},
	}
}

func joinNumbers(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}

func (p Presenter) TicketPurchase(tp game.TicketPurchase) *discordgo.MessageEmbed {
	numbers := joinNumbers(tp.Numbers)
	if len(numbers) > 1000 {
		numbers = numbers[:1000] + "…"
	}
	return &discordgo.MessageEmbed{
		Title:       "🎫 Tickets Purchased!",
		Description: fmt.Sprintf("You bought %d lottery tickets for %s!", len(tp.Numbers), money(tp.Cost)),
		Color:       colorGreen,
		Fields: []*discordgo.MessageEmbedField{
			field("🔢 Your New Numbers", numbers, false),
			field("💰 New Balance", money(tp.Account.Cash), true),
			field("🏆 Jackpot", money(tp.Jackpot), true),
		},
	}
}

// Tickets lists numbers ten per field; Discord caps an embed at 25 fields.
func (p Presenter) Tickets(nums []int) *discordgo.MessageEmbed {
	if len(nums) == 0 {
		return &discordgo.MessageEmbed{Title: "❌ No Tickets", Description: "You don't have any lottery tickets!", Color: colorRed}
	}
	e := &discordgo.MessageEmbed{Title: "🎫 Your Lottery Numbers", Description: "Here are all your active tickets:", Color: colorBlue}
	for start := 0; start < len(nums) && len(e.Fields) < 25; start += 10 {
		end := min(start+10, len(nums))
		e.Fields = append(e.Fields, field(fmt.Sprintf("Tickets %d-%d", start+1, end), joinNumbers(nums[start:end]), false))
	}
	if shown := len(e.Fields) * 10; shown < len(nums) {
		e.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("and %d more", len(nums)-shown)}
	}
	return e
}

func (p Presenter) Draw(res game.DrawResult) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title:       "🎰 Lottery Results",
		Description: fmt.Sprintf("The winning number is **%d**!", res.Number),
		Color:       colorGold,
	}
	if len(res.Winners) == 0 {
		e.Fields = []*discordgo.MessageEmbedField{field("No Winners", "Nobody matched this time. The jackpot resets.", false)}
		return e
	}
	names := make([]string, len(res.Winners))
	for i, w := range res.Winners {
		names[i] = mention(w)
	}
	e.Fields = []*discordgo.MessageEmbedField{
		field("🏆 Winners", strings.Join(names, ", "), false),
		field("💰 Prize per Winner", money(res.Prize), false),
	}
	return e
}

func (p Presenter) WinnerDM(res game.DrawResult) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🎉 Lottery Winner!",
		Description: fmt.Sprintf("Congratulations! Your number %d won!", res.Number),
		Color:       colorGold,
		Fields:      []*discordgo.MessageEmbedField{field("💰 Prize", money(res.Prize), false)},
	}
}

func (p Presenter) APITokenSent(exp time.Time) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "📬 Token Sent",
		Description: "Check your DMs for your cashctl token.",
		Color:       colorGreen,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Expires " + exp.UTC().Format("2006-01-02 15:04 UTC")},
	}
}

func (p Presenter) APITokenDM(userID, token string, exp time.Time) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🔑 Your cashctl Token",
		Description: fmt.Sprintf("Run `cashctl login --user %s --token <token>` and keep the token private. Anyone holding it can spend your cash.", userID),
		Color:       colorBlue,
		Fields:      []*discordgo.MessageEmbedField{field("Token", "```"+token+"```", false)},
		Footer:      &discordgo.MessageEmbedFooter{Text: "Expires " + exp.UTC().Format("2006-01-02 15:04 UTC")},
	}
}

func (p Presenter) Help() *discordgo.MessageEmbed {
	x := p.prefix
	return &discordgo.MessageEmbed{
		Title:       "🎰 Casino Bot Commands",
		Description: "Here are all available commands:",
		Color:       colorBlue,
		Fields: []*discordgo.MessageEmbedField{
			field("🏦 Banking", fmt.Sprintf(
				"**%[1]sdeposit/%[1]sdep <amount>** Deposit cash to your bank (safe from robbery)\n"+
					"**%[1]swithdraw/%[1]swith <amount>** Withdraw cash from your bank\n"+
					"**%[1]spay <@user> <amount>** Pay another player from your cash\n"+
					"**%[1]smoney/%[1]sbal** Check your balances and rank\n"+
					"**%[1]srob <@user>** Rob someone's cash\n"+
					"**%[1]schfara [page]** Robbery leaderboard", x), false),
			field("🎮 Games", fmt.Sprintf(
				"**%[1]sblackjack/%[1]sbj <bet>** Play blackjack\n"+
					"**%[1]sroulette/%[1]srl <number/color> <bet>** Play roulette\n"+
					"**%[1]sdice <bet> <number>** Bet on a dice roll (1-6)\n"+
					"**%[1]srps @player [bet]** Rock Paper Scissors\n"+
					"**%[1]slottery/%[1]slot [buy <amount>|numbers]** Daily lottery", x), false),
			field("💰 Economy", fmt.Sprintf(
				"**%[1]swork** Earn $1,000-$5,000 (1h cooldown)\n"+
					"**%[1]snextwork** Check your cooldowns\n"+
					"**%[1]scrime** High risk, high reward (1h cooldown)\n"+
					"**%[1]s97ab** Night shift (shares the crime cooldown)\n"+
					"**%[1]sleaderboard/%[1]slb** Richest players", x), false),
			field("🖥️ Terminal", fmt.Sprintf("**%sapitoken** DM yourself a token for the cashctl CLI", x), false),
		},
		Footer: &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Use %sbotm9wd, %scommands or %smenu to see this menu again", x, x, x)},
	}
}
