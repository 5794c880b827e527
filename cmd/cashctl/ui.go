package main

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	cl "cashbot/internal/cli"
	"cashbot/internal/game"

	"github.com/fatih/color"
)

var (
	stdinReader = bufio.NewReader(os.Stdin)
	accent      = color.New(color.FgCyan, color.Bold)
	success     = color.New(color.FgGreen, color.Bold)
	warn        = color.New(color.FgYellow, color.Bold)
	danger      = color.New(color.FgRed, color.Bold)
	neutral     = color.New(color.FgHiWhite)
)

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printError(msg string) {
	danger.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func promptRequired(label string) (string, error) {
	for {
		fmt.Printf("%s: ", label)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.TrimSpace(text)
		if text != "" {
			return text, nil
		}
		printWarn(label + " is required.")
	}
}

func promptOptional(label string) (string, error) {
	fmt.Printf("%s: ", label)
	text, err := stdinReader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func promptChoice(label string, options []string, defaultValue string) (string, error) {
	normalized := make(map[string]struct{}, len(options))
	for _, opt := range options {
		normalized[strings.ToLower(strings.TrimSpace(opt))] = struct{}{}
	}
	for {
		fmt.Printf("%s (%s) [%s]: ", label, strings.Join(options, "/"), defaultValue)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.ToLower(strings.TrimSpace(text))
		if text == "" {
			text = strings.ToLower(strings.TrimSpace(defaultValue))
		}
		if _, ok := normalized[text]; ok {
			return text, nil
		}
		printWarn("Invalid option. Please pick one of the listed values.")
	}
}

func renderAccount(a game.Account) {
	fmt.Printf("Cash:   %s\n", money(a.Cash))
	fmt.Printf("Bank:   %s\n", money(a.Bank))
}

func renderMoney(v game.MoneyView) {
	accent.Println("\n== YOUR BALANCES ==")
	renderAccount(v.Account)
	fmt.Printf("Wealth: %s\n", money(v.Wealth))
	fmt.Printf("Rank:   #%d\n\n", v.Rank)
}

func renderLeaderboard(p game.LeaderboardPage) {
	accent.Printf("\n== LEADERBOARD (page %d/%d) ==\n", p.Page, p.Pages)
	if len(p.Rows) == 0 {
		printInfo("No players yet.")
		return
	}
	fmt.Printf("%-5s %-22s %14s %14s %14s\n", "RANK", "USER", "CASH", "BANK", "WEALTH")
	for _, r := range p.Rows {
		fmt.Printf("%-5d %-22s %14s %14s %14s\n", r.Rank, truncate(r.UserID, 22), money(r.Cash), money(r.Bank), money(r.Wealth))
	}
	fmt.Println()
}

func renderEarning(r game.EarningResult) {
	switch r.Outcome {
	case "caught":
		printError(fmt.Sprintf("🚨 Caught! You paid a fine of %s.", money(-r.Amount)))
	case "nothing":
		printWarn("Nothing happened this time.")
	case "jackpot":
		printSuccess(fmt.Sprintf("💎 Jackpot! You earned %s.", money(r.Amount)))
	default:
		printSuccess(fmt.Sprintf("You earned %s from %s.", money(r.Amount), r.Action))
	}
	renderAccount(r.Account)
	printInfo("Ready again at " + r.NextAt.Local().Format("15:04:05"))
}

func renderCooldowns(remaining map[string]int64) {
	accent.Println("\n== COOLDOWNS ==")
	kinds := make([]string, 0, len(remaining))
	for k := range remaining {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		if remaining[k] <= 0 {
			success.Printf("%-6s ready\n", k)
			continue
		}
		warn.Printf("%-6s %s\n", k, humanSeconds(remaining[k]))
	}
	fmt.Println()
}

func renderRobbery(r game.RobberyResult) {
	switch r.Outcome {
	case game.RobberySuccess:
		printSuccess(fmt.Sprintf("💰 You stole %s from %s!", money(r.Amount), r.Target.UserID))
	case game.RobberyCaught:
		printError(fmt.Sprintf("🚔 Caught robbing %s! You were fined %s.", r.Target.UserID, money(r.Amount)))
	default:
		printWarn(r.Target.UserID + " has no cash to steal.")
	}
	renderAccount(r.Robber)
}

func renderRobberies(b game.RobberyBoard) {
	accent.Printf("\n== ROBBERIES (page %d/%d) ==\n", b.Page, b.Pages)
	fmt.Printf("You: #%d  stolen %s  success %d  failed %d\n\n", b.SelfRank, money(b.Self.TotalStolen), b.Self.Successful, b.Self.Failed)
	if len(b.Rows) == 0 {
		printInfo("No robberies yet.")
		return
	}
	fmt.Printf("%-5s %-22s %14s %8s %8s\n", "RANK", "USER", "STOLEN", "OK", "FAILED")
	for _, r := range b.Rows {
		fmt.Printf("%-5d %-22s %14s %8d %8d\n", r.Rank, truncate(r.UserID, 22), money(r.TotalStolen), r.Successful, r.Failed)
	}
	fmt.Println()
}

func renderRoulette(r game.RouletteResult) {
	fmt.Printf("The ball lands on %s %d.\n", r.Color, r.Number)
	if r.Won {
		printSuccess(fmt.Sprintf("Your %s bet wins %s!", r.Bet, money(r.Net)))
	} else {
		printError(fmt.Sprintf("Your %s bet loses %s.", r.Bet, money(r.Stake)))
	}
	renderAccount(r.Account)
}

func renderDice(r game.DiceResult) {
	fmt.Printf("You called %d and rolled %d.\n", r.Called, r.Rolled)
	if r.Won {
		printSuccess(fmt.Sprintf("You win %s!", money(r.Net)))
	} else {
		printError(fmt.Sprintf("You lose %s.", money(r.Stake)))
	}
	renderAccount(r.Account)
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
	}
	return "♠"
}

func renderBlackjack(v game.BlackjackView) {
	accent.Printf("\n== BLACKJACK %s ==\n", v.ID)
	fmt.Printf("Your hand:   %s (%d)\n", renderHand(v.Player), v.PlayerValue)
	fmt.Printf("Dealer hand: %s (%d)\n", renderHand(v.Dealer), v.DealerValue)
	fmt.Printf("Bet:         %s\n", money(v.Bet))
	switch {
	case v.State == game.BlackjackInProgress:
		return
	case v.State == game.BlackjackTimedOut:
		printWarn("Round timed out. Your bet was returned.")
	case v.Outcome == game.OutcomeWin:
		printSuccess(fmt.Sprintf("You win %s!", money(v.Payout-v.Bet)))
	case v.Outcome == game.OutcomePush:
		printInfo("Push. Your bet was returned.")
	default:
		printError(fmt.Sprintf("You lose %s.", money(v.Bet)))
	}
	renderAccount(v.Account)
}

func renderDuel(v game.DuelView) {
	accent.Printf("\n== RPS %s ==\n", v.ID)
	fmt.Printf("%s vs %s for %s\n", v.Challenger, v.Opponent, money(v.Bet))
	switch v.Stage {
	case game.DuelPending:
		printInfo(fmt.Sprintf("Waiting for %s: cashctl rps accept %s", v.Opponent, v.ID))
	case game.DuelActive:
		printInfo(fmt.Sprintf("Choose a hand: cashctl rps choose %s <rock|paper|scissors> (%d/2 locked in)", v.ID, len(v.Chosen)))
	case game.DuelDeclined:
		printWarn(v.Opponent + " declined.")
	case game.DuelExpired:
		printWarn("Duel timed out.")
	case game.DuelResolved:
		fmt.Printf("%s threw %s, %s threw %s\n", v.Challenger, v.Hands[v.Challenger], v.Opponent, v.Hands[v.Opponent])
		if v.Winner == "" {
			printInfo("Tie. Stakes returned.")
		} else {
			printSuccess(fmt.Sprintf("%s wins %s!", v.Winner, money(v.Payout)))
		}
	}
	fmt.Println()
}

func renderLottery(o cl.LotteryOverview, mine int) {
	st := o.Status
	accent.Println("\n== LOTTERY ==")
	fmt.Printf("Jackpot:      %s\n", money(st.Jackpot))
	fmt.Printf("Ticket price: %s\n", money(st.TicketPrice))
	fmt.Printf("Tickets sold: %d (%d players)\n", st.Tickets, st.Players)
	fmt.Printf("Your tickets: %d\n", mine)
	if st.FirstDrawPending {
		fmt.Println("Next draw:    on the next scheduler tick")
	} else {
		fmt.Printf("Next draw:    %s\n", o.NextDrawInText)
	}
	fmt.Println()
}

func renderTicketPurchase(p game.TicketPurchase) {
	printSuccess(fmt.Sprintf("Bought %d tickets for %s. Jackpot is now %s.", len(p.Numbers), money(p.Cost), money(p.Jackpot)))
	renderTickets(p.Numbers)
	renderAccount(p.Account)
}

func renderTickets(numbers []int) {
	if len(numbers) == 0 {
		printInfo("You have no tickets for the next draw.")
		return
	}
	parts := make([]string, len(numbers))
	for i, n := range numbers {
		parts[i] = strconv.Itoa(n)
	}
	fmt.Printf("Numbers: %s\n", strings.Join(parts, ", "))
}

func money(v int64) string {
	if v < 0 {
		return "-$" + comma(-v)
	}
	return "$" + comma(v)
}

func humanSeconds(secs int64) string {
	h, m, s := secs/3600, (secs%3600)/60, secs%60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

func comma(v int64) string {
	s := strconv.FormatInt(v, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
		if len(s) > pre {
			b.WriteByte(',')
		}
	}
	for i := pre; i < len(s); i += 3 {
		b.WriteString(s[i : i+3])
		if i+3 < len(s) {
			b.WriteByte(',')
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
