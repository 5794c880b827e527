package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	cl "cashbot/internal/cli"
	"cashbot/internal/config"

	"github.com/spf13/cobra"
)

const requestTimeout = 30 * time.Second

func main() {
	cfg := config.LoadCLIFromEnv()

	root := &cobra.Command{
		Use:          "cashctl",
		Short:        "Play the cashbot economy from your terminal",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfg.APIBaseURL, "api", cfg.APIBaseURL, "cashbot API base URL")

	root.AddCommand(
		newLoginCmd(&cfg),
		newLogoutCmd(),
		newMoneyCmd(&cfg),
		newLeaderboardCmd(&cfg),
		newBankCmd(&cfg, "deposit", "Move cash into the bank"),
		newBankCmd(&cfg, "withdraw", "Move bank funds to cash"),
		newPayCmd(&cfg),
		newEarnCmd(&cfg, "work", "Work a shift (1h cooldown)"),
		newEarnCmd(&cfg, "crime", "Commit a crime (1h cooldown)"),
		newEarnCmd(&cfg, "hustle", "Try the 97ab hustle (shares the crime cooldown)", "97ab"),
		newCooldownsCmd(&cfg),
		newRobCmd(&cfg),
		newRobberiesCmd(&cfg),
		newRouletteCmd(&cfg),
		newDiceCmd(&cfg),
		newBlackjackCmd(&cfg),
		newRPSCmd(&cfg),
		newLotteryCmd(&cfg),
	)

	if err := root.Execute(); err != nil {
		var apiErr *cl.APIError
		if errors.As(err, &apiErr) {
			danger.Fprintf(os.Stderr, "error: %s\n", apiErr.Message)
			if apiErr.RetryAfterSeconds > 0 {
				warn.Fprintf(os.Stderr, "try again in %s\n", humanSeconds(apiErr.RetryAfterSeconds))
			}
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// newClient resolves the identity from the environment first and the saved
// session second.
func newClient(cfg *config.CLIConfig) (*cl.Client, error) {
	user, token := cfg.UserID, cfg.Token
	if user == "" {
		sess, err := cl.LoadSession()
		if err != nil {
			return nil, fmt.Errorf("login required: %w", err)
		}
		user = sess.UserID
		if token == "" {
			token = sess.Token
		}
	}
	return cl.NewClient(strings.TrimSpace(cfg.APIBaseURL), token, user), nil
}

// run wraps a command body with the client and a request deadline.
func run(cfg *config.CLIConfig, fn func(ctx context.Context, c *cl.Client, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cfg)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()
		return fn(ctx, client, args)
	}
}

func newLoginCmd(cfg *config.CLIConfig) *cobra.Command {
	var userID, token string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save the Discord user id and API token to act as",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if strings.TrimSpace(userID) == "" {
				if userID, err = promptRequired("Discord user id"); err != nil {
					return err
				}
			}
			if token == "" {
				if token, err = promptOptional("API token (blank if the server has none)"); err != nil {
					return err
				}
			}
			sess := cl.Session{UserID: strings.TrimSpace(userID), Token: token}
			client := cl.NewClient(cfg.APIBaseURL, sess.Token, sess.UserID)
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()
			view, err := client.Me(ctx)
			if err != nil {
				return err
			}
			if err := cl.SaveSession(sess); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Logged in as %s (wealth %s).", sess.UserID, money(view.Wealth)))
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "Discord user id")
	cmd.Flags().StringVar(&token, "token", "", "API bearer token")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cl.ClearSession(); err != nil {
				return err
			}
			printSuccess("Logged out.")
			return nil
		},
	}
}

func newMoneyCmd(cfg *config.CLIConfig) *cobra.Command {
	return &cobra.Command{
		Use:     "money",
		Aliases: []string{"balance", "bal"},
		Short:   "Show your cash, bank and rank",
		RunE: run(cfg, func(ctx context.Context, c *cl.Client, _ []string) error {
			view, err := c.Me(ctx)
			if err != nil {
				return err
			}
			renderMoney(view)
			return nil
		}),
	}
}

func newLeaderboardCmd(cfg *config.CLIConfig) *cobra.Command {
	return &cobra.Command{
		Use:     "leaderboard [page]",
		Aliases: []string{"lb"},
		Short:   "Richest players by cash plus bank",
		Args:    cobra.MaximumNArgs(1),
		RunE: run(cfg, func(ctx context.Context, c *cl.Client, args []string) error {
			page, err := pageFromArgs(args)
			if err != nil {
				return err
			}
			out, err := c.Leaderboard(ctx, page)
			if err != nil {
				return err
			}
			renderLeaderboard(out)
			return nil
		}),
	}
}

func newBankCmd(cfg *config.CLIConfig, action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <amount|all>",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: run(cfg, func(ctx context.Context, c *cl.Client, args []string) error {
			amount, err := argOrPrompt(args, 0, "Amount")
			if err != nil {
				return err
			}
			move := c.Deposit
			if action == "withdraw" {
				move = c.Withdraw
			}
			acct, err := move(ctx, amount)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("%s done.", strings.ToUpper(action[:1])+action[1:]))
			renderAccount(acct)
			return nil
		}),
	}
}

func newPayCmd(cfg *config.CLIConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "pay <user> <amount|all>",
		Short: "Send cash to another player",
		Args:  cobra.MaximumNArgs(2),
		RunE: run(cfg, func(ctx context.Context, c *cl.Client, args []string) error {
			to, err := argOrPrompt(args, 0, "Recipient user id")
			if err != nil {
				return err
			}
			amount, err := argOrPrompt(args, 1, "Amount")
			if err != nil {
				return err
			}
			out, err := c.Pay(ctx, to, amount)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Sent %s to %s.", money(out.Amount), out.To.UserID))
			renderAccount(out.From)
			return nil
		}),
	}
}

func newEarnCmd(cfg *config.CLIConfig, action, short string, aliases ...string) *cobra.Command {
	return &cobra.Command{
		Use:     action,
		Aliases: aliases,
		Short:   short,
		Args:    cobra.NoArgs,
		RunE: run(cfg, func(ctx context.Context, c *cl.Client, _ []string) error {
			out, err := c.Earn(ctx, action)
			if err != nil {
				return err
			}
			renderEarning(out)
			return nil
		}),
	}
}

func newCooldownsCmd(cfg *config.CLIConfig) *cobra.Command {
	return &cobra.Command{
		Use:     "cooldowns",
		Aliases: []string{"nextwork"},
		Short:   "Time left before work and crime are ready",
		RunE: run(cfg, func(ctx context.Context, c *cl.Client, _ []string) error {
			out, err := c.Cooldowns(ctx)
			if err != nil {
				return err
			}
			renderCooldowns(out)
			return nil
		}),
	}
}

func newRobCmd(cfg *config.CLIConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "rob <user>",
		Short: "Try to steal another player's cash",
		Args:  cobra.MaximumNArgs(1),
		RunE: run(cfg, func(ctx context.Context, c *cl.Client, args []string) error {
			target, err := argOrPrompt(args, 0, "Target user id")
			if err != nil {
				return err
			}
			out, err := c.Rob(ctx, target)
			if err != nil {
				return err
			}
			renderRobbery(out)
			return nil
		}),
	}
}

func newRobberiesCmd(cfg *config.CLIConfig) *cobra.Command {
	return &cobra.Command{
		Use:     "robberies [page]",
		Aliases: []string{"chfara"},
		Short:   "Robbery leaderboard and your record",
		Args:    cobra.MaximumNArgs(1),
		RunE: run(cfg, func(ctx context.Context, c *cl.Client, args []string) error {
			page, err := pageFromArgs(args)
			if err != nil {
				return err
			}
			out, err := c.Robberies(ctx, page)
			if err != nil {
				return err
			}
			renderRobberies(out)
			return nil
		}),
	}
}

func newRouletteCmd(cfg *config.CLIConfig) *cobra.Command {
	return &cobra.Command{
		Use:     "roulette <bet> <amount|all>",
		Aliases: []string{"rl"},
		Short:   "Bet on red, black, even, odd, 1-18, 19-36 or a number 0-36",
		Args:    cobra.MaximumNArgs(2),
		RunE: run(cfg, func(ctx context.Context, c *cl.Client, args []string) error {
			bet, err := argOrPrompt(args, 0, "Bet")
			if err != nil {
				return err
			}
			amount, err := argOrPrompt(args, 1, "Amount")
			if err != nil {
				return err
			}
			out, err := c.Roulette(ctx, bet, amount)
			if err != nil {
				return err
			}
			renderRoulette(out)
			return nil
		}),
	}
}

func newDiceCmd(cfg *config.CLIConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "dice <amount|all> <number>",
		Short: "Call a number 1-6 and roll for 5x",
		Args:  cobra.MaximumNArgs(2),
		RunE: run(cfg, func(ctx context.Context, c *cl.Client, args []string) error {
			amount, err := argOrPrompt(args, 0, "Amount")
			if err != nil {
				return err
			}
			raw, err := argOrPrompt(args, 1, "Number (1-6)")
			if err != nil {
				return err
			}
			n, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				return fmt.Errorf("invalid number %q", raw)
			}
			out, err := c.Dice(ctx, amount, n)
			if err != nil {
				return err
			}
			renderDice(out)
			return nil
		}),
	}
}

func newBlackjackCmd(cfg *config.CLIConfig) *cobra.Command {
	bj := &cobra.Command{
		Use:     "blackjack <amount|all>",
		Aliases: []string{"bj"},
		Short:   "Play a round of blackjack against the dealer",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cfg)
			if err != nil {
				return err
			}
			amount, err := argOrPrompt(args, 0, "Bet")
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			round, err := client.StartBlackjack(ctx, amount)
			cancel()
			if err != nil {
				return err
			}
			return playBlackjack(cmd.Context(), client, round)
		},
	}
	for _, move := range []string{"hit", "stand"} {
		bj.AddCommand(&cobra.Command{
			Use:   move + " <round id>",
			Short: strings.ToUpper(move[:1]) + move[1:] + " in a running round",
			Args:  cobra.ExactArgs(1),
			RunE: run(cfg, func(ctx context.Context, c *cl.Client, args []string) error {
				out, err := c.BlackjackMove(ctx, args[0], move)
				if err != nil {
					return err
				}
				renderBlackjack(out)
				return nil
			}),
		})
	}
	return bj
}

func newRPSCmd(cfg *config.CLIConfig) *cobra.Command {
	rps := &cobra.Command{
		Use:   "rps",
		Short: "Rock paper scissors duels",
	}
	rps.AddCommand(&cobra.Command{
		Use:   "challenge <user> [amount|all]",
		Short: "Challenge a player, optionally for a stake",
		Args:  cobra.RangeArgs(1, 2),
		RunE: run(cfg, func(ctx context.Context, c *cl.Client, args []string) error {
			amount := ""
			if len(args) > 1 {
				amount = args[1]
			}
			out, err := c.Challenge(ctx, args[0], amount)
			if err != nil {
				return err
			}
			renderDuel(out)
			return nil
		}),
	})
	rps.AddCommand(&cobra.Command{
		Use:   "show <duel id>",
		Short: "Show a duel",
		Args:  cobra.ExactArgs(1),
		RunE: run(cfg, func(ctx context.Context, c *cl.Client, args []string) error {
			out, err := c.Duel(ctx, args[0])
			if err != nil {
				return err
			}
			renderDuel(out)
			return nil
		}),
	})
	for _, answer := range []string{"accept", "decline"} {
		rps.AddCommand(&cobra.Command{
			Use:   answer + " <duel id>",
			Short: strings.ToUpper(answer[:1]) + answer[1:] + " a challenge sent to you",
			Args:  cobra.ExactArgs(1),
			RunE: run(cfg, func(ctx context.Context, c *cl.Client, args []string) error {
				out, err := c.DuelAnswer(ctx, args[0], answer)
				if err != nil {
					return err
				}
				renderDuel(out)
				return nil
			}),
		})
	}
	rps.AddCommand(&cobra.Command{
		Use:   "choose <duel id> [rock|paper|scissors]",
		Short: "Lock in your hand",
		Args:  cobra.RangeArgs(1, 2),
		RunE: run(cfg, func(ctx context.Context, c *cl.Client, args []string) error {
			hand := ""
			if len(args) > 1 {
				hand = strings.ToLower(strings.TrimSpace(args[1]))
			} else {
				var err error
				if hand, err = promptChoice("Hand", []string{"rock", "paper", "scissors"}, "rock"); err != nil {
					return err
				}
			}
			out, err := c.Choose(ctx, args[0], hand)
			if err != nil {
				return err
			}
			renderDuel(out)
			return nil
		}),
	})
	return rps
}

func newLotteryCmd(cfg *config.CLIConfig) *cobra.Command {
	lot := &cobra.Command{
		Use:     "lottery",
		Aliases: []string{"lot"},
		Short:   "Jackpot status and tickets",
		RunE: run(cfg, func(ctx context.Context, c *cl.Client, _ []string) error {
			out, err := c.Lottery(ctx)
			if err != nil {
				return err
			}
			mine, err := c.MyTickets(ctx)
			if err != nil {
				return err
			}
			renderLottery(out, len(mine))
			return nil
		}),
	}
	lot.AddCommand(&cobra.Command{
		Use:   "buy <count>",
		Short: "Buy tickets at $100 each",
		Args:  cobra.MaximumNArgs(1),
		RunE: run(cfg, func(ctx context.Context, c *cl.Client, args []string) error {
			raw, err := argOrPrompt(args, 0, "Tickets")
			if err != nil {
				return err
			}
			n, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid ticket count %q", raw)
			}
			out, err := c.BuyTickets(ctx, n)
			if err != nil {
				return err
			}
			renderTicketPurchase(out)
			return nil
		}),
	})
	lot.AddCommand(&cobra.Command{
		Use:   "numbers",
		Short: "List your ticket numbers for the next draw",
		RunE: run(cfg, func(ctx context.Context, c *cl.Client, _ []string) error {
			out, err := c.MyTickets(ctx)
			if err != nil {
				return err
			}
			renderTickets(out)
			return nil
		}),
	})
	return lot
}

func argOrPrompt(args []string, idx int, label string) (string, error) {
	if len(args) > idx && strings.TrimSpace(args[idx]) != "" {
		return strings.TrimSpace(args[idx]), nil
	}
	return promptRequired(label)
}

func pageFromArgs(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	page, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil || page < 1 {
		return 0, fmt.Errorf("invalid page %q", args[0])
	}
	return page, nil
}
