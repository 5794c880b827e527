package main

import (
	"context"

	cl "cashbot/internal/cli"
	"cashbot/internal/game"
)

// playBlackjack prompts hit or stand until the round ends. The server
// drops an idle round after 30s and refunds the bet.
func playBlackjack(ctx context.Context, client *cl.Client, round game.BlackjackView) error {
	for {
		renderBlackjack(round)
		if round.State != game.BlackjackInProgress {
			return nil
		}
		move, err := promptChoice("Move", []string{"hit", "stand"}, "stand")
		if err != nil {
			return err
		}
		reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
		round, err = client.BlackjackMove(reqCtx, round.ID, move)
		cancel()
		if err != nil {
			return err
		}
	}
}
