package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"cashbot/internal/auth"
	"cashbot/internal/config"
	"cashbot/internal/game"
	"cashbot/internal/syncq"

	"github.com/bwmarrin/discordgo"
)

const commandTimeout = 10 * time.Second

// api is the slice of *discordgo.Session the bot talks to.
type api interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
}

type messageRef struct {
	channelID string
	messageID string
}

// Bot routes prefix commands and button clicks to the game service and
// implements game.Announcer for results produced in the background.
type Bot struct {
	cfg      config.DiscordConfig
	svc      *game.Service
	log      *slog.Logger
	present  Presenter
	api      api
	session  *discordgo.Session
	outbox   *syncq.Queue
	tokens   *auth.PlayerTokens
	handlers map[string]handler

	mu       sync.Mutex
	messages map[string]messageRef
}

func New(cfg config.DiscordConfig, svc *game.Service, logger *slog.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMessages |
		discordgo.IntentDirectMessages |
		discordgo.IntentMessageContent

	b := newBot(cfg, svc, logger, session)
	b.session = session
	session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		b.log.Info("discord connected", "user", r.User.Username, "guilds", len(r.Guilds))
	})
	session.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		b.handleMessage(m.Message)
	})
	session.AddHandler(func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
		b.handleInteraction(i.Interaction)
	})
	return b, nil
}

func newBot(cfg config.DiscordConfig, svc *game.Service, logger *slog.Logger, client api) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bot{
		cfg:      cfg,
		svc:      svc,
		log:      logger,
		present:  NewPresenter(cfg.CommandPrefix),
		api:      client,
		outbox:   syncq.New(256, 3, 2*time.Second, logger),
		messages: make(map[string]messageRef),
	}
	b.handlers = b.commands()
	return b
}

// Open starts the delivery worker and connects to the gateway.
func (b *Bot) Open(ctx context.Context) error {
	b.outbox.Start(ctx)
	if b.session == nil {
		return nil
	}
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("discord open: %w", err)
	}
	return nil
}

// SetPlayerTokens enables the apitoken command.
func (b *Bot) SetPlayerTokens(t *auth.PlayerTokens) {
	b.tokens = t
}

func (b *Bot) Close() error {
	if b.session == nil {
		return nil
	}
	return b.session.Close()
}

func (b *Bot) handleMessage(m *discordgo.Message) {
	if m == nil || m.Author == nil || m.Author.Bot {
		return
	}
	cmd, ok := ParseCommand(b.cfg.CommandPrefix, m.Content)
	if !ok {
		return
	}
	h, ok := b.handlers[cmd.Name]
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	out, err := h(ctx, request{userID: m.Author.ID, channelID: m.ChannelID, args: cmd.Args})
	if err != nil {
		b.logCommandError(cmd.Name, m.Author.ID, err)
		out = reply{embed: b.present.Error(err)}
	}
	sent, err := b.api.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{out.embed},
		Components: out.components,
		Reference:  m.Reference(),
	})
	if err != nil {
		b.log.Error("send reply failed", "command", cmd.Name, "channel_id", m.ChannelID, "err", err)
		return
	}
	if out.sessionID != "" {
		b.track(out.sessionID, messageRef{channelID: sent.ChannelID, messageID: sent.ID})
	}
}

func (b *Bot) logCommandError(name, userID string, err error) {
	if isUserError(err) {
		b.log.Debug("command rejected", "command", name, "user_id", userID, "err", err)
		return
	}
	b.log.Error("command failed", "command", name, "user_id", userID, "err", err)
}

func isUserError(err error) bool {
	for _, target := range []error{
		game.ErrInvalidAmount, game.ErrInsufficientFunds, game.ErrInvalidTarget,
		game.ErrNotYourGame, game.ErrAlreadyActed, game.ErrOnCooldown,
		game.ErrNothingToSteal, game.ErrInvalidChoice, game.ErrSessionNotFound,
		game.ErrSessionEnded, game.ErrNotAccepted,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func interactionUser(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func (b *Bot) handleInteraction(i *discordgo.Interaction) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}
	userID := interactionUser(i)
	kind, action, arg, ok := splitCustomID(i.MessageComponentData().CustomID)
	if !ok || userID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	out, terminal, err := b.click(ctx, userID, kind, action, arg)
	if err != nil {
		b.logCommandError(kind+":"+action, userID, err)
		b.respond(i, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Embeds: []*discordgo.MessageEmbed{b.present.Error(err)},
				Flags:  discordgo.MessageFlagsEphemeral,
			},
		})
		return
	}
	if terminal {
		b.forget(arg)
	}
	components := out.components
	if components == nil {
		components = []discordgo.MessageComponent{}
	}
	b.respond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{out.embed},
			Components: components,
		},
	})
}

func (b *Bot) respond(i *discordgo.Interaction, resp *discordgo.InteractionResponse) {
	if err := b.api.InteractionRespond(i, resp); err != nil {
		b.log.Error("interaction respond failed", "interaction_id", i.ID, "err", err)
	}
}

// click applies one button press. terminal reports that the session shown
// by the message has ended.
func (b *Bot) click(ctx context.Context, userID, kind, action, arg string) (reply, bool, error) {
	switch kind {
	case "lb":
		page, _ := strconv.Atoi(arg)
		out, err := b.leaderboardPage(ctx, page)
		return out, false, err
	case "rob":
		page, _ := strconv.Atoi(arg)
		out, err := b.robberyPage(ctx, userID, page)
		return out, false, err
	case "bj":
		var (
			v   game.BlackjackView
			err error
		)
		switch action {
		case "hit":
			v, err = b.svc.Hit(ctx, arg, userID)
		case "stand":
			v, err = b.svc.Stand(ctx, arg, userID)
		default:
			return reply{}, false, game.ErrInvalidChoice
		}
		if err != nil {
			return reply{}, false, err
		}
		e, comps := b.present.Blackjack(v)
		return reply{embed: e, components: comps}, v.State != game.BlackjackInProgress, nil
	case "rps":
		var (
			v   game.DuelView
			err error
		)
		switch action {
		case "accept":
			v, err = b.svc.Accept(ctx, arg, userID)
		case "decline":
			v, err = b.svc.Decline(ctx, arg, userID)
		default:
			hand, perr := game.ParseHand(action)
			if perr != nil {
				return reply{}, false, perr
			}
			v, err = b.svc.Choose(ctx, arg, userID, hand)
		}
		if err != nil {
			return reply{}, false, err
		}
		e, comps := b.present.Duel(v)
		ended := v.Stage != game.DuelPending && v.Stage != game.DuelActive
		return reply{embed: e, components: comps}, ended, nil
	}
	return reply{}, false, game.ErrInvalidChoice
}

func (b *Bot) track(sessionID string, ref messageRef) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages[sessionID] = ref
}

func (b *Bot) forget(sessionID string) (messageRef, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ref, ok := b.messages[sessionID]
	delete(b.messages, sessionID)
	return ref, ok
}

// AnnounceDraw posts the result to the announce channel and DMs each
// winner. Delivery happens on the outbox worker.
func (b *Bot) AnnounceDraw(_ context.Context, res game.DrawResult) {
	if b.cfg.AnnounceChannel != "" {
		embed := b.present.Draw(res)
		b.outbox.Push(syncq.Command{Name: "lottery draw", Run: func(context.Context) error {
			_, err := b.api.ChannelMessageSendComplex(b.cfg.AnnounceChannel, &discordgo.MessageSend{
				Embeds: []*discordgo.MessageEmbed{embed},
			})
			return err
		}})
	} else {
		b.log.Warn("no announce channel configured, draw result not posted", "number", res.Number)
	}
	for _, winner := range res.Winners {
		b.sendDM("lottery winner dm", winner, b.present.WinnerDM(res))
	}
}

func (b *Bot) sendDM(name, userID string, embed *discordgo.MessageEmbed) {
	b.outbox.Push(syncq.Command{Name: name, Run: func(context.Context) error {
		ch, err := b.api.UserChannelCreate(userID)
		if err != nil {
			return err
		}
		_, err = b.api.ChannelMessageSendComplex(ch.ID, &discordgo.MessageSend{
			Embeds: []*discordgo.MessageEmbed{embed},
		})
		return err
	}})
}

// AnnounceExpiry replaces the game message with a timeout notice and
// removes its buttons.
func (b *Bot) AnnounceExpiry(_ context.Context, ev game.SessionExpiry) {
	ref, ok := b.forget(ev.SessionID)
	if !ok {
		return
	}
	embed := b.present.Expiry(ev)
	b.outbox.Push(syncq.Command{Name: "session expiry", Run: func(context.Context) error {
		embeds := []*discordgo.MessageEmbed{embed}
		components := []discordgo.MessageComponent{}
		_, err := b.api.ChannelMessageEditComplex(&discordgo.MessageEdit{
			ID:         ref.messageID,
			Channel:    ref.channelID,
			Embeds:     &embeds,
			Components: &components,
		})
		return err
	}})
}

var _ game.Announcer = (*Bot)(nil)
