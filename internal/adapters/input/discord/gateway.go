package discord

import (
	"context"
	"fmt"
	"sync"

	"repost-bridge/internal/domain"
	"repost-bridge/internal/ports/input"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

// Command names registered with Discord
const (
	LoginCommandName  = "login"
	LogoutCommandName = "logout"
	RepostCommandName = "Repost to Mastodon"

	instanceOptionName = "instance"
	listeningStatus    = "Like A Dragon soundtrack"
)

// Commands are the global application commands of the bot
var Commands = []*discordgo.ApplicationCommand{
	{
		Name:        LoginCommandName,
		Type:        discordgo.ChatApplicationCommand,
		Description: "Log into your Mastodon account",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        instanceOptionName,
				Description: "Mastodon instance you wanna log into",
				Required:    true,
			},
		},
	},
	{
		Name:        LogoutCommandName,
		Type:        discordgo.ChatApplicationCommand,
		Description: "Log out from your Mastodon account",
	},
	{
		Name: RepostCommandName,
		Type: discordgo.MessageApplicationCommand,
	},
}

// interactionResponder is the part of the discordgo session used to answer interactions
type interactionResponder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Gateway struct - Primary/Driving adapter for the Discord gateway
type Gateway struct {
	session  *discordgo.Session
	commands input.ChatCommandService

	// Interactions in flight, guarded by mu against Add after Close
	mu           sync.Mutex
	closed       bool
	interactions sync.WaitGroup
}

// NewGateway func - Creates new Discord gateway
func NewGateway(token string, commands input.ChatCommandService) (*Gateway, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds

	gateway := &Gateway{
		session:  session,
		commands: commands,
	}

	session.AddHandler(gateway.onReady)
	session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		gateway.handleInteraction(s, i)
	})

	return gateway, nil
}

// Open connects to the gateway. Events are handled until Close.
func (g *Gateway) Open() error {
	if err := g.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord gateway: %w", err)
	}
	return nil
}

// Close disconnects from the gateway. Interactions arriving afterwards are dropped.
func (g *Gateway) Close() error {
	g.stopAccepting()
	return g.session.Close()
}

// Wait blocks until every interaction that started before Close has been answered
func (g *Gateway) Wait() {
	g.interactions.Wait()
}

func (g *Gateway) stopAccepting() {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
}

// begin registers an interaction unless the gateway is closed
func (g *Gateway) begin() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return false
	}
	g.interactions.Add(1)
	return true
}

// onReady sets the presence and (re)registers the global commands
func (g *Gateway) onReady(s *discordgo.Session, r *discordgo.Ready) {
	logrus.Infof("Connected to discord api as %s", r.User.Username)

	if err := s.UpdateListeningStatus(listeningStatus); err != nil {
		logrus.Warnf("Failed to set discord status: %v", err)
	}

	if _, err := s.ApplicationCommandBulkOverwrite(r.User.ID, "", Commands); err != nil {
		logrus.Errorf("Failed to register discord commands: %v", err)
	}
}

// handleInteraction defers the interaction, runs the command and answers with a follow-up.
// Both messages are only visible to the invoking user.
func (g *Gateway) handleInteraction(s interactionResponder, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	if !g.begin() {
		logrus.Warnf("Dropping interaction %s received during shutdown", i.ID)
		return
	}
	defer g.interactions.Done()

	// Commands can take a while, so defer right away
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		logrus.Warnf("Failed to defer interaction %s: %v", i.ID, err)
	}

	reply, ok := g.dispatch(context.Background(), i)
	if !ok {
		return
	}

	_, err = s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: reply.Text,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		logrus.Errorf("Failed to send follow-up for interaction %s: %v", i.ID, err)
	}
}

// dispatch routes an application command to the chat command service.
// Unknown commands report false.
func (g *Gateway) dispatch(ctx context.Context, i *discordgo.InteractionCreate) (domain.CommandReply, bool) {
	data := i.ApplicationCommandData()
	chatUserID := domain.ChatUserID(domain.ChatPlatformDiscord, interactionUserID(i))

	switch data.Name {
	case LoginCommandName:
		var instance string
		for _, option := range data.Options {
			if option.Name == instanceOptionName {
				instance = option.StringValue()
			}
		}
		return g.commands.Login(ctx, chatUserID, instance), true

	case LogoutCommandName:
		return g.commands.Logout(ctx, chatUserID), true

	case RepostCommandName:
		request, err := repostRequest(chatUserID, data)
		if err != nil {
			logrus.Errorf("Invalid repost interaction %s: %v", i.ID, err)
			return domain.CommandReply{Text: domain.GenericFailureMessage}, true
		}
		return g.commands.Repost(ctx, request), true

	default:
		logrus.Debugf("Received unknown command: %s", data.Name)
		return domain.CommandReply{}, false
	}
}

// repostRequest builds the request from the message the command was invoked on
func repostRequest(chatUserID string, data discordgo.ApplicationCommandInteractionData) (domain.RepostRequest, error) {
	if data.Resolved == nil {
		return domain.RepostRequest{}, fmt.Errorf("no resolved data in message command")
	}

	message, ok := data.Resolved.Messages[data.TargetID]
	if !ok {
		for _, m := range data.Resolved.Messages {
			message = m
			break
		}
	}
	if message == nil {
		return domain.RepostRequest{}, fmt.Errorf("no messages in message command")
	}

	attachmentURLs := make([]string, 0, len(message.Attachments))
	for _, attachment := range message.Attachments {
		attachmentURLs = append(attachmentURLs, attachment.URL)
	}

	return domain.RepostRequest{
		ChatUserID:     chatUserID,
		MessageText:    message.Content,
		AttachmentURLs: attachmentURLs,
	}, nil
}

// interactionUserID returns the invoking user in guilds and in DMs
func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
