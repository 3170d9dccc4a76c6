package jobs

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/slack-go/slack"
)

// Notifier delivers a digest to one chat destination.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, d *Digest) error
}

// SlackNotifier posts to a Slack incoming webhook.
type SlackNotifier struct {
	url  string
	post func(ctx context.Context, url string, msg *slack.WebhookMessage) error
}

// NewSlackNotifier creates a notifier for the given incoming webhook URL.
func NewSlackNotifier(webhookURL string) *SlackNotifier {
	return &SlackNotifier{url: webhookURL, post: slack.PostWebhookContext}
}

func (n *SlackNotifier) Name() string { return "slack" }

// Notify sends the digest body as a single colored attachment.
func (n *SlackNotifier) Notify(ctx context.Context, d *Digest) error {
	msg := &slack.WebhookMessage{
		Text: d.Title(),
		Attachments: []slack.Attachment{{
			Color:    d.Color(),
			Fallback: d.Text(),
			Text:     d.Body(),
		}},
	}
	if err := n.post(ctx, n.url, msg); err != nil {
		return fmt.Errorf("jobs: slack webhook: %w", err)
	}
	return nil
}

// webhookExecutor abstracts the discordgo.Session method we use, enabling test mocks.
type webhookExecutor interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordNotifier executes a Discord webhook.
type DiscordNotifier struct {
	exec  webhookExecutor
	id    string
	token string
}

// NewDiscordNotifier creates a notifier from a webhook URL of the form
// https://discord.com/api/webhooks/<id>/<token>.
func NewDiscordNotifier(webhookURL string) (*DiscordNotifier, error) {
	id, token, err := ParseDiscordWebhook(webhookURL)
	if err != nil {
		return nil, err
	}
	// Webhook execution is authorised by the token in the URL.
	sess, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("jobs: discord session: %w", err)
	}
	return &DiscordNotifier{exec: sess, id: id, token: token}, nil
}

func (n *DiscordNotifier) Name() string { return "discord" }

// Notify sends the digest as one embed.
func (n *DiscordNotifier) Notify(ctx context.Context, d *Digest) error {
	embed := &discordgo.MessageEmbed{
		Title:       d.Title(),
		Description: d.Summary(),
		Color:       parseHexColor(d.Color()),
		Timestamp:   d.Date.Format("2006-01-02T15:04:05Z07:00"),
	}
	if lines := d.RFILines(); len(lines) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "RFIs due", Value: embedList(lines)})
	}
	if lines := d.TaskLines(); len(lines) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "This week's tasks", Value: embedList(lines)})
	}
	params := &discordgo.WebhookParams{Embeds: []*discordgo.MessageEmbed{embed}}
	if _, err := n.exec.WebhookExecute(n.id, n.token, false, params, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("jobs: discord webhook: %w", err)
	}
	return nil
}

// ParseDiscordWebhook extracts the webhook id and token from its URL.
func ParseDiscordWebhook(raw string) (id, token string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("jobs: discord webhook url: %w", err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] == "webhooks" && parts[i+1] != "" && parts[i+2] != "" {
			return parts[i+1], parts[i+2], nil
		}
	}
	return "", "", fmt.Errorf("jobs: discord webhook url %q has no /webhooks/<id>/<token> path", raw)
}

// embedMaxField is Discord's limit, in characters, on an embed field value.
const embedMaxField = 1024

func embedList(lines []string) string {
	s := "- " + strings.Join(lines, "\n- ")
	if utf8.RuneCountInString(s) <= embedMaxField {
		return s
	}
	r := []rune(s)
	return string(r[:embedMaxField-3]) + "..."
}

// parseHexColor converts "#rrggbb" to the integer Discord expects.
func parseHexColor(hex string) int {
	v, err := strconv.ParseInt(strings.TrimPrefix(hex, "#"), 16, 32)
	if err != nil {
		return 0
	}
	return int(v)
}
