package utility

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/keshon/dispatchbot/internal/plugin"
	"github.com/keshon/dispatchbot/pkg/retrylimit"

	"github.com/bwmarrin/discordgo"
)

const (
	DefaultQRServiceURL = "https://api.qrserver.com/v1/create-qr-code/"

	// maxQRBytes caps the downloaded image; the largest choice is a few KiB.
	maxQRBytes = 1 << 20
)

// QRCommand renders a URL as a PNG QR code using a remote generator service.
type QRCommand struct {
	ServiceURL string
	Client     *http.Client
	Limiter    *retrylimit.AdaptiveLimiter
	Retry      retrylimit.Config
}

func NewQRCommand(serviceURL string, client *http.Client, retry retrylimit.Config) *QRCommand {
	if serviceURL == "" {
		serviceURL = DefaultQRServiceURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &QRCommand{
		ServiceURL: serviceURL,
		Client:     client,
		Limiter:    retrylimit.NewAdaptiveLimiter(5, 1, 20, 1, 0.5),
		Retry:      retry,
	}
}

func (c *QRCommand) Metadata() plugin.CommandMetadata {
	return plugin.CommandMetadata{
		Name:        "generateqr",
		Description: "Generates a qr code!",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "url",
				Description: "The url that the qrcode will redirect to.",
			},
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "size",
				Description: "The size of the output qr code.",
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "sm", Value: 150},
					{Name: "md", Value: 250},
					{Name: "lg", Value: 350},
				},
			},
		},
		Cooldown: plugin.CooldownSeconds(20),
		Active:   true,
	}
}

func (c *QRCommand) Execute(ctx context.Context, in *plugin.Interaction) error {
	target, _ := in.Options.String("url")
	if target == "" {
		return in.ReplyEphemeral(ctx, "Please provide an url.")
	}
	size, _ := in.Options.Int("size")
	if size <= 0 {
		return in.ReplyEphemeral(ctx, "Please choose a size.")
	}

	// The generator may be slow or retried; acknowledge before fetching.
	if err := in.Defer(ctx); err != nil {
		return fmt.Errorf("generate qr: acknowledge interaction: %w", err)
	}

	png, err := c.fetch(ctx, target, size)
	if err != nil {
		if rerr := in.ReplyEphemeral(ctx, "Something went wrong. Try again."); rerr != nil {
			return fmt.Errorf("generate qr: %w (reply: %v)", err, rerr)
		}
		return fmt.Errorf("generate qr: %w", err)
	}

	return in.Reply(ctx, plugin.Response{
		Files: []*discordgo.File{{
			Name:        "qrcode.png",
			ContentType: "image/png",
			Reader:      bytes.NewReader(png),
		}},
	})
}

func (c *QRCommand) fetch(ctx context.Context, target string, size int64) ([]byte, error) {
	endpoint, err := url.Parse(c.ServiceURL)
	if err != nil {
		return nil, &retrylimit.Permanent{Err: err}
	}
	q := endpoint.Query()
	dim := strconv.FormatInt(size, 10)
	q.Set("size", dim+"x"+dim)
	q.Set("data", target)
	endpoint.RawQuery = q.Encode()

	var body []byte
	err = retrylimit.Do(ctx, c.Limiter, c.Retry, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
		if err != nil {
			return &retrylimit.Permanent{Err: err}
		}
		resp, err := c.Client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return &retrylimit.StatusError{Code: resp.StatusCode, URL: c.ServiceURL}
		}
		body, err = io.ReadAll(io.LimitReader(resp.Body, maxQRBytes))
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%s returned an empty image", c.ServiceURL)
	}
	return body, nil
}
