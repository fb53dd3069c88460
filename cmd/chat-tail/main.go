package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/curlmap/curlmap-api/internal/chatsync"
	"github.com/curlmap/curlmap-api/internal/config"
	"github.com/curlmap/curlmap-api/internal/domain/chat"
	"github.com/curlmap/curlmap-api/internal/pkg/jwt"
	"github.com/curlmap/curlmap-api/internal/pkg/logger"
)

// chat-tail follows one chat through the polling client and prints the
// merged log whenever it changes. Lines typed on stdin are sent as text.
func main() {
	apiFlag := flag.String("api", "http://localhost:8080/api/v1", "API base url")
	chatFlag := flag.String("chat", "", "chat id")
	tokenFlag := flag.String("token", os.Getenv("CURLMAP_TOKEN"), "access token (see cmd/devtoken)")
	send := flag.Bool("send", false, "read stdin and send each line")
	flag.Parse()

	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	chatID, err := uuid.Parse(*chatFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid chat id")
	}
	claims, err := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL).ValidateAccessToken(*tokenFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid access token")
	}

	transport := chatsync.NewHTTPTransport(*apiFlag, *tokenFlag, cfg.ChatSendTimeout, "curlmap-chat-tail/1.0")
	client := chatsync.NewClient(transport, claims.UserID, cfg.ChatSendTimeout, log.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *send {
		go readInput(ctx, client, chatID)
	}

	var lastRendered string
	poller := chatsync.NewPoller(client, chatID, cfg.ChatPollInterval, func(msgs []chatsync.Message) {
		out := render(msgs, claims.UserID)
		if out != lastRendered {
			fmt.Print("\033[H\033[2J", out)
			lastRendered = out
		}
	})
	if err := poller.Run(ctx); err != nil {
		log.Fatal().Err(err).Str("chat_id", chatID.String()).Msg("Failed to load chat")
	}
}

func readInput(ctx context.Context, client *chatsync.Client, chatID uuid.UUID) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if _, err := client.Send(ctx, chatID, chat.TextContent{Text: line}); err != nil {
			log.Warn().Err(err).Msg("Send failed; it stays in the log as failed")
		}
	}
}

func render(msgs []chatsync.Message, self uuid.UUID) string {
	var b strings.Builder
	for _, m := range msgs {
		who := "them"
		if m.SenderID == self {
			who = "me"
		}
		body := string(m.Content)
		if content, err := chat.DecodeContent(m.MessageType, m.Content); err == nil {
			if text, ok := content.(chat.TextContent); ok {
				body = text.Text
			}
		}
		fmt.Fprintf(&b, "%s  %-4s  %-9s  %s\n", m.Timestamp.Local().Format("15:04:05"), who, m.DeliveryStatus, body)
	}
	return b.String()
}
