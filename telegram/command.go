// Copyright (c) 2025 BVK Chaitanya

package telegram

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-telegram/bot/models"
	"github.com/visvasity/cli"
)

type Command struct {
	Purpose string
	Handler cli.CmdFunc
}

// parseCommand splits a message into the bot command name and its arguments.
// A message is a command only when it starts with a bot command entity.
func parseCommand(msg *models.Message) (string, []string, error) {
	if msg == nil || len(msg.Entities) == 0 {
		return "", nil, fmt.Errorf("message is not a bot command: %w", os.ErrInvalid)
	}
	entity := msg.Entities[0]
	if entity.Type != models.MessageEntityTypeBotCommand || entity.Offset != 0 {
		return "", nil, fmt.Errorf("message is not a bot command: %w", os.ErrInvalid)
	}
	if entity.Length < 2 || entity.Length > len(msg.Text) || msg.Text[0] != '/' {
		return "", nil, fmt.Errorf("message has an invalid bot command: %w", os.ErrInvalid)
	}
	cmd := msg.Text[1:entity.Length]
	// Commands in groups are addressed as /cmd@botname.
	cmd, _, _ = strings.Cut(cmd, "@")
	args := strings.Fields(msg.Text[entity.Length:])
	return cmd, args, nil
}
