package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"voice-assistant-be/internal/service"

	"github.com/fatih/color"
)

// runREPL reads one utterance per line until EOF or :quit.
func runREPL(ctx context.Context, in io.Reader, out io.Writer, svc service.IChatService, sessionID string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	prompt := color.New(color.FgYellow)
	scanner := bufio.NewScanner(in)

	for {
		prompt.Fprint(out, "you> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case ":quit", ":exit":
			return nil
		case ":clear":
			svc.ClearSession(ctx, sessionID)
			color.New(color.FgCyan).Fprintln(out, "Conversation cleared.")
			continue
		case ":stats":
			sess, ok := svc.Session(sessionID)
			if !ok {
				fmt.Fprintln(out, "No conversation yet.")
				continue
			}
			data, _ := json.MarshalIndent(sess.Analytics, "", "  ")
			fmt.Fprintln(out, string(data))
			continue
		}

		res, err := svc.HandleTurn(ctx, sessionID, line)
		if err != nil {
			color.New(color.FgRed).Fprintf(out, "error: %v\n", err)
			continue
		}
		printReply(out, res.Reply, res.Intent, res.Stage)
	}
}
