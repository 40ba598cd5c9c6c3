package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"voice-assistant-be/internal/bootstrap"
	"voice-assistant-be/internal/config"
	"voice-assistant-be/internal/pkg/logger"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
)

var (
	sessionFlag string
	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "ask [utterance...]",
	Short: "Talk to the assistant from the terminal",
	Long: `ask sends one utterance through the assistant and prints the reply.
Without arguments it starts an interactive session; type :clear to forget the
conversation, :stats for session analytics and :quit to leave.`,
	RunE: runAsk,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&sessionFlag, "session", "s", "cli", "session id to talk in")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "log routing decisions to stderr")
	rootCmd.AddCommand(watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newCLILogger() logger.ILogger {
	level := zapcore.WarnLevel
	if verboseFlag {
		level = zapcore.DebugLevel
	}
	return logger.NewConsoleLogger(level)
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	log := newCLILogger()
	defer log.Sync()

	rdb := bootstrap.ConnectRedis(cfg.App.RedisURL, log)
	if rdb != nil {
		defer rdb.Close()
	}
	engine := bootstrap.NewEngine(cfg, log, rdb, nil, nil)

	if len(args) > 0 {
		res, err := engine.ChatService.HandleTurn(context.Background(), sessionFlag, strings.Join(args, " "))
		if err != nil {
			return err
		}
		printReply(cmd.OutOrStdout(), res.Reply, res.Intent, res.Stage)
		return nil
	}

	color.New(color.FgCyan).Fprintf(cmd.OutOrStdout(), "Session %q. Type :quit to leave.\n", sessionFlag)
	return runREPL(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), engine.ChatService, sessionFlag)
}

func printReply(w io.Writer, reply, label, stage string) {
	color.New(color.FgGreen, color.Bold).Fprint(w, "assistant> ")
	fmt.Fprintln(w, reply)
	if verboseFlag {
		if label == "" {
			label = "-"
		}
		color.New(color.FgHiBlack).Fprintf(w, "           intent=%s stage=%s\n", label, stage)
	}
}
