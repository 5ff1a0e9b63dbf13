package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/field4d/gober/internal/addr"
	"github.com/field4d/gober/pkg/gober"
)

var (
	rootCmd = &cobra.Command{
		Use:   "gober-analyze [hex]",
		Short: "Decode Field4D sensor packets",
		Long:  "gober-analyze decodes Field4D sensor packets using the gober library.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sender, err := addr.Parse(senderAddr)
			if err != nil {
				return err
			}
			opts := gober.AnalyzeOptions{Mode: mode}
			ctx := cmd.Context()
			if len(args) == 0 {
				return runInteractive(ctx, opts, sender)
			}
			return runAnalyze(ctx, cmd.OutOrStdout(), opts, sender, args[0])
		},
	}

	translateCmd = &cobra.Command{
		Use:   "translate <abbreviated record>",
		Short: "Expand an abbreviated first-generation record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sender, err := addr.Parse(senderAddr)
			if err != nil {
				return err
			}
			return runTranslate(cmd.OutOrStdout(), sender, args[0])
		},
	}

	summaryCmd = &cobra.Command{
		Use:   "summary <hex>",
		Short: "Unpack a 32-byte energest summary block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sender, err := addr.Parse(senderAddr)
			if err != nil {
				return err
			}
			return runSummary(cmd.OutOrStdout(), sender, args[0])
		},
	}

	senderAddr string
	mode       string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&senderAddr, "addr", "::", "sender address rendered into records")
	rootCmd.PersistentFlags().StringVar(&mode, "mode", "decimal", "multi-sensor render mode (decimal or raw)")
	rootCmd.AddCommand(translateCmd, summaryCmd)
}

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	ctx := context.Background()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logrus.Fatal(err)
	}
}

func runInteractive(ctx context.Context, opts gober.AnalyzeOptions, sender addr.Address) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()
	logrus.SetOutput(rl.Stderr())

	logrus.Info("gober analyze mode. Paste a hex packet, an abbreviated {...} record or 'summary <hex>' (Ctrl+D to exit).")
	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if err := dispatch(ctx, rl.Stdout(), opts, sender, strings.TrimSpace(line)); err != nil {
			logrus.WithError(err).Error("failed to decode input")
		}
	}
}

// dispatch routes one interactive line to the matching decoder.
func dispatch(ctx context.Context, w io.Writer, opts gober.AnalyzeOptions, sender addr.Address, line string) error {
	switch {
	case line == "":
		return nil
	case strings.HasPrefix(line, "{"):
		return runTranslate(w, sender, line)
	case strings.HasPrefix(line, "summary "):
		return runSummary(w, sender, strings.TrimPrefix(line, "summary "))
	default:
		return runAnalyze(ctx, w, opts, sender, line)
	}
}

func runAnalyze(ctx context.Context, w io.Writer, opts gober.AnalyzeOptions, sender addr.Address, hex string) error {
	result, err := gober.DecodeHexWithOptions(ctx, hex, sender, opts)
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"driver": result.Driver, "bytes": result.ByteCount}).Debug("decoded")
	fmt.Fprint(w, result.String())
	return nil
}

func runTranslate(w io.Writer, sender addr.Address, input string) error {
	result, err := gober.TranslateLegacy(input, sender)
	if err != nil {
		return err
	}
	for _, key := range result.Skipped {
		logrus.WithField("key", key).Debug("skipped unknown abbreviation")
	}
	fmt.Fprint(w, result.String())
	return nil
}

func runSummary(w io.Writer, sender addr.Address, hex string) error {
	summary, err := gober.UnpackSummaryHex(hex, sender)
	if err != nil {
		return err
	}
	fmt.Fprint(w, summary.String())
	return nil
}
