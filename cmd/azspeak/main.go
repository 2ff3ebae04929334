package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var version = "0.3.0-dev"

const usage = `azspeak - text to speech with the Azure speech service

Usage:
  azspeak <command> [flags] [argument]

Commands:
  text            speak text (default when no command is given)
  ssml            speak SSML
  list-voices     list available voices, optionally filtered by -voice or -locale
  list-formats    list available output formats
  list-qualities  list quality levels for each container
  config          manage the profile: init, where
  version         print the version

Run 'azspeak <command> -h' for the flags of a command.
`

func main() {
	// .env 不存在时忽略
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:])
	stop()

	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(exitCode(err))
	}
}

func run(ctx context.Context, args []string) error {
	cmd := "text"
	if len(args) > 0 && len(args[0]) > 0 && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "text":
		return runText(ctx, args)
	case "ssml":
		return runSSML(ctx, args)
	case "list-voices":
		return runListVoices(ctx, args)
	case "list-formats":
		return runListFormats(args)
	case "list-qualities":
		return runListQualities(args)
	case "config":
		return runConfig(args)
	case "version":
		fmt.Println(version)
		return nil
	case "help":
		fmt.Print(usage)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return usageErrorf("unknown command %q", cmd)
	}
}

func setupLogging(level string, verbose bool) {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logrus.SetOutput(os.Stderr)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.Warnf("cli: unknown log level %q, using warn", level)
		lvl = logrus.WarnLevel
	}
	if verbose {
		lvl = logrus.DebugLevel
	}
	logrus.SetLevel(lvl)
}
