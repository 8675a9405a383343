// Command emvcap talks to EMV payment cards over PC/SC readers: it lists
// the applications a card carries, dumps their public records, verifies
// the PIN against the chip and computes CAP one-time codes.
//
// Although the tool has been tested, a wrong PIN sent repeatedly WILL
// block your card. Use with care.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/ebfe/scard"
	"github.com/gregLibert/emvcap/pkg/cap"
	"github.com/gregLibert/emvcap/pkg/session"
)

const version = "1.0.0"

// Exit codes: 0 success, 2 missing precondition (no reader, no PIN),
// 3 argument error.
const (
	exitOK           = 0
	exitPrecondition = 2
	exitUsage        = 3
)

type options struct {
	reader   int
	pin      string
	loglevel string
	redact   bool
}

func main() {
	fs := flag.NewFlagSet("emvcap", flag.ContinueOnError)

	var opts options
	fs.IntVar(&opts.reader, "reader", 0, "index of the card reader to use")
	fs.StringVar(&opts.pin, "pin", "", "card PIN (visible in the process list, use with care)")
	fs.StringVar(&opts.loglevel, "loglevel", "warn", "log level: info, debug or warn")
	fs.BoolVar(&opts.redact, "redact", false, "hide sensitive card data in output")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: emvcap [options] <command> [arguments]\n\n")
		fmt.Fprintf(fs.Output(), "Commands:\n")
		fmt.Fprintf(fs.Output(), "  version                        print the tool version\n")
		fmt.Fprintf(fs.Output(), "  readers                        list available card readers\n")
		fmt.Fprintf(fs.Output(), "  info                           dump the card's public data\n")
		fmt.Fprintf(fs.Output(), "  listapps                       list the applications on the card\n")
		fmt.Fprintf(fs.Output(), "  verifypin <app_index>          verify the PIN against an application\n")
		fmt.Fprintf(fs.Output(), "  cap [-challenge N] [-amount X] compute a CAP one-time code\n\n")
		fmt.Fprintf(fs.Output(), "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(exitUsage)
	}

	setupLogging(opts.loglevel)

	args := fs.Args()
	if len(args) == 0 {
		fs.Usage()
		os.Exit(exitUsage)
	}

	switch args[0] {
	case "version":
		fmt.Println(version)
	case "readers":
		runReaders()
	case "info":
		runInfo(opts)
	case "listapps":
		runListApps(opts)
	case "verifypin":
		runVerifyPIN(opts, args[1:])
	case "cap":
		runCAP(opts, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", args[0])
		fs.Usage()
		os.Exit(exitUsage)
	}
}

func setupLogging(level string) {
	switch level {
	case "debug", "info":
		log.SetOutput(os.Stderr)
	default:
		log.SetOutput(io.Discard)
	}
}

// connect establishes the PC/SC context and opens the selected reader.
// The returned cleanup releases both.
func connect(readerIndex int) (*scard.Card, func(), error) {
	ctx, err := scard.EstablishContext()
	if err != nil {
		return nil, nil, fmt.Errorf("establishing PC/SC context: %w", err)
	}

	readers, err := ctx.ListReaders()
	if err != nil || len(readers) == 0 {
		release(ctx)
		return nil, nil, fmt.Errorf("no smart card reader found")
	}
	if readerIndex < 0 || readerIndex >= len(readers) {
		release(ctx)
		return nil, nil, fmt.Errorf("reader %d not found (%d available)", readerIndex, len(readers))
	}

	log.Printf("using reader: %s", readers[readerIndex])

	// Force T=0 or T=1 to avoid "Parameter Incorrect" errors (Error 57)
	card, err := ctx.Connect(readers[readerIndex], scard.ShareShared, scard.ProtocolT0|scard.ProtocolT1)
	if err != nil {
		release(ctx)
		return nil, nil, fmt.Errorf("connecting to card: %w", err)
	}

	cleanup := func() {
		if err := card.Disconnect(scard.LeaveCard); err != nil {
			log.Printf("warning: failed to disconnect card: %v", err)
		}
		release(ctx)
	}
	return card, cleanup, nil
}

func release(ctx *scard.Context) {
	if err := ctx.Release(); err != nil {
		log.Printf("warning: failed to release context: %v", err)
	}
}

// openSession connects and wraps the card in a session, exiting with the
// precondition code when no reader or card is available.
func openSession(opts options) (*session.Session, func()) {
	card, cleanup, err := connect(opts.reader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitPrecondition)
	}
	return session.New(card), cleanup
}

func requirePIN(opts options) string {
	if opts.pin == "" {
		fmt.Fprintln(os.Stderr, "a PIN is required (use -pin)")
		os.Exit(exitPrecondition)
	}
	return opts.pin
}

func runReaders() {
	ctx, err := scard.EstablishContext()
	if err != nil {
		fmt.Fprintf(os.Stderr, "establishing PC/SC context: %v\n", err)
		os.Exit(exitPrecondition)
	}
	defer release(ctx)

	readers, err := ctx.ListReaders()
	if err != nil {
		fmt.Fprintf(os.Stderr, "listing readers: %v\n", err)
		os.Exit(exitPrecondition)
	}

	fmt.Println("Available readers:")
	for i, r := range readers {
		fmt.Printf("  %d: %s\n", i, r)
	}
}

func runListApps(opts options) {
	sess, cleanup := openSession(opts)
	defer cleanup()

	apps, err := sess.ListApplications()
	if err != nil {
		fmt.Fprintf(os.Stderr, "listing applications: %v\n", err)
		os.Exit(exitPrecondition)
	}

	printAppTable(os.Stdout, apps)
}

func runVerifyPIN(opts options, args []string) {
	pin := requirePIN(opts)

	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: emvcap verifypin <app_index>")
		os.Exit(exitUsage)
	}

	var index int
	if _, err := fmt.Sscanf(args[0], "%d", &index); err != nil {
		fmt.Fprintf(os.Stderr, "app index %q is not a number\n", args[0])
		os.Exit(exitUsage)
	}

	sess, cleanup := openSession(opts)
	defer cleanup()

	apps, err := sess.ListApplications()
	if err != nil {
		fmt.Fprintf(os.Stderr, "listing applications: %v\n", err)
		os.Exit(exitPrecondition)
	}
	if index < 0 || index >= len(apps) {
		fmt.Fprintf(os.Stderr, "app index %d out of range (%d applications)\n", index, len(apps))
		os.Exit(exitUsage)
	}

	if _, err := sess.SelectApplication(apps[index].AID); err != nil {
		fmt.Fprintf(os.Stderr, "selecting application: %v\n", err)
		os.Exit(exitPrecondition)
	}

	if err := sess.VerifyPIN(pin); err != nil {
		fmt.Fprintf(os.Stderr, "PIN verification failed: %v\n", err)
		os.Exit(exitPrecondition)
	}
	fmt.Println("PIN verified successfully.")
}

func runCAP(opts options, args []string) {
	pin := requirePIN(opts)

	fs := flag.NewFlagSet("cap", flag.ContinueOnError)
	challenge := fs.String("challenge", "", "challenge or account number (up to 8 digits)")
	amount := fs.String("amount", "", "transaction amount, e.g. 1234.56")
	if err := fs.Parse(args); err != nil {
		os.Exit(exitUsage)
	}

	if *amount != "" && *challenge == "" {
		fmt.Fprintln(os.Stderr, "a challenge is required when an amount is given")
		os.Exit(exitUsage)
	}

	sess, cleanup := openSession(opts)
	defer cleanup()

	code, err := cap.Generate(sess, pin, cap.Request{Amount: *amount, Challenge: *challenge})
	if err != nil {
		var invalid *session.InvalidPIN
		var blocked *session.PINBlocked
		switch {
		case errors.As(err, &invalid):
			fmt.Fprintf(os.Stderr, "invalid PIN (%d tries remaining)\n", invalid.TriesLeft)
		case errors.As(err, &blocked):
			fmt.Fprintln(os.Stderr, "PIN is blocked")
		default:
			fmt.Fprintf(os.Stderr, "CAP generation failed: %v\n", err)
		}
		os.Exit(exitPrecondition)
	}

	fmt.Println(code)
}
