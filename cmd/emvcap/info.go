package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/gregLibert/emvcap/pkg/session"
)

// runInfo walks everything public on the card: the payment system
// directories, every discovered application with a full record sweep,
// and the GET DATA metadata. An application the card reports as not
// present gets a one-line note and is skipped, and the record sweep of an
// SFI stops at the first status-word error; any other failure aborts.
func runInfo(opts options) {
	sess, cleanup := openSession(opts)
	defer cleanup()

	fmt.Println("Applications on the card:")
	fmt.Println()

	apps, err := sess.ListApplications()
	if err != nil {
		fmt.Fprintf(os.Stderr, "listing applications: %v\n", err)
		os.Exit(exitPrecondition)
	}

	for _, app := range apps {
		fmt.Printf("Application: %s, DF name: %X\n", app.ApplicationLabel, app.AID)
		if err := dumpApplication(sess, app.AID, opts.redact); err != nil {
			fmt.Fprintf(os.Stderr, "reading application %X: %v\n", app.AID, err)
			os.Exit(exitPrecondition)
		}
	}

	fmt.Println("Card metadata:")
	meta, err := sess.GetMetadata()
	if err != nil {
		if errors.Is(err, session.ErrNoAppSelected) {
			fmt.Println("  (no application selectable, metadata unavailable)")
			return
		}
		fmt.Fprintf(os.Stderr, "reading metadata: %v\n", err)
		os.Exit(exitPrecondition)
	}
	printMetadata(meta)
}

// dumpApplication selects one application and prints its FCI followed by
// a sweep of every readable record.
func dumpApplication(sess *session.Session, adf []byte, redact bool) error {
	fci, err := sess.SelectApplication(adf)
	if err != nil {
		var missing *session.MissingApp
		if errors.As(err, &missing) {
			fmt.Printf("  %X not available (normal on some cards)\n\n", adf)
			return nil
		}
		return err
	}

	fmt.Println(fci.Describe())
	fmt.Println()

	for sfi := byte(1); sfi <= 10; sfi++ {
		for record := byte(1); record <= 16; record++ {
			tree, err := sess.ReadRecord(sfi, record)
			if err != nil {
				var status *session.ErrorResponse
				if errors.As(err, &status) {
					break
				}
				return err
			}

			if _, ok := tree.FindHex("70"); ok {
				printTree(os.Stdout, fmt.Sprintf("File %d, record %d:", sfi, record), tree, redact)
			}
		}
	}

	return nil
}

func printMetadata(meta *session.Metadata) {
	if meta.ATC != nil {
		fmt.Printf("  Application Transaction Counter: %d\n", *meta.ATC)
	}
	if meta.LastOnlineATC != nil {
		fmt.Printf("  Last online ATC: %d\n", *meta.LastOnlineATC)
	}
	if meta.PINTryCounter != nil {
		fmt.Printf("  PIN tries remaining: %d\n", *meta.PINTryCounter)
	}
	if meta.ATC == nil && meta.LastOnlineATC == nil && meta.PINTryCounter == nil {
		fmt.Println("  (none exposed by the card)")
	}
}
