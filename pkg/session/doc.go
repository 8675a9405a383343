/*
Package session drives the stateful EMV command flow against a single card.

A Session wraps an iso7816.Client and walks the card through the standard
sequence: application discovery (PSE/PPSE directory walk or AID scan),
application selection, record reading, offline PIN verification, metadata
retrieval and cryptogram generation.

# State machine

A Session is in one of three states:

	Idle --------- SelectApplication --------> AppSelected
	any  --------- transport fault ----------> Faulted

ListApplications is valid in any non-faulted state and leaves the state as
it found it. ReadRecord, VerifyPIN, GetMetadata and GenerateAC require
AppSelected. A Faulted session rejects everything with SessionFaulted.

Card-level status words do not fault the session: they are classified into
typed errors (MissingApp, InvalidPIN, PINBlocked, ErrorResponse) and the
caller decides whether the flow continues. Only failures below the APDU
layer, where the card connection itself is gone, are unrecoverable.

# Usage

	sess := session.New(card)
	apps, err := sess.ListApplications()
	...
	fci, err := sess.SelectApplication(apps[0].AID)
	...
	if err := sess.VerifyPIN(pin); err != nil {
	    var invalid *session.InvalidPIN
	    if errors.As(err, &invalid) {
	        // invalid.TriesLeft attempts remain
	    }
	}
*/
package session
