/*
Package cap computes Chip Authentication Program one-time codes.

CAP is the offline two-factor scheme used by several European banks: the
cardholder's reader verifies the PIN against the chip, asks the card for
an ARQC over a fixed transaction block, and compresses issuer-selected
bits of the cryptogram into a short decimal code the bank can verify
out of band.

The package splits the computation into a pure builder (BuildARQCRequest),
a pure decoder (ExtractCAPValue) and a driver (Generate) that runs the
whole flow over an established card session.
*/
package cap

import (
	"strings"

	"github.com/gregLibert/emvcap/pkg/emv"
	"github.com/gregLibert/emvcap/pkg/session"
)

// Generate runs a complete CAP computation: pick the card's CAP-capable
// application, verify the PIN against it, request an ARQC over the
// transaction block and decode the one-time code. PIN errors from the
// card are returned as-is (session.InvalidPIN, session.PINBlocked).
func Generate(sess *session.Session, pin string, req Request) (string, error) {
	body, err := req.Body()
	if err != nil {
		return "", err
	}

	apps, err := sess.ListApplications()
	if err != nil {
		return "", err
	}
	if len(apps) == 0 {
		return "", &CAPError{Reason: ReasonMissingTemplate, Detail: "no applications on card"}
	}

	if _, err := sess.SelectApplication(chooseApp(apps).AID); err != nil {
		return "", err
	}

	if err := sess.VerifyPIN(pin); err != nil {
		return "", err
	}

	tree, err := sess.GenerateAC(body)
	if err != nil {
		return "", err
	}

	value, err := ExtractCAPValue(tree)
	if err != nil {
		return "", err
	}
	return FormatCAPValue(value), nil
}

// chooseApp picks the application to authenticate against. Cards that
// carry a dedicated one-time-code application advertise it by label;
// otherwise the last directory entry is used, which is where UK issuers
// place the CAP application.
func chooseApp(apps []emv.ApplicationTemplate) emv.ApplicationTemplate {
	for _, app := range apps {
		label := strings.ToUpper(string(app.ApplicationLabel))
		if strings.Contains(label, "CAP") || strings.Contains(label, "IDENT") {
			return app
		}
	}
	return apps[len(apps)-1]
}
