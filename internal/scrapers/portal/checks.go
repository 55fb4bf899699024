package portal

import (
	"classsync-backend/pkg/htmlutil"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// the portal offers no reliable success indicator, so a login counts as confirmed when any
// one of these independent checks passes. they are tried in order, the password field check
// is the weakest signal (an interstitial page passes it too) and must stay last.
type loginCheck struct {
	name  string
	check func(doc *goquery.Document) bool
}

var loginChecks = []loginCheck{
	{name: "menu", check: hasMenu},
	{name: "welcome", check: hasWelcome},
	{name: "schedule", check: hasScheduleMarker},
	{name: "no-password-field", check: func(doc *goquery.Document) bool {
		return !HasPasswordField(doc)
	}},
}

// confirmLogin returns the name of the first check that passed.
func confirmLogin(doc *goquery.Document) (string, bool) {
	for _, c := range loginChecks {
		if c.check(doc) {
			return c.name, true
		}
	}
	return "", false
}

const menuSelector = ".ui-menubar, [role='menubar'], #mainMenu, .main-menu, .ui-panelmenu, #menuform"

func hasMenu(doc *goquery.Document) bool {
	return doc.Find(menuSelector).Length() > 0
}

var welcomeRegex = regexp.MustCompile(`(?i)\bwelcome(?:\s+back)?\s*[,!:]?\s+([\p{L}][\p{L}\p{N}.'\-]*)`)

var genericWelcome = map[string]bool{
	"to":      true,
	"guest":   true,
	"user":    true,
	"student": true,
	"visitor": true,
	"please":  true,
	"back":    true,
}

// hasWelcome looks for a personalized greeting, "Welcome to the portal" does not count.
func hasWelcome(doc *goquery.Document) bool {
	text := htmlutil.Text(doc.Find("body"))
	for _, match := range welcomeRegex.FindAllStringSubmatch(text, -1) {
		if !genericWelcome[strings.ToLower(match[1])] {
			return true
		}
	}
	return false
}

const scheduleMarkerSelector = "[id*='chedule'], [class*='chedule'], [id*='imetable'], [class*='imetable'], [id*='7day'], [id*='sevenDay']"

func hasScheduleMarker(doc *goquery.Document) bool {
	return doc.Find(scheduleMarkerSelector).Length() > 0
}

// HasPasswordField reports if the page still asks for a password, which on a page that should
// be behind the login means the session is not (or no longer) valid.
func HasPasswordField(doc *goquery.Document) bool {
	return doc.Find("input[type='password'], input[type='PASSWORD']").Length() > 0
}

const errorMessageSelector = ".ui-messages-error, .ui-message-error, .ui-growl-message-error, .alert-danger, .error-message, .errorMessage, #errorMessage, .login-error"

// errorMessage returns the text of an explicit error element, found reports whether
// such an element exists at all.
func errorMessage(doc *goquery.Document) (msg string, found bool) {
	sel := doc.Find(errorMessageSelector)
	if sel.Length() == 0 {
		return "", false
	}
	return htmlutil.Text(sel.First()), true
}

var tokenRegex = regexp.MustCompile(`[?&]token=([^&#]+)`)

// extractToken pulls the continuation token out of a redirect location.
func extractToken(location string) string {
	match := tokenRegex.FindStringSubmatch(location)
	if len(match) < 2 {
		return ""
	}
	return decodeToken(match[1])
}
