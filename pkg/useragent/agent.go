package useragent

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Agent is the classification of a single user agent string. Empty strings
// mean "not detected".
type Agent struct {
	Raw      string
	Mobile   bool // phone-sized handset
	Tablet   bool
	Bot      bool
	Device   string
	Platform string
	Browser  string
}

// IsMobileOrTablet reports whether the client is a handheld device.
func (a Agent) IsMobileOrTablet() bool {
	return a.Mobile || a.Tablet
}

var (
	// a token ending in "bot" and followed by a version, suffix or the end
	botTokenPattern     = regexp.MustCompile(`[a-z0-9]bot(?:[/;)\-]|$)`)
	botNamePattern      = regexp.MustCompile(`([a-z0-9\-_]*(?:bot|spider|crawler))`)
	androidModelPattern = regexp.MustCompile(`android [0-9.]+; (?:[a-z]{2}[-_][a-z]{2}; )?([^;)]+?)(?: build/|\))`)
	titleCaser          = cases.Title(language.English)
)

// Classify parses ua. It never fails: unknown strings produce an Agent with
// only Raw set.
func Classify(ua string) Agent {
	a := Agent{Raw: ua}
	lower := strings.ToLower(strings.TrimSpace(ua))
	if lower == "" {
		return a
	}

	if isBot(lower) {
		a.Bot = true
		a.Device = botName(lower)
		a.Browser = firstMatch(browserRules, lower)
		return a
	}

	a.Platform = firstMatch(platformRules, lower)
	a.Browser = firstMatch(browserRules, lower)
	a.Device = firstMatch(deviceRules, lower)

	switch {
	case tabletKeywords.matches(lower):
		a.Tablet = true
	case mobileKeywords.matches(lower):
		a.Mobile = true
	case a.Platform == PlatformAndroid:
		// Android tablets omit the "Mobile" token that phones carry.
		a.Tablet = true
	}

	if a.Device == "" && a.Platform == PlatformAndroid {
		a.Device = androidModel(lower)
	}

	return a
}

func isBot(lowerUA string) bool {
	if botKeywords.matches(lowerUA) {
		return true
	}
	return !botLookalikes.matches(lowerUA) && botTokenPattern.MatchString(lowerUA)
}

func botName(lowerUA string) string {
	m := botNamePattern.FindStringSubmatch(lowerUA)
	if len(m) < 2 || m[1] == "" {
		return "Bot"
	}
	return titleCaser.String(m[1])
}

// androidModel extracts the model token Android browsers put after the OS
// version, e.g. "Android 13; SM-X200 Build/..." -> "SM-X200".
func androidModel(lowerUA string) string {
	m := androidModelPattern.FindStringSubmatch(lowerUA)
	if len(m) < 2 {
		return ""
	}
	model := strings.TrimSpace(m[1])
	if model == "" || model == "k" || model == "mobile" {
		return ""
	}
	return strings.ToUpper(model)
}
