package useragent

import "strings"

// keywordSet matches when any of its keywords is a substring.
type keywordSet []string

func (k keywordSet) matches(s string) bool {
	for _, kw := range k {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// rule maps a keyword set to a label; excludes veto the match.
type rule struct {
	label    string
	keywords keywordSet
	excludes keywordSet
}

func firstMatch(rules []rule, lowerUA string) string {
	for _, r := range rules {
		if r.keywords.matches(lowerUA) && !r.excludes.matches(lowerUA) {
			return r.label
		}
	}
	return ""
}

var (
	botKeywords    = keywordSet{"googlebot", "bingbot", "yandexbot", "applebot", "duckduckbot", "slackbot", "twitterbot", "telegrambot", "discordbot", "linkedinbot", "adsbot", "spider", "crawler", "slurp", "facebookexternalhit", "lighthouse", "headlesschrome", "curl/", "wget/"}
	// handset brands whose model names end in "bot"
	botLookalikes  = keywordSet{"cubot"}
	tabletKeywords = keywordSet{"ipad", "tablet", "kindle", "silk/", "kftt", "playbook", "sm-t", "gt-p", "mediapad"}
	mobileKeywords = keywordSet{"mobile", "iphone", "ipod", "windows phone", "iemobile", "blackberry", "opera mini", "nokia"}
)

var platformRules = []rule{
	{label: PlatformWindowsPhone, keywords: keywordSet{"windows phone"}},
	{label: PlatformWindows, keywords: keywordSet{"windows nt", "win64", "win32", "windows"}},
	{label: PlatformIOS, keywords: keywordSet{"iphone", "ipad", "ipod", "cpu os "}},
	{label: PlatformAndroid, keywords: keywordSet{"android"}},
	{label: PlatformOSX, keywords: keywordSet{"macintosh", "mac os x"}},
	{label: PlatformChromeOS, keywords: keywordSet{"cros ", "chromeos"}},
	{label: PlatformLinux, keywords: keywordSet{"linux", "x11", "ubuntu", "fedora"}},
}

var browserRules = []rule{
	{label: BrowserEdge, keywords: keywordSet{"edg/", "edge/", "edga/", "edgios/"}},
	{label: BrowserOpera, keywords: keywordSet{"opr/", "opera", "opios/"}},
	{label: BrowserSamsung, keywords: keywordSet{"samsungbrowser"}},
	{label: BrowserYandex, keywords: keywordSet{"yabrowser"}},
	{label: BrowserVivaldi, keywords: keywordSet{"vivaldi"}},
	{label: BrowserUC, keywords: keywordSet{"ucbrowser"}},
	{label: BrowserFirefox, keywords: keywordSet{"firefox", "fxios"}},
	{label: BrowserIE, keywords: keywordSet{"msie ", "trident/"}},
	{label: BrowserChrome, keywords: keywordSet{"chrome", "crios"}, excludes: keywordSet{"chromium/"}},
	{label: BrowserChromium, keywords: keywordSet{"chromium/"}},
	{label: BrowserSafari, keywords: keywordSet{"safari"}, excludes: keywordSet{"android"}},
}

var deviceRules = []rule{
	{label: DeviceIPhone, keywords: keywordSet{"iphone"}},
	{label: DeviceIPad, keywords: keywordSet{"ipad"}},
	{label: DeviceIPod, keywords: keywordSet{"ipod"}},
	{label: DeviceKindle, keywords: keywordSet{"kindle", "silk/", "kftt", "kfjwi"}},
	{label: DeviceSamsung, keywords: keywordSet{"samsung", "sm-g", "sm-a", "sm-n", "sm-s", "sm-t", "gt-"}},
	{label: DeviceHuawei, keywords: keywordSet{"huawei", "honor", "mediapad"}},
	{label: DeviceXiaomi, keywords: keywordSet{"xiaomi", "redmi", "miui"}},
	{label: DevicePixel, keywords: keywordSet{"pixel"}},
	{label: DeviceNexus, keywords: keywordSet{"nexus"}},
	{label: DeviceMacintosh, keywords: keywordSet{"macintosh"}},
}
