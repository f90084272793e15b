package useragent

// Platform names.
const (
	PlatformWindows      = "Windows"
	PlatformWindowsPhone = "WindowsPhoneOS"
	PlatformOSX          = "OS X"
	PlatformIOS          = "iOS"
	PlatformAndroid      = "AndroidOS"
	PlatformChromeOS     = "ChromeOS"
	PlatformLinux        = "Linux"
)

// Browser families.
const (
	BrowserChrome   = "Chrome"
	BrowserChromium = "Chromium"
	BrowserFirefox  = "Firefox"
	BrowserSafari   = "Safari"
	BrowserEdge     = "Edge"
	BrowserOpera    = "Opera"
	BrowserIE       = "IE"
	BrowserSamsung  = "Samsung Internet"
	BrowserYandex   = "Yandex"
	BrowserVivaldi  = "Vivaldi"
	BrowserUC       = "UCBrowser"
)

// Device names.
const (
	DeviceIPhone    = "iPhone"
	DeviceIPad      = "iPad"
	DeviceIPod      = "iPod"
	DeviceKindle    = "Kindle"
	DeviceSamsung   = "Samsung"
	DeviceHuawei    = "Huawei"
	DeviceXiaomi    = "Xiaomi"
	DevicePixel     = "Pixel"
	DeviceNexus     = "Nexus"
	DeviceMacintosh = "Macintosh"
)
