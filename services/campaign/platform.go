package campaign

// PlatformProfile is the display profile attached to a content item's free-text
// platform value. Unrecognized platforms get the default profile rather than
// an error.
type PlatformProfile struct {
	Name      string `json:"name"`
	Icon      string `json:"icon"`
	BgColor   string `json:"bg_color"`
	TextColor string `json:"text_color"`
}

var platformProfiles = map[string]PlatformProfile{
	"Facebook":  {Name: "Facebook", Icon: "📘", BgColor: "bg-blue-600", TextColor: "text-blue-400"},
	"Instagram": {Name: "Instagram", Icon: "📷", BgColor: "bg-pink-600", TextColor: "text-pink-400"},
	"YouTube":   {Name: "YouTube", Icon: "📺", BgColor: "bg-red-600", TextColor: "text-red-400"},
	"Twitter":   {Name: "Twitter", Icon: "🐦", BgColor: "bg-sky-600", TextColor: "text-sky-400"},
	"LinkedIn":  {Name: "LinkedIn", Icon: "💼", BgColor: "bg-blue-700", TextColor: "text-blue-400"},
	"TikTok":    {Name: "TikTok", Icon: "🎵", BgColor: "bg-black", TextColor: "text-pink-400"},
}

var defaultProfile = PlatformProfile{Name: "Unknown", Icon: "📱", BgColor: "bg-gray-600", TextColor: "text-gray-400"}

// ProfileFor maps a platform value to its display profile.
func ProfileFor(platform string) PlatformProfile {
	if p, ok := platformProfiles[platform]; ok {
		return p
	}

	p := defaultProfile
	if platform != "" {
		p.Name = platform
	}
	return p
}
