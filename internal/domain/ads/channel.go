package ads

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Channel values double as platforms.id in the store.
type Channel int

const (
	ChannelUnknown     Channel = 0
	ChannelFacebook    Channel = 1
	ChannelGoogle      Channel = 2
	ChannelTikTok      Channel = 3
	ChannelLinkedIn    Channel = 4
	ChannelTwitter     Channel = 5
	ChannelSnapchat    Channel = 6
	ChannelReddit      Channel = 7
	ChannelOmnichannel Channel = 100
)

var channelNames = map[Channel]string{
	ChannelUnknown:     "UNKNOWN",
	ChannelFacebook:    "FACEBOOK",
	ChannelGoogle:      "GOOGLE",
	ChannelTikTok:      "TIKTOK",
	ChannelLinkedIn:    "LINKEDIN",
	ChannelTwitter:     "TWITTER",
	ChannelSnapchat:    "SNAPCHAT",
	ChannelReddit:      "REDDIT",
	ChannelOmnichannel: "OMNICHANNEL",
}

// AdChannels are the concrete ad platforms, omnichannel excluded.
var AdChannels = []Channel{
	ChannelFacebook,
	ChannelGoogle,
	ChannelTikTok,
	ChannelLinkedIn,
	ChannelTwitter,
	ChannelSnapchat,
	ChannelReddit,
}

func (c Channel) String() string {
	if name, ok := channelNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Channel(%d)", int(c))
}

// PlatformName is the lower-case name stored in platforms.name.
func (c Channel) PlatformName() string { return strings.ToLower(c.String()) }

func (c Channel) Valid() bool {
	_, ok := channelNames[c]
	return ok && c != ChannelUnknown
}

// ChannelForName maps a case-insensitive channel name; unknown names give ChannelUnknown.
func ChannelForName(name string) Channel {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "facebook":
		return ChannelFacebook
	case "google", "google_ads":
		return ChannelGoogle
	case "tiktok":
		return ChannelTikTok
	case "linkedin":
		return ChannelLinkedIn
	case "twitter":
		return ChannelTwitter
	case "snapchat":
		return ChannelSnapchat
	case "reddit":
		return ChannelReddit
	case "omnichannel":
		return ChannelOmnichannel
	default:
		return ChannelUnknown
	}
}

// ParseChannel accepts a name or a numeric platform id and rejects anything unknown.
func ParseChannel(raw string) (Channel, error) {
	raw = strings.TrimSpace(raw)
	if c := ChannelForName(raw); c != ChannelUnknown {
		return c, nil
	}
	var n int
	if _, err := fmt.Sscanf(raw, "%d", &n); err == nil && fmt.Sprint(n) == raw {
		if c := Channel(n); c.Valid() {
			return c, nil
		}
	}
	return ChannelUnknown, NewError(CodeUnknownChannel, "ads.ParseChannel", fmt.Sprintf("unknown channel %q", raw), ErrUnknownChannel)
}

func (c Channel) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Channel) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err == nil {
		parsed, perr := ParseChannel(name)
		if perr != nil {
			return perr
		}
		*c = parsed
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("channel: %w", err)
	}
	if !Channel(n).Valid() {
		return NewError(CodeUnknownChannel, "ads.Channel.UnmarshalJSON", fmt.Sprintf("unknown channel %d", n), ErrUnknownChannel)
	}
	*c = Channel(n)
	return nil
}
