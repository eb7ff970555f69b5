package ads

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestChannelLookup(t *testing.T) {
	cases := map[string]Channel{
		"facebook":    ChannelFacebook,
		"FACEBOOK":    ChannelFacebook,
		"google":      ChannelGoogle,
		"google_ads":  ChannelGoogle,
		"reddit":      ChannelReddit,
		"omnichannel": ChannelOmnichannel,
		"myspace":     ChannelUnknown,
	}
	for in, want := range cases {
		if got := ChannelForName(in); got != want {
			t.Fatalf("ChannelForName(%q): want=%v got=%v", in, want, got)
		}
	}
	if ChannelTikTok.PlatformName() != "tiktok" {
		t.Fatalf("PlatformName: got %q", ChannelTikTok.PlatformName())
	}
}

func TestParseChannel(t *testing.T) {
	if c, err := ParseChannel("2"); err != nil || c != ChannelGoogle {
		t.Fatalf("ParseChannel(2): got %v, %v", c, err)
	}
	if c, err := ParseChannel("linkedin"); err != nil || c != ChannelLinkedIn {
		t.Fatalf("ParseChannel(linkedin): got %v, %v", c, err)
	}
	for _, bad := range []string{"", "0", "42", "myspace"} {
		_, err := ParseChannel(bad)
		if !errors.Is(err, ErrUnknownChannel) || !IsCode(err, CodeUnknownChannel) {
			t.Fatalf("ParseChannel(%q): expected unknown channel, got %v", bad, err)
		}
	}
}

func TestChannelJSON(t *testing.T) {
	b, err := json.Marshal(ChannelSnapchat)
	if err != nil || string(b) != `"SNAPCHAT"` {
		t.Fatalf("marshal: got %s, %v", b, err)
	}
	var c Channel
	if err := json.Unmarshal([]byte(`"twitter"`), &c); err != nil || c != ChannelTwitter {
		t.Fatalf("unmarshal name: got %v, %v", c, err)
	}
	if err := json.Unmarshal([]byte(`7`), &c); err != nil || c != ChannelReddit {
		t.Fatalf("unmarshal id: got %v, %v", c, err)
	}
	if err := json.Unmarshal([]byte(`99`), &c); err == nil {
		t.Fatalf("unmarshal 99: expected error")
	}
}

func TestStatusPresentation(t *testing.T) {
	cases := []struct {
		s     Status
		name  string
		color string
	}{
		{StatusOK, "OK", "#00FF00"},
		{StatusWarning, "WARNING", "#FFFF00"},
		{StatusFailed, "FAILED", "#FF0000"},
		{StatusUnknown, "UNKNOWN", "#bcbcbc"},
	}
	for _, tc := range cases {
		if tc.s.String() != tc.name || tc.s.ColorHex() != tc.color {
			t.Fatalf("%d: want=%s/%s got=%s/%s", int(tc.s), tc.name, tc.color, tc.s.String(), tc.s.ColorHex())
		}
	}
	if StatusOK.Worse(StatusFailed) != StatusFailed || StatusWarning.Worse(StatusUnknown) != StatusWarning {
		t.Fatalf("Worse: unexpected ordering")
	}
}

func TestErrorCodes(t *testing.T) {
	base := NewError(CodeMissingParent, "upsert.ad", "ad group 7 not found", ErrMissingParent)
	wrapped := fmt.Errorf("record 3: %w", base)
	if CodeOf(wrapped) != CodeMissingParent {
		t.Fatalf("CodeOf: got %q", CodeOf(wrapped))
	}
	if !errors.Is(wrapped, ErrMissingParent) {
		t.Fatalf("errors.Is: sentinel lost")
	}
	if CodeOf(ErrMalformedSpec) != CodeMalformed {
		t.Fatalf("bare sentinel: got %q", CodeOf(ErrMalformedSpec))
	}
	if CodeOf(errors.New("boom")) != CodeInternal || CodeOf(nil) != "" {
		t.Fatalf("fallback codes wrong")
	}
	if Wrap(CodeUpstream, "op", nil) != nil {
		t.Fatalf("Wrap(nil) should be nil")
	}
}

func TestParseDate(t *testing.T) {
	for _, raw := range []string{"2024-06-09", "2024-06-09 00:00:00+00:00", "2024-06-09T00:00:00Z"} {
		got, err := ParseDate(raw)
		if err != nil {
			t.Fatalf("ParseDate(%q): %v", raw, err)
		}
		if got.Format(DateLayout) != "2024-06-09" {
			t.Fatalf("ParseDate(%q): got %s", raw, got)
		}
	}
	loc := time.FixedZone("x", -7*3600)
	d := CalendarDate(time.Date(2024, 6, 9, 23, 30, 0, 0, loc))
	if !d.Equal(time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("CalendarDate: got %s", d)
	}
}

func TestAccountDescription(t *testing.T) {
	name := "Shoes"
	a := AccountDetailsFrom(PlatformInfo{AccountID: "act_1", PlatformID: 1, BrandID: 3, AccountName: &name})
	if a.Description() != "(FACEBOOK)[act_1 | Shoes]" {
		t.Fatalf("description: got %q", a.Description())
	}
	a.AccountName = nil
	if a.Description() != "(FACEBOOK)[act_1 | UNKNOWN]" {
		t.Fatalf("description: got %q", a.Description())
	}
}
