package trigger

import (
	"testing"

	"clubassist/types"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want types.TriggerDecision
	}{
		{
			name: "no trigger vocabulary keeps the chat open",
			text: "The mess closes at 9pm on weekdays. Anything else?",
			want: types.TriggerDecision{Action: types.ActionContinue},
		},
		{
			name: "plain goodbye auto-closes",
			text: "Fine. Goodbye.",
			want: types.TriggerDecision{Action: types.ActionAutoClose},
		},
		{
			name: "close phrase is case-insensitive",
			text: "LEAVE ME ALONE",
			want: types.TriggerDecision{Action: types.ActionAutoClose},
		},
		{
			name: "opening a page now navigates",
			text: "Sure! Opening VPN Setup now—",
			want: types.TriggerDecision{Action: types.ActionNavigate, TargetPath: "/vpn-setup"},
		},
		{
			name: "open page phrasing navigates",
			text: "Just open guide yourself next time.",
			want: types.TriggerDecision{Action: types.ActionNavigate, TargetPath: "/guide"},
		},
		{
			name: "projects and showcase resolve to the same path",
			text: "Opening projects now—",
			want: types.TriggerDecision{Action: types.ActionNavigate, TargetPath: "/showcase"},
		},
		{
			name: "showcase alias",
			text: "Opening showcase now—",
			want: types.TriggerDecision{Action: types.ActionNavigate, TargetPath: "/showcase"},
		},
		{
			name: "multiple tabs collected independently",
			text: "Opening team in new tab, opening guide in new tab, enjoy the chaos.",
			want: types.TriggerDecision{Action: types.ActionOpenTabs, TabPaths: []string{"/team", "/guide"}},
		},
		{
			name: "tabs ride along with navigation",
			text: "Opening guide in new tab. Opening home now—",
			want: types.TriggerDecision{Action: types.ActionNavigate, TargetPath: "/", TabPaths: []string{"/guide"}},
		},
		{
			name: "refresh without count defaults to one",
			text: "I'll just refresh the page for you.",
			want: types.TriggerDecision{Action: types.ActionRefresh, RefreshCount: 1},
		},
		{
			name: "refresh count is capped",
			text: "refresh the page 99 times",
			want: types.TriggerDecision{Action: types.ActionRefresh, RefreshCount: 5},
		},
		{
			name: "refresh count below the cap is kept",
			text: "Refreshing 3 times, hold on.",
			want: types.TriggerDecision{Action: types.ActionRefresh, RefreshCount: 3},
		},
		{
			name: "email threat wins over navigation",
			text: "Sending this mail to the admins. Opening home now—",
			want: types.TriggerDecision{Action: types.ActionEmailThreat},
		},
		{
			name: "email threat suppresses navigation but keeps tabs",
			text: "Sending email right now. Opening team in new tab.",
			want: types.TriggerDecision{Action: types.ActionEmailThreat, TabPaths: []string{"/team"}},
		},
		{
			name: "navigation wins over an incidental close phrase",
			text: "Goodbye. Opening team now—",
			want: types.TriggerDecision{Action: types.ActionNavigate, TargetPath: "/team"},
		},
		{
			name: "refresh wins over plain auto-close",
			text: "Goodbye, I'll refresh the page.",
			want: types.TriggerDecision{Action: types.ActionRefresh, RefreshCount: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.text)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyIsIdempotent(t *testing.T) {
	text := "Sending this mail. Opening guide in new tab. refresh the page 4 times. Goodbye."
	first := Classify(text)
	second := Classify(text)
	assert.Equal(t, first, second)
}

func TestClassifyBroadNowDash(t *testing.T) {
	// the "now—" pattern is intentionally broad: an action announcement
	// without a known page name still closes the chat
	got := Classify("Doing the thing now—")
	assert.Equal(t, types.ActionAutoClose, got.Action)
}
