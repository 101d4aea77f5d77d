// Package trigger classifies a completed assistant message against the
// fixed trigger-phrase vocabulary the chat widget reacts to. Classification
// is pure: same text in, same decision out, no state, and it must only ever
// run on fully accumulated text, never on streaming fragments.
package trigger

import (
	"regexp"
	"strconv"
	"strings"

	"clubassist/types"
)

// MaxRefreshCount is the hard cap on requested page reloads.
const MaxRefreshCount = 5

// pageRegistry maps the spoken page vocabulary to site paths. "projects"
// and "showcase" are the same page. Order matters: longer, more specific
// aliases first so "vpn setup" wins before a bare "home" elsewhere in the
// sentence.
var pageRegistry = []struct {
	aliases []string
	path    string
}{
	{[]string{"vpn setup", "vpn-setup", "vpn"}, "/vpn-setup"},
	{[]string{"projects", "showcase"}, "/showcase"},
	{[]string{"team"}, "/team"},
	{[]string{"guide"}, "/guide"},
	{[]string{"home"}, "/"},
}

// closePhrases end the chat on their own. The trailing "now—" entry is
// intentionally broad: it catches "Opening X now—" style announcements.
var closePhrases = []string{
	"ending this chit-chat",
	"here you go—",
	"closing this window",
	"goodbye",
	"i don't want to talk to you anymore",
	"leave me alone",
	"we won't talk anymore",
	"now—",
}

var emailPhrases = []string{
	"sending this mail",
	"sending email",
}

var (
	tabRe     = regexp.MustCompile(`opening ([a-z -]+?) in (?:a )?new tab`)
	refreshRe = regexp.MustCompile(`(\d+)\s*times`)
)

// Classify derives the side-effect decision from the final assistant text.
// Precedence: emailThreat > navigate > refresh > openTabs-only > autoClose
// > continue. The action phrases are meant to be the last thing the
// assistant says, so the strongest explicit action wins over an incidental
// close phrase. TabPaths ride along with any stronger action.
func Classify(fullText string) types.TriggerDecision {
	lower := strings.ToLower(fullText)
	tabs := extractTabPaths(lower)

	type rule struct {
		match func() (types.TriggerDecision, bool)
	}

	rules := []rule{
		{func() (types.TriggerDecision, bool) {
			if !containsAny(lower, emailPhrases) {
				return types.TriggerDecision{}, false
			}
			// an email threat suppresses navigation for this decision
			return types.TriggerDecision{Action: types.ActionEmailThreat, TabPaths: tabs}, true
		}},
		{func() (types.TriggerDecision, bool) {
			target := extractNavTarget(lower)
			if target == "" {
				return types.TriggerDecision{}, false
			}
			return types.TriggerDecision{Action: types.ActionNavigate, TargetPath: target, TabPaths: tabs}, true
		}},
		{func() (types.TriggerDecision, bool) {
			count, ok := detectRefresh(lower)
			if !ok {
				return types.TriggerDecision{}, false
			}
			return types.TriggerDecision{Action: types.ActionRefresh, RefreshCount: count, TabPaths: tabs}, true
		}},
		{func() (types.TriggerDecision, bool) {
			if len(tabs) == 0 {
				return types.TriggerDecision{}, false
			}
			return types.TriggerDecision{Action: types.ActionOpenTabs, TabPaths: tabs}, true
		}},
		{func() (types.TriggerDecision, bool) {
			if !containsAny(lower, closePhrases) {
				return types.TriggerDecision{}, false
			}
			return types.TriggerDecision{Action: types.ActionAutoClose}, true
		}},
	}

	for _, r := range rules {
		if decision, ok := r.match(); ok {
			return decision
		}
	}
	return types.TriggerDecision{Action: types.ActionContinue}
}

// extractNavTarget resolves "opening <page> now—" and "open <page>"
// announcements against the page registry.
func extractNavTarget(lower string) string {
	for _, entry := range pageRegistry {
		for _, alias := range entry.aliases {
			if strings.Contains(lower, "opening "+alias+" now—") ||
				strings.Contains(lower, "open "+alias) {
				return entry.path
			}
		}
	}
	return ""
}

// extractTabPaths collects every "opening <page> in new tab" occurrence
// that resolves against the registry, independent of single-navigation
// detection.
func extractTabPaths(lower string) []string {
	var paths []string
	for _, m := range tabRe.FindAllStringSubmatch(lower, -1) {
		if path, ok := resolvePage(m[1]); ok {
			paths = append(paths, path)
		}
	}
	return paths
}

func resolvePage(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, entry := range pageRegistry {
		for _, alias := range entry.aliases {
			if strings.Contains(name, alias) {
				return entry.path, true
			}
		}
	}
	return "", false
}

func detectRefresh(lower string) (int, bool) {
	if !strings.Contains(lower, "refresh") {
		return 0, false
	}
	if !strings.Contains(lower, "page") && !strings.Contains(lower, "times") {
		return 0, false
	}
	count := 1
	if m := refreshRe.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			count = min(n, MaxRefreshCount)
		}
	}
	return count, true
}

func containsAny(text string, phrases []string) bool {
	for _, phrase := range phrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}
