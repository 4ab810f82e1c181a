package release

import "github.com/oshokin/craftstage/internal/domain/platform"

// Action is the verb of a library rule.
type Action string

// Rule actions.
const (
	ActionAllow    Action = "allow"
	ActionDisallow Action = "disallow"
)

// RuleOS constrains a rule to one OS family.
type RuleOS struct {
	Name string `json:"name"`
}

// Rule conditions a library on the target platform.
type Rule struct {
	Action Action  `json:"action"`
	OS     *RuleOS `json:"os,omitempty"`
}

// Blocks reports whether the rule excludes its library on p.
//
// An allow rule blocks when the OS does not match and passes when it does;
// any other action is the inverse. A rule without an OS constraint matches
// every platform, while an unrecognised OS token never matches.
func (r Rule) Blocks(p platform.Platform) bool {
	blocksIfOSMismatch := r.Action == ActionAllow

	if r.OS == nil || r.OS.Name == "" {
		return !blocksIfOSMismatch
	}

	target := platform.ParseRuleOS(r.OS.Name)
	if target == platform.Unknown || target != p.OS {
		return blocksIfOSMismatch
	}

	return !blocksIfOSMismatch
}

// Applies reports whether no rule blocks on p. An empty rule set always applies.
func Applies(rules []Rule, p platform.Platform) bool {
	_, blocked := BlockingRule(rules, p)

	return !blocked
}

// BlockingRule returns the first rule that blocks on p, for diagnostics.
func BlockingRule(rules []Rule, p platform.Platform) (Rule, bool) {
	for _, r := range rules {
		if r.Blocks(p) {
			return r, true
		}
	}

	return Rule{}, false
}
