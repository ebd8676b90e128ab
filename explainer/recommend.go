package explainer

import (
	"strings"

	"github.com/giygas/cardioexplain-api/glossary"
)

const (
	ActionContactDoctor      = "Contact your doctor to discuss these alerts."
	ActionMonitorFatigue     = "Monitor symptoms of fatigue or shortness of breath."
	ActionTrackHeartbeat     = "Keep track of any irregular heartbeat sensations."
	ActionWatchSwelling      = "Watch for swelling in legs or sudden weight gain."
	ActionContinueMonitoring = "Continue regular monitoring as scheduled."
)

type actionRule struct {
	action string
	fires  func(ExplainedTerm) bool
}

// actionRules are evaluated in this order and each contributes at most once.
var actionRules = []actionRule{
	{ActionContactDoctor, func(t ExplainedTerm) bool { return t.Category == glossary.CategoryAlert }},
	{ActionMonitorFatigue, termContains("lvef")},
	{ActionTrackHeartbeat, termContains("atrial fibrillation")},
	{ActionWatchSwelling, termContains("bnp")},
}

func termContains(needle string) func(ExplainedTerm) bool {
	return func(t ExplainedTerm) bool {
		return strings.Contains(strings.ToLower(t.Term), needle)
	}
}

// RecommendActions derives follow-up actions from terms, which need not be
// sorted. The result is never empty: when no rule fires it holds the single
// continue-monitoring action.
func RecommendActions(terms []ExplainedTerm) []string {
	actions := make([]string, 0, len(actionRules))

	for _, rule := range actionRules {
		for _, t := range terms {
			if rule.fires(t) {
				actions = append(actions, rule.action)
				break
			}
		}
	}

	if len(actions) == 0 {
		actions = append(actions, ActionContinueMonitoring)
	}

	return actions
}
