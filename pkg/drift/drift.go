// Package drift compares a desired-state manifest with the rules a backend
// reports and classifies every manifest rule_id.
package drift

import (
	"github.com/arthur-debert/dac/pkg/kibana"
	"github.com/arthur-debert/dac/pkg/models"
)

// Status is the classification of one manifest rule_id.
type Status string

const (
	StatusToEnable  Status = "TO_ENABLE"
	StatusToDisable Status = "TO_DISABLE"
	StatusSatisfied Status = "SATISFIED"
	StatusNotFound  Status = "NOT_FOUND"
)

// Entry is one classified manifest rule_id. ID and Name are empty for
// not-found entries.
type Entry struct {
	RuleID  string
	ID      string
	Name    string
	Desired bool
	Status  Status
}

// Duplicate is a rule_id the backend returned more than once.
type Duplicate struct {
	RuleID string
	// KeptID is the internal id of the first occurrence, the one used.
	KeptID string
	// IgnoredIDs are the internal ids of later occurrences.
	IgnoredIDs []string
}

// Classification partitions the manifest rule_ids. Every slice follows
// manifest declaration order, enabled list first.
type Classification struct {
	ToEnable   []Entry
	ToDisable  []Entry
	Satisfied  []Entry
	NotFound   []Entry
	Duplicates []Duplicate
}

// HasChanges reports whether any bulk action is needed.
func (c *Classification) HasChanges() bool {
	return len(c.ToEnable) > 0 || len(c.ToDisable) > 0
}

// EnableIDs returns the internal ids to enable.
func (c *Classification) EnableIDs() []string {
	return internalIDs(c.ToEnable)
}

// DisableIDs returns the internal ids to disable.
func (c *Classification) DisableIDs() []string {
	return internalIDs(c.ToDisable)
}

// Classify computes the drift between manifest and the backend rule set.
// Rule_ids present in neither manifest list are ignored whatever their
// remote state.
func Classify(manifest *models.Manifest, rules []kibana.Rule) *Classification {
	c := &Classification{
		ToEnable:  []Entry{},
		ToDisable: []Entry{},
		Satisfied: []Entry{},
		NotFound:  []Entry{},
	}

	index, duplicates := indexRules(rules)
	c.Duplicates = duplicates

	for _, id := range manifest.Enabled {
		c.add(classifyOne(id, true, index))
	}
	for _, id := range manifest.Disabled {
		c.add(classifyOne(id, false, index))
	}

	return c
}

func (c *Classification) add(e Entry) {
	switch e.Status {
	case StatusToEnable:
		c.ToEnable = append(c.ToEnable, e)
	case StatusToDisable:
		c.ToDisable = append(c.ToDisable, e)
	case StatusSatisfied:
		c.Satisfied = append(c.Satisfied, e)
	case StatusNotFound:
		c.NotFound = append(c.NotFound, e)
	}
}

func classifyOne(ruleID string, desired bool, index map[string]kibana.Rule) Entry {
	e := Entry{RuleID: ruleID, Desired: desired}

	rule, ok := index[ruleID]
	if !ok {
		e.Status = StatusNotFound
		return e
	}

	e.ID = rule.ID
	e.Name = rule.Name
	switch {
	case rule.Enabled == desired:
		e.Status = StatusSatisfied
	case desired:
		e.Status = StatusToEnable
	default:
		e.Status = StatusToDisable
	}
	return e
}

// indexRules maps rule_id to rule. The first occurrence wins and later ones
// are reported instead of overwriting it.
func indexRules(rules []kibana.Rule) (map[string]kibana.Rule, []Duplicate) {
	index := make(map[string]kibana.Rule, len(rules))
	dupIndex := map[string]int{}
	var duplicates []Duplicate

	for _, r := range rules {
		kept, exists := index[r.RuleID]
		if !exists {
			index[r.RuleID] = r
			continue
		}
		i, seen := dupIndex[r.RuleID]
		if !seen {
			duplicates = append(duplicates, Duplicate{RuleID: r.RuleID, KeptID: kept.ID})
			i = len(duplicates) - 1
			dupIndex[r.RuleID] = i
		}
		duplicates[i].IgnoredIDs = append(duplicates[i].IgnoredIDs, r.ID)
	}

	return index, duplicates
}

func internalIDs(entries []Entry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return ids
}
