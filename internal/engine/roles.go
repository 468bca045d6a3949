package engine

import (
	"fmt"
	"strings"
)

// Role is the meaning assigned to a column.
type Role int

const (
	Unassigned Role = iota
	Entity
	Period
	Category
	Measure
)

var roleNames = map[Role]string{
	Unassigned: "unassigned",
	Entity:     "entity",
	Period:     "period",
	Category:   "category",
	Measure:    "measure",
}

func (r Role) String() string { return roleNames[r] }

// ParseRole maps a rules-file role name to a Role.
func ParseRole(s string) (Role, error) {
	for role, name := range roleNames {
		if role != Unassigned && strings.EqualFold(s, name) {
			return role, nil
		}
	}
	return Unassigned, fmt.Errorf("unknown role %q", s)
}

// Rule assigns Role to headers containing any of Match, case-insensitively.
type Rule struct {
	Role  Role
	Match []string
}

// Matches reports whether header contains one of the rule's substrings.
func (r Rule) Matches(header string) bool {
	h := strings.ToLower(header)
	for _, m := range r.Match {
		if m != "" && strings.Contains(h, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

// Rules is the ordered role table. For Entity and Category the first matching
// header wins; Measure and Period collect every match in header order.
type Rules []Rule

// DefaultRules returns the built-in header heuristics.
func DefaultRules() Rules {
	return Rules{
		{Role: Entity, Match: []string{"name", "client", "employee"}},
		{Role: Category, Match: []string{"project"}},
		{Role: Measure, Match: []string{"amount"}},
		{Role: Period, Match: []string{"date", "month"}},
	}
}

// For returns the merged rule for role. Several entries for one role are
// concatenated in table order.
func (rs Rules) For(role Role) Rule {
	merged := Rule{Role: role}
	for _, r := range rs {
		if r.Role == role {
			merged.Match = append(merged.Match, r.Match...)
		}
	}
	return merged
}

// Roles is the outcome of role inference over a set of cleaned headers.
type Roles struct {
	Entity        string
	Category      string
	Measures      []string
	PeriodSources []string
	// Period is the derived period column, set by DerivePeriods.
	Period string
}

// PrimaryMeasure is the first measure header in column order, or "".
func (r Roles) PrimaryMeasure() string {
	if len(r.Measures) == 0 {
		return ""
	}
	return r.Measures[0]
}

// Column returns the column bound to role, or "" when the role is absent.
func (r Roles) Column(role Role) string {
	switch role {
	case Entity:
		return r.Entity
	case Category:
		return r.Category
	case Period:
		return r.Period
	case Measure:
		return r.PrimaryMeasure()
	}
	return ""
}

// InferRoles binds headers to roles using rules.
func InferRoles(headers []string, rules Rules) (Roles, []Notice) {
	var roles Roles
	entity := rules.For(Entity)
	category := rules.For(Category)
	measure := rules.For(Measure)
	period := rules.For(Period)

	for _, h := range headers {
		if roles.Entity == "" && entity.Matches(h) {
			roles.Entity = h
		}
		if roles.Category == "" && category.Matches(h) {
			roles.Category = h
		}
		if measure.Matches(h) {
			roles.Measures = append(roles.Measures, h)
		}
		if period.Matches(h) {
			roles.PeriodSources = append(roles.PeriodSources, h)
		}
	}

	var notices []Notice
	if roles.Entity == "" {
		notices = append(notices, warn(ErrNoEntity))
	}
	if len(roles.Measures) == 0 {
		notices = append(notices, warn(ErrNoMeasure))
	}
	return roles, notices
}
