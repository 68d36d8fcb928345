package ast

// Side identifies which part of a rule body a bind line belongs to.
type Side int

const (
	// SidePrecondition is the block before the "->" separator.
	SidePrecondition Side = iota
	// SideEffect is the block after the "->" separator.
	SideEffect
)

// String returns the lowercase side name.
func (s Side) String() string {
	if s == SideEffect {
		return "effect"
	}
	return "precondition"
}

// RuleSet is the result of parsing one rule document.
// Rules appear in source order. A RuleSet is only ever produced by a
// successful parse of the whole input and is not modified afterwards.
type RuleSet struct {
	Source string  // Name of the document the rules came from
	Rules  []*Rule // Rules in source order
}

// Len returns the number of rules.
func (rs *RuleSet) Len() int {
	return len(rs.Rules)
}

// Find returns the first rule with the given title, or nil.
func (rs *RuleSet) Find(title string) *Rule {
	for _, rule := range rs.Rules {
		if rule.Title == title {
			return rule
		}
	}
	return nil
}

// Rule is one "### <title>" block of a rule document.
type Rule struct {
	Title       string   // Trimmed heading text
	Description string   // Trimmed text of the "> " line
	Binds       []*Bind  // Binds in first-mention order
	Location    Location // Location of the heading
}

// Bind returns the bind for an entity, or nil if the rule never mentions it.
func (r *Rule) Bind(entity string) *Bind {
	for _, bind := range r.Binds {
		if bind.Entity == entity {
			return bind
		}
	}
	return nil
}

// HasBinds returns true if the rule has at least one bind line.
func (r *Rule) HasBinds() bool {
	return len(r.Binds) > 0
}

// Entities returns the entity names in first-mention order.
func (r *Rule) Entities() []string {
	names := make([]string, len(r.Binds))
	for i, bind := range r.Binds {
		names[i] = bind.Entity
	}
	return names
}

// Bind is the tag-state contract of one entity within one rule.
type Bind struct {
	Entity     string
	Required   TagSet // "+tag" before the separator
	Prohibited TagSet // "-tag" before the separator
	Adds       TagSet // "+tag" after the separator
	Removes    TagSet // "-tag" after the separator
	Location   Location
}

// NewBind creates an empty bind for an entity.
func NewBind(entity string, loc Location) *Bind {
	return &Bind{
		Entity:     entity,
		Required:   NewTagSet(),
		Prohibited: NewTagSet(),
		Adds:       NewTagSet(),
		Removes:    NewTagSet(),
		Location:   loc,
	}
}

// Include returns the set that "+" tags go into on the given side.
func (b *Bind) Include(side Side) TagSet {
	if side == SideEffect {
		return b.Adds
	}
	return b.Required
}

// Exclude returns the set that "-" tags go into on the given side.
func (b *Bind) Exclude(side Side) TagSet {
	if side == SideEffect {
		return b.Removes
	}
	return b.Prohibited
}

// HasPrecondition returns true if any tag is required or prohibited.
func (b *Bind) HasPrecondition() bool {
	return b.Required.Len() > 0 || b.Prohibited.Len() > 0
}

// HasEffect returns true if any tag is added or removed.
func (b *Bind) HasEffect() bool {
	return b.Adds.Len() > 0 || b.Removes.Len() > 0
}
