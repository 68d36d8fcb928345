package ast

// Visitor provides an interface for traversing a RuleSet.
// Implement this interface to perform operations on nodes
// (linting, statistics, export, etc.).
type Visitor interface {
	VisitRuleSet(*RuleSet) error
	VisitRule(*Rule) error
	VisitBind(*Rule, *Bind) error
}

// Walk traverses the rule set in source order and calls the visitor
// for each node. It returns the first error encountered.
func Walk(rs *RuleSet, visitor Visitor) error {
	if err := visitor.VisitRuleSet(rs); err != nil {
		return err
	}

	for _, rule := range rs.Rules {
		if err := visitor.VisitRule(rule); err != nil {
			return err
		}

		for _, bind := range rule.Binds {
			if err := visitor.VisitBind(rule, bind); err != nil {
				return err
			}
		}
	}

	return nil
}
