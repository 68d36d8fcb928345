package ast

import (
	"reflect"
	"testing"
)

func TestTagSet_CollapsesDuplicates(t *testing.T) {
	s := NewTagSet("a", "b", "a")
	s.Add("b")

	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
	if !s.Has("a") || !s.Has("b") {
		t.Errorf("set %v missing members", s)
	}
	if s.Has("c") {
		t.Error("Has(c) = true, want false")
	}
}

func TestTagSet_Sorted(t *testing.T) {
	s := NewTagSet("woo", "nother", "many")
	got := s.Sorted()
	want := []string{"many", "nother", "woo"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Sorted() = %v, want %v", got, want)
	}
}

func TestTagSet_EqualIgnoresOrder(t *testing.T) {
	if !NewTagSet("x", "y").Equal(NewTagSet("y", "x", "y")) {
		t.Error("sets with the same members should be equal")
	}
	if NewTagSet("x").Equal(NewTagSet("x", "y")) {
		t.Error("sets of different size should not be equal")
	}
}

func TestTagSet_Intersect(t *testing.T) {
	got := NewTagSet("a", "b", "c").Intersect(NewTagSet("c", "a", "z"))
	want := []string{"a", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Intersect() = %v, want %v", got, want)
	}
}

func TestBind_SideSelectsSets(t *testing.T) {
	b := NewBind("thing", Location{Line: 3})
	b.Include(SidePrecondition).Add("req")
	b.Exclude(SidePrecondition).Add("pro")
	b.Include(SideEffect).Add("add")
	b.Exclude(SideEffect).Add("rem")

	if !b.Required.Has("req") || !b.Prohibited.Has("pro") || !b.Adds.Has("add") || !b.Removes.Has("rem") {
		t.Errorf("tags landed in wrong sets: %+v", b)
	}
	if !b.HasPrecondition() || !b.HasEffect() {
		t.Error("HasPrecondition/HasEffect should both be true")
	}
}

type countingVisitor struct {
	rules, binds int
}

func (v *countingVisitor) VisitRuleSet(*RuleSet) error { return nil }
func (v *countingVisitor) VisitRule(*Rule) error       { v.rules++; return nil }
func (v *countingVisitor) VisitBind(*Rule, *Bind) error {
	v.binds++
	return nil
}

func TestWalk(t *testing.T) {
	rs := &RuleSet{Rules: []*Rule{
		{Title: "one", Binds: []*Bind{NewBind("a", Location{}), NewBind("b", Location{})}},
		{Title: "two"},
	}}

	v := &countingVisitor{}
	if err := Walk(rs, v); err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	if v.rules != 2 || v.binds != 2 {
		t.Errorf("visited %d rules, %d binds; want 2, 2", v.rules, v.binds)
	}

	if rs.Find("two") == nil || rs.Find("three") != nil {
		t.Error("Find() returned unexpected result")
	}
	if got := rs.Rules[0].Entities(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Entities() = %v", got)
	}
}
