package operators

import "testing"

func TestLookupRespectsFixity(t *testing.T) {
	if _, ok := Lookup("-", Prefix); !ok {
		t.Error("'-' should be defined as a prefix operator")
	}
	if _, ok := Lookup("-", Infix); !ok {
		t.Error("'-' should be defined as an infix operator")
	}
	if _, ok := Lookup("&&", Prefix); ok {
		t.Error("'&&' should not be defined as a prefix operator")
	}
	if _, ok := Lookup("??", Infix); ok {
		t.Error("'??' is not part of the catalogue")
	}
}

func TestMultiplicativeBindsTighterThanAdditive(t *testing.T) {
	mul, _ := Lookup("*", Infix)
	add, _ := Lookup("+", Infix)
	if mul.Precedence <= add.Precedence {
		t.Errorf("'*' (%d) should bind tighter than '+' (%d)", mul.Precedence, add.Precedence)
	}
}

func TestComparisonBindsTighterThanLogical(t *testing.T) {
	less, _ := Lookup("<", Infix)
	and, _ := Lookup("&&", Infix)
	or, _ := Lookup("||", Infix)
	if less.Precedence <= and.Precedence {
		t.Error("'<' should bind tighter than '&&'")
	}
	if and.Precedence <= or.Precedence {
		t.Error("'&&' should bind tighter than '||'")
	}
}

func TestAssignmentIsRightAssociative(t *testing.T) {
	assign, ok := Lookup("=", Infix)
	if !ok {
		t.Fatal("'=' should be defined as an infix operator")
	}
	if assign.Associativity != AssocRight {
		t.Error("'=' should be right-associative")
	}
}

func TestIsAssignment(t *testing.T) {
	for _, text := range []string{"=", "+=", "-=", "*=", "/=", "%=", "<<=", ">>=", "&=", "|=", "^="} {
		if !IsAssignment(text) {
			t.Errorf("IsAssignment(%q) = false, want true", text)
		}
	}
	for _, text := range []string{"==", "<=", "+", "&&"} {
		if IsAssignment(text) {
			t.Errorf("IsAssignment(%q) = true, want false", text)
		}
	}
}

func TestPrecedenceBefore(t *testing.T) {
	if got := PrecedenceBefore(PrecedenceMultiplicative); got != PrecedenceAdditive {
		t.Errorf("PrecedenceBefore(multiplicative) = %d, want %d", got, PrecedenceAdditive)
	}
	if got := PrecedenceBefore(PrecedenceAssignment); got != 0 {
		t.Errorf("PrecedenceBefore(assignment) = %d, want 0", got)
	}
	if got := PrecedenceBefore(PrecedenceLogicalAnd); got != PrecedenceLogicalOr {
		t.Errorf("PrecedenceBefore(logical and) = %d, want %d", got, PrecedenceLogicalOr)
	}
}
