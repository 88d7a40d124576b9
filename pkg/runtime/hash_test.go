package runtime

import (
	"math"
	"testing"
)

func mustHash(t *testing.T, v Value) int64 {
	t.Helper()
	h, err := Hash(v)
	if err != nil {
		t.Fatalf("hash(%s): %v", ReprOf(v), err)
	}
	return h
}

func TestHashNumericEquivalence(t *testing.T) {
	if mustHash(t, Int(1)) != mustHash(t, True) || mustHash(t, Int(1)) != mustHash(t, FloatValue{Val: 1}) {
		t.Fatalf("expected 1, True and 1.0 to hash alike")
	}
	if got := mustHash(t, Int(-1)); got != -2 {
		t.Fatalf("expected hash(-1) == -2, got %d", got)
	}
	if mustHash(t, Str("abc")) != mustHash(t, Str("abc")) {
		t.Fatalf("expected str hashing to be stable")
	}
	if mustHash(t, Str("abc")) == mustHash(t, BytesValue{Val: []byte("abc")}) {
		t.Fatalf("expected str and bytes hashes to be tagged apart")
	}
	a := mustHash(t, NewTuple(Int(1), Str("x")))
	b := mustHash(t, NewTuple(Str("x"), Int(1)))
	if a == b {
		t.Fatalf("expected tuple hash to depend on order")
	}
	if _, err := Hash(NewTuple(Int(1), NewList())); !IsException(err, TypeError) {
		t.Fatalf("expected a tuple holding a list to be unhashable, got %v", err)
	}
}

func TestRepr(t *testing.T) {
	d := NewDict()
	mustSet(t, d, Str("q'uote"), NewList(None, True, FloatValue{Val: 2.5}))
	mustSet(t, d, Int(1), NewTuple(Int(1)))
	want := `{"q'uote": [None, True, 2.5], 1: (1,)}`
	if got := ReprOf(d); got != want {
		t.Fatalf("unexpected repr:\nexpected: %s\ngot: %s", want, got)
	}
	self := NewList()
	self.Elements = append(self.Elements, self)
	if got := ReprOf(self); got != "[[...]]" {
		t.Fatalf("expected recursive repr to be elided, got %s", got)
	}
	s, _ := SetFromValues(Int(3))
	if got := ReprOf(s); got != "{3}" {
		t.Fatalf("unexpected set repr %s", got)
	}
	if got := ReprOf(NewSet()); got != "set()" {
		t.Fatalf("unexpected empty set repr %s", got)
	}
}

func TestNaNIsUnequalButFindable(t *testing.T) {
	nan := FloatValue{Val: math.NaN()}
	eq, err := Equal(nan, nan)
	if err != nil || eq {
		t.Fatalf("expected nan != nan, got %v (%v)", eq, err)
	}
	d := NewDict()
	mustSet(t, d, nan, Str("x"))
	v, err := d.GetItem(nan)
	if err != nil || ReprOf(v) != "'x'" {
		t.Fatalf("expected the same nan to find its entry, got %v (%v)", v, err)
	}
	if eq, _ := Equal(Int(2), FloatValue{Val: 2}); !eq {
		t.Fatalf("expected 2 == 2.0")
	}
}
