package separation

import "testing"

func TestStemSetAccessors(t *testing.T) {
	set := StemSet{Stems: []Stem{
		{Name: "drums", Present: true},
		{Name: "bass"},
		{Name: "vocals", Present: true},
	}}
	if set.Len() != 3 {
		t.Fatalf("Len() = %d", set.Len())
	}
	if _, ok := set.At(1); ok {
		t.Fatal("expected absent slot to report missing")
	}
	if stem, ok := set.At(2); !ok || stem.Name != "vocals" {
		t.Fatalf("At(2) = %+v %v", stem, ok)
	}
	if _, ok := set.At(7); ok {
		t.Fatal("expected out of range slot to report missing")
	}
	if missing := set.Missing(); len(missing) != 1 || missing[0] != "bass" {
		t.Fatalf("Missing() = %v", missing)
	}
}
