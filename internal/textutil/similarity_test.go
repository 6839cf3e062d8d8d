package textutil

import "testing"

func TestSimilarity_IdenticalTitles(t *testing.T) {
	sim := Similarity("road bike 21in", "road bike 21in")
	if sim != 1.0 {
		t.Errorf("Expected similarity 1.0 for identical titles, got %f", sim)
	}
}

func TestSimilarity_NearIdenticalTitles(t *testing.T) {
	// "21in" vs "21 inch": "21" is dropped (len <= 2), "inch" does not
	// contain "21in" nor vice versa, so 2 of 3 qualifying tokens match.
	sim := Similarity("road bike 21in", "road bike 21 inch")
	if sim < 0.6 || sim > 0.7 {
		t.Errorf("Expected similarity ~0.67, got %f", sim)
	}
}

func TestSimilarity_SubstringContainment(t *testing.T) {
	// "bike" is a substring of "bikes", so it must count as a match.
	sim := Similarity("mountain bike", "mountain bikes")
	if sim != 1.0 {
		t.Errorf("Expected similarity 1.0 with substring containment, got %f", sim)
	}
}

func TestSimilarity_Asymmetric(t *testing.T) {
	a := "vintage oak desk with drawers"
	b := "vintage desk"

	simAB := Similarity(a, b)
	simBA := Similarity(b, a)

	if simAB == simBA {
		t.Errorf("Expected asymmetric similarity, got %f both ways", simAB)
	}
	if simBA != 1.0 {
		t.Errorf("Expected sim(b, a) = 1.0, got %f", simBA)
	}
}

func TestSimilarity_NoQualifyingTokens(t *testing.T) {
	// All tokens length <= 2: denominator floors at 1, no matches.
	sim := Similarity("a b c", "anything else")
	if sim != 0.0 {
		t.Errorf("Expected similarity 0.0, got %f", sim)
	}
}

func TestSimilarity_Disjoint(t *testing.T) {
	sim := Similarity("road bike", "leather sofa")
	if sim != 0.0 {
		t.Errorf("Expected similarity 0.0 for disjoint titles, got %f", sim)
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Road Bike, 21in - LIKE NEW!!", "road bike 21in like new"},
		{"  multiple   spaces\there ", "multiple spaces here"},
		{"$150 (obo)", "150 obo"},
		{"", ""},
	}

	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
