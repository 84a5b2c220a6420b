package epg

import "testing"

func TestBuildIndexProgressivePrefixes(t *testing.T) {
	line := "ABC Sports 2 HD.uk"
	ix := BuildIndex([]string{line})

	wantKeys := []string{
		"abc sports 2 hd", "abcsports2hd",
		"abc sports 2", "abcsports2",
		"abc sports", "abcsports",
		"abc",
		"abc sports 2 hd.uk", "abcsports2hd.uk",
		"abc sports 2.uk", "abcsports2.uk",
		"abc sports.uk", "abcsports.uk",
		"abc.uk",
	}
	for _, key := range wantKeys {
		ids := ix.Lookup(key)
		if len(ids) != 1 || ids[0] != line {
			t.Errorf("Lookup(%q) = %v, want [%q]", key, ids, line)
		}
	}
}

func TestBuildIndexSafetyNetKey(t *testing.T) {
	line := "Sky-News.Intl.uk"
	ix := BuildIndex([]string{line})
	if ids := ix.Lookup("sky-news.intl.uk"); len(ids) != 1 || ids[0] != line {
		t.Errorf("safety-net Lookup = %v, want [%q]", ids, line)
	}
}

func TestBuildIndexNoCountry(t *testing.T) {
	ix := BuildIndex([]string{"foxsports"})
	if ids := ix.Lookup("foxsports"); len(ids) != 1 {
		t.Fatalf("Lookup(foxsports) = %v", ids)
	}
	if ids := ix.Lookup("foxsports.us"); ids != nil {
		t.Errorf("unexpected country key: %v", ids)
	}
}

func TestBuildIndexSkipsBlankAndComments(t *testing.T) {
	ix := BuildIndex([]string{"", "  ", "# a comment", "BBC One.uk"})
	if ix.Len() == 0 {
		t.Fatal("index is empty")
	}
	for _, key := range ix.Keys() {
		ids := ix.Lookup(key)
		for _, id := range ids {
			if id != "BBC One.uk" {
				t.Errorf("key %q resolves to %q", key, id)
			}
		}
	}
}

func TestBuildIndexAmbiguousKeyInsertionOrder(t *testing.T) {
	ix := BuildIndex([]string{"X.uk", "X.de"})
	ids := ix.Lookup("x")
	if len(ids) != 2 || ids[0] != "X.uk" || ids[1] != "X.de" {
		t.Errorf("Lookup(x) = %v, want [X.uk X.de]", ids)
	}
}

func TestBuildIndexNilTolerant(t *testing.T) {
	var ix *AliasIndex
	if ix.Len() != 0 || ix.Lookup("anything") != nil || ix.Keys() != nil {
		t.Error("nil index should behave as empty")
	}
}
