package annotate

import "testing"

func TestFindClassToken(t *testing.T) {
	t.Parallel()

	cases := []struct {
		line   string
		class  string
		digits string
		ok     bool
	}{
		{"1A1 Alice", "1A", "1", true},
		{"1A12 Bob", "1A", "12", true},
		{"3B Carol", "3B", "", true},
		{"下午 2C05 覆診", "2C", "05", true},
		{"no token here", "", "", false},
		{"", "", "", false},
		{"1F1 Dave", "", "", false}, // F 不在 A-E 内
		{"6E", "6E", "", true},
	}
	for _, c := range cases {
		class, digits, ok := FindClassToken(c.line)
		if ok != c.ok || class != c.class || digits != c.digits {
			t.Fatalf("FindClassToken(%q)=(%q,%q,%v), want (%q,%q,%v)",
				c.line, class, digits, ok, c.class, c.digits, c.ok)
		}
	}
}

func TestIsClassHeader(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"1A", "6E", "12B"} {
		if !IsClassHeader(s) {
			t.Fatalf("IsClassHeader(%q) should be true", s)
		}
	}
	for _, s := range []string{"", "1A1", "A1", "1F", "1A ", "班別"} {
		if IsClassHeader(s) {
			t.Fatalf("IsClassHeader(%q) should be false", s)
		}
	}
}
