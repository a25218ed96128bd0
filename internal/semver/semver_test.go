package semver

import "testing"

func TestParseTotalAndIdempotent(t *testing.T) {
	inputs := []string{
		"", "no version here", "1.2.3", "v1.2.3", "wget 1.21.3",
		"yt-dlp 2024.05.09", "Google Chrome 124.0.6367.208+beta_234. 234.234.123\n123.456.324",
		"@#$%^&*()", "...", "v", "1.", ".1",
	}
	for _, s := range inputs {
		v, ok := Parse(s)
		if !ok {
			continue
		}
		v2, ok2 := Parse(v.String())
		if !ok2 || v2 != (SemVer{Major: v.Major, Minor: v.Minor, Patch: v.Patch, FullText: v.String()}) {
			t.Errorf("Parse(%q) = %+v not idempotent: reparse = %+v ok=%v", s, v, v2, ok2)
		}
	}
}

func TestParseEmptyAndUnparseable(t *testing.T) {
	for _, s := range []string{"", "no version at all here friend"} {
		if _, ok := Parse(s); ok {
			t.Errorf("Parse(%q) expected not ok", s)
		}
	}
}

func TestOrdering(t *testing.T) {
	mustParse := func(s string) SemVer {
		v, ok := Parse(s)
		if !ok {
			t.Fatalf("Parse(%q) failed", s)
		}
		return v
	}
	a := mustParse("1.2.3")
	b := mustParse("1.2.4")
	c := mustParse("1.10.0")
	d := mustParse("2.0.0")

	if !(Less(a, b) && Less(b, c) && Less(c, d)) {
		t.Fatalf("expected strict ordering a<b<c<d, got %+v %+v %+v %+v", a, b, c, d)
	}
}

func TestChromeBanner(t *testing.T) {
	const banner = "Google Chrome 124.0.6367.208+beta_234. 234.234.123\n123.456.324"
	v, ok := Parse(banner)
	if !ok {
		t.Fatal("expected ok")
	}
	want := SemVer{Major: 124, Minor: 0, Patch: 6367, FullText: "Google Chrome 124.0.6367.208+beta_234. 234.234.123"}
	if v != want {
		t.Errorf("got %+v, want %+v", v, want)
	}
}

func TestVPrefixStripped(t *testing.T) {
	v, ok := Parse("v3.0.1")
	if !ok || v.Major != 3 || v.Minor != 0 || v.Patch != 1 {
		t.Errorf("got %+v ok=%v", v, ok)
	}
}

func TestBashVersionBanner(t *testing.T) {
	v, ok := Parse("GNU bash, version 5.1.16(1)-release (x86_64-pc-linux-gnu)")
	if !ok {
		t.Fatal("expected ok")
	}
	// "GNU", "bash," and "version" carry no digits; the fourth token,
	// "5.1.16(1)-release", is inside the five-token budget and its first
	// three digit chunks give 5.1.16.
	if v.Major != 5 || v.Minor != 1 || v.Patch != 16 {
		t.Errorf("got %+v, want 5.1.16", v)
	}
}

func TestUnknownSentinel(t *testing.T) {
	if !Unknown.IsUnknown() {
		t.Fatal("Unknown should report IsUnknown")
	}
	v, _ := Parse("1.2.3")
	if v.IsUnknown() {
		t.Fatal("1.2.3 should not be unknown")
	}
}
