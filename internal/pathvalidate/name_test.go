package pathvalidate

import "testing"

func TestBinNameCanonicalization(t *testing.T) {
	cases := map[string]string{
		"/usr/bin/wget":              "wget",
		"@postlight/parser@^2.2.3":   "@postlight/parser",
		"yt-dlp==2024.05.09":         "yt-dlp",
		"wget":                       "wget",
		"@scope/pkg":                 "@scope/pkg",
		"/opt/homebrew/bin/ffmpeg>4": "ffmpeg",
	}
	for in, want := range cases {
		got, err := BinName(in)
		if err != nil {
			t.Errorf("BinName(%q) unexpected error: %v", in, err)
			continue
		}
		if string(got) != want {
			t.Errorf("BinName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBinNameRejectsInvalid(t *testing.T) {
	for _, in := range []string{"", "1abc", "-abc", "x" + string(make([]byte, 70))} {
		if _, err := BinName(in); err == nil {
			t.Errorf("BinName(%q) expected error", in)
		}
	}
}
