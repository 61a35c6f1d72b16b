package urlutil

import "testing"

func TestValidate(t *testing.T) {
	valid := []string{
		"http://example.com",
		"https://example.com/path",
	}
	for _, u := range valid {
		if err := ValidateURL(u); err != nil {
			t.Fatalf("expected valid, got error: %v", err)
		}
	}

	invalid := []string{"ftp://example.com", "//example.com", "http:///", "example.com"}
	for _, u := range invalid {
		if err := ValidateURL(u); err == nil {
			t.Fatalf("expected invalid for %s", u)
		}
	}
}

func TestValidateAbsolute(t *testing.T) {
	if err := ValidateAbsolute("ftp://example.com/list"); err != nil {
		t.Errorf("expected any scheme to be accepted, got %v", err)
	}
	for _, u := range []string{"/catalog", "example.com", "https://"} {
		if err := ValidateAbsolute(u); err == nil {
			t.Errorf("expected invalid for %s", u)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"  shop.example.com/list ": "https://shop.example.com/list",
		"//cdn.example.com":        "https://cdn.example.com",
		"http://a.example":         "http://a.example",
		"":                         "",
	}
	for in, want := range tests {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}
