package archive

import (
	"errors"
	"testing"
)

func TestSanitizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"app_data", "app_data"},
		{"my-volume-2", "my-volume-2"},
		{"nested/path/volume", "nested_path_volume"},
		{`win\style\name`, "win_style_name"},
		{"spaces and:colons", "spacesandcolons"},
		{"dots.become.nothing", "dotsbecomenothing"},
	}

	for _, c := range cases {
		got, err := SanitizeName(c.in)
		if err != nil {
			t.Fatalf("SanitizeName(%q) returned error: %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSanitizeNameDeterministic(t *testing.T) {
	first, err := SanitizeName("some/volume!name")
	if err != nil {
		t.Fatal(err)
	}
	second, err := SanitizeName("some/volume!name")
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("sanitization not deterministic: %q vs %q", first, second)
	}
}

func TestSanitizeNameEmptyResult(t *testing.T) {
	for _, in := range []string{"", ".", "...", "!!!", ":::", "/", "///", "_-_"} {
		if _, err := SanitizeName(in); !errors.Is(err, ErrInvalidVolumeName) {
			t.Errorf("SanitizeName(%q) error = %v, want ErrInvalidVolumeName", in, err)
		}
	}
}
