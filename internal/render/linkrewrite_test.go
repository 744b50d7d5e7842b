package render

import "testing"

func TestRewriteHref(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"foo/", "foo/"},
		{"foo", "foo/"},
		{"foo.md", "foo/"},
		{"foo.md/", "foo/"},
		{"dir/foo.md", "dir/foo/"},
		{"../a.md?x=1", "../a/?x=1"},
		{"foo.md#sec", "foo/#sec"},
		{"/abs/page.md", "/abs/page/"},
		{"with%20space.md", "with%20space/"},
		{"", "/"},
		{"https://example.com/x.md", "https://example.com/x.md"},
		{"//cdn.example.com/x.md", "//cdn.example.com/x.md"},
		{"mailto:someone@example.com", "mailto:someone@example.com"},
		{"#top", "#top"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			if got := RewriteHref(tc.in); got != tc.want {
				t.Errorf("RewriteHref(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestRewriteHref_Idempotent(t *testing.T) {
	for _, in := range []string{"foo.md", "a/b.md/", "../x.md#y", "https://h/x.md", "#frag", "with%20space.md"} {
		once := RewriteHref(in)
		if twice := RewriteHref(once); twice != once {
			t.Errorf("RewriteHref(%q): %q then %q", in, once, twice)
		}
	}
}
