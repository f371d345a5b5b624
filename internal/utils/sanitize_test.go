package utils

import "testing"

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "Acme Corp", "Acme Corp"},
		{"strips tags", "<b>Acme</b> Corp", "Acme Corp"},
		{"strips script", `<script>alert(1)</script>Acme`, "Acme"},
		{"decodes entities before stripping", "&lt;i&gt;Acme&lt;/i&gt;", "Acme"},
		{"collapses whitespace", "  Acme \n\t Corp  ", "Acme Corp"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeText(tt.in); got != tt.want {
				t.Fatalf("SanitizeText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
