package interactive

import (
	"strings"
	"testing"
)

func TestConfirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"yes", "y\n", true},
		{"yes word", "yes\n", true},
		{"uppercase yes", "Y\n", true},
		{"no", "n\n", false},
		{"no word", "no\n", false},
		{"empty defaults to no", "\n", false},
		{"eof defaults to no", "", false},
		{"garbage then yes", "maybe\ny\n", true},
		{"garbage then eof", "maybe\n", false},
		{"surrounding whitespace", "  y  \n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out strings.Builder
			p := New(strings.NewReader(tt.input), &out)
			if got := p.Confirm("Proceed?"); got != tt.want {
				t.Errorf("Confirm = %v, want %v", got, tt.want)
			}
			if !strings.Contains(out.String(), "Proceed? [y/N]") {
				t.Errorf("prompt output %q missing question", out.String())
			}
		})
	}
}

func TestConfirm_ReprintsOnInvalid(t *testing.T) {
	var out strings.Builder
	p := New(strings.NewReader("what\nn\n"), &out)

	if got := p.Confirm("Proceed?"); got {
		t.Error("Confirm = true, want false")
	}
	if !strings.Contains(out.String(), "Invalid choice") {
		t.Errorf("prompt output %q missing retry line", out.String())
	}
}
