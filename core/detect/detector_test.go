package detect

import (
	"testing"

	"github.com/gaurav-prasanna/texpipe/core"
)

func TestDetectIndicators(t *testing.T) {
	for _, ind := range Indicators() {
		text := "x = " + ind + "{a}"
		if got := Detect(text); got != core.Display {
			t.Errorf("Detect(%q) = %s, want display", text, got)
		}
	}
}

func TestDetectEnvironmentNames(t *testing.T) {
	tests := []struct {
		in   string
		want core.MathMode
	}{
		{`\begin{pmatrix} a & b \end{pmatrix}`, core.Display},
		{`\begin{align*} x &= 1 \end{align*}`, core.Display},
		{`\begin{cases} 1 & x>0 \end{cases}`, core.Display},
		{`\begin{itemize} x \end{itemize}`, core.Inline},
		{`\Frac{1}{2}`, core.Inline},
		{`\fraction`, core.Display},
		{`x^2 + 1`, core.Inline},
		{"", core.Inline},
	}
	for _, tt := range tests {
		if got := Detect(tt.in); got != tt.want {
			t.Errorf("Detect(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestDetectPreWrapped(t *testing.T) {
	for _, in := range []string{`$x$`, `$$\frac{1}{2}$$`, `\(y\)`, `\[\sum_i i\]`, `$a$ and $b$`} {
		if got := Detect(in); got != core.PreWrapped {
			t.Errorf("Detect(%q) = %s, want pre-wrapped", in, got)
		}
	}
}

func TestDetectDeterministic(t *testing.T) {
	in := `\int_0^1 x\,dx`
	first := Detect(in)
	for i := 0; i < 10; i++ {
		if got := Detect(in); got != first {
			t.Fatalf("run %d: got %s, want %s", i, got, first)
		}
	}
}

func TestIndicatorsReturnsCopy(t *testing.T) {
	a := Indicators()
	a[0] = "mutated"
	if Indicators()[0] == "mutated" {
		t.Fatal("Indicators exposed internal slice")
	}
	if len(a) != 21 {
		t.Fatalf("expected 21 indicators, got %d", len(a))
	}
}
