package engine

import (
	"errors"
	"testing"
)

func TestTokenizeEnv(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kinds []Kind
		names []string
	}{
		{name: "braced", input: "{%FOO%}", kinds: []Kind{KindEnv}, names: []string{"FOO"}},
		{name: "bare", input: "a-%FOO%-b", kinds: []Kind{KindLiteral, KindEnv, KindLiteral}, names: []string{"", "FOO", ""}},
		{name: "two bare", input: "%A%%B%", kinds: []Kind{KindEnv, KindEnv}, names: []string{"A", "B"}},
		{name: "percent text", input: "50% off", kinds: []Kind{KindLiteral}},
		{name: "invalid name", input: "%1A%", kinds: []Kind{KindLiteral}},
		{name: "escape kept", input: "{!%FOO%}", kinds: []Kind{KindLiteral, KindEnv, KindLiteral}, names: []string{"", "FOO", ""}},
		{name: "braces around more than env", input: "{A.%F%}", kinds: []Kind{KindLiteral, KindEnv, KindLiteral}, names: []string{"", "F", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := TokenizeEnv(tt.input)
			if len(tokens) != len(tt.kinds) {
				t.Fatalf("expected %d tokens, got %d: %+v", len(tt.kinds), len(tokens), tokens)
			}
			for i, tok := range tokens {
				if tok.Kind != tt.kinds[i] {
					t.Errorf("token %d: expected %s, got %s", i, tt.kinds[i], tok.Kind)
				}
				if tok.Kind == KindEnv && tok.Name != tt.names[i] {
					t.Errorf("token %d: expected name %s, got %s", i, tt.names[i], tok.Name)
				}
			}
		})
	}
}

func TestTokenizeEnv_BracedRaw(t *testing.T) {
	tokens := TokenizeEnv("x{%HOME%}y")
	if len(tokens) != 3 {
		t.Fatalf("expected 3 tokens, got %d", len(tokens))
	}
	if tokens[1].Raw != "{%HOME%}" {
		t.Errorf("expected raw {%%HOME%%}, got %q", tokens[1].Raw)
	}
	if tokens[0].Text != "x" || tokens[2].Text != "y" {
		t.Errorf("unexpected literals: %q %q", tokens[0].Text, tokens[2].Text)
	}
}

func TestTokenizeRefs(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Directive
	}{
		{
			name:  "scalar",
			input: "{A.x}",
			want:  Directive{Kind: KindResult, ResultsID: "A", Field: "x"},
		},
		{
			name:  "indexed",
			input: "{A.items[1].v}",
			want:  Directive{Kind: KindIndexed, ResultsID: "A", Field: "items", Index: 1, Sub: "v"},
		},
		{
			name:  "keyed",
			input: "{A.items[$k$b].v}",
			want:  Directive{Kind: KindKeyed, ResultsID: "A", Field: "items", Key: "k", Value: "b", Sub: "v"},
		},
		{
			name:  "keyed wins over index",
			input: "{A.items[1$k$b].v}",
			want:  Directive{Kind: KindKeyed, ResultsID: "A", Field: "items", Key: "k", Value: "b", Sub: "v"},
		},
		{
			name:  "keyed empty value",
			input: "{A.items[$k$].v}",
			want:  Directive{Kind: KindKeyed, ResultsID: "A", Field: "items", Key: "k", Value: "", Sub: "v"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := TokenizeRefs(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(tokens) != 1 {
				t.Fatalf("expected 1 token, got %d", len(tokens))
			}
			got := tokens[0]
			if got.Kind != tt.want.Kind || got.ResultsID != tt.want.ResultsID || got.Field != tt.want.Field ||
				got.Index != tt.want.Index || got.Key != tt.want.Key || got.Value != tt.want.Value || got.Sub != tt.want.Sub {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
			if got.Raw != tt.input {
				t.Errorf("expected raw %q, got %q", tt.input, got.Raw)
			}
		})
	}
}

func TestTokenizeRefs_LiteralsAndEscapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		text  string
	}{
		{name: "escape", input: "{!literal}", text: "{literal}"},
		{name: "unterminated", input: "a{b", text: "a{b"},
		{name: "closing only", input: "a}b", text: "a}b"},
		{name: "escaped json", input: `{!"a": 1}`, text: `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := TokenizeRefs(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var text string
			for _, tok := range tokens {
				if tok.Kind != KindLiteral {
					t.Fatalf("unexpected directive %+v", tok)
				}
				text += tok.Text
			}
			if text != tt.text {
				t.Errorf("expected %q, got %q", tt.text, text)
			}
		})
	}
}

func TestTokenizeRefs_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
		err   error
	}{
		{name: "empty", input: "{}", err: ErrMalformedDirective},
		{name: "no separator", input: "{abc}", err: ErrMalformedDirective},
		{name: "two separators", input: "{a.b.c}", err: ErrMalformedDirective},
		{name: "json", input: `{"a": 1}`, err: ErrMalformedDirective},
		{name: "unterminated bracket", input: "{A.items[1.v}", err: ErrMalformedDirective},
		{name: "missing sub", input: "{A.items[1]}", err: ErrMalformedDirective},
		{name: "nested sub", input: "{A.items[1].v.w}", err: ErrMalformedDirective},
		{name: "bad keyed", input: "{A.items[$k].v}", err: ErrMalformedDirective},
		{name: "bad env", input: "{%a b%}", err: ErrMalformedDirective},
		{name: "non numeric index", input: "{A.items[x].v}", err: ErrInvalidIndex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := TokenizeRefs(tt.input)
			if !errors.Is(err, tt.err) {
				t.Fatalf("expected %v, got %v", tt.err, err)
			}
			var dErr *DirectiveError
			if !errors.As(err, &dErr) {
				t.Fatalf("expected DirectiveError, got %T", err)
			}
			if dErr.Raw == "" {
				t.Error("raw should be set")
			}
		})
	}
}

func TestParsePayload(t *testing.T) {
	tests := []struct {
		name  string
		input string
		ok    bool
		paths []string
	}{
		{name: "single", input: "<fn.zip>", ok: true, paths: []string{"fn.zip"}},
		{name: "many", input: "<a.py | b.py|lib>", ok: true, paths: []string{"a.py", "b.py", "lib"}},
		{name: "plain", input: "fn.zip", ok: false},
		{name: "html", input: "<b>bold</b>", ok: false},
		{name: "escaped", input: "<!fn.zip>", ok: false},
		{name: "embedded", input: "x <fn.zip>", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok, err := ParsePayload(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if !ok {
				return
			}
			if d.Kind != KindPayload {
				t.Errorf("expected payload kind, got %s", d.Kind)
			}
			if len(d.Paths) != len(tt.paths) {
				t.Fatalf("expected %v, got %v", tt.paths, d.Paths)
			}
			for i := range d.Paths {
				if d.Paths[i] != tt.paths[i] {
					t.Errorf("path %d: expected %s, got %s", i, tt.paths[i], d.Paths[i])
				}
			}
		})
	}
}

func TestParsePayload_EmptyPath(t *testing.T) {
	for _, input := range []string{"<>", "<a.py|>", "<|b.py>"} {
		_, _, err := ParsePayload(input)
		if !errors.Is(err, ErrEmptyPayload) {
			t.Errorf("%s: expected ErrEmptyPayload, got %v", input, err)
		}
	}
}

func TestScan(t *testing.T) {
	dirs, err := Scan("{%REGION%}-{A.x}-%USER%-{!lit}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var kinds []Kind
	for _, d := range dirs {
		kinds = append(kinds, d.Kind)
	}
	want := []Kind{KindEnv, KindResult, KindEnv}
	if len(kinds) != len(want) {
		t.Fatalf("expected %v, got %v", want, kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("directive %d: expected %s, got %s", i, want[i], kinds[i])
		}
	}
}
