package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// Маркеры языка директив.
const (
	markStart    = '{'
	markEnd      = '}'
	markEscape   = '!'
	markEnv      = '%'
	markSep      = "."
	markArrStart = '['
	markArrEnd   = ']'
	markKey      = '$'

	payloadStart = '<'
	payloadEnd   = '>'
	payloadSep   = "|"
)

// Kind — вид директивы.
type Kind int

const (
	// KindLiteral — обычный текст без подстановки.
	KindLiteral Kind = iota

	// KindEnv — переменная окружения: {%NAME%} или %NAME%.
	KindEnv

	// KindResult — свойство результата: {ID.FIELD}.
	KindResult

	// KindIndexed — свойство элемента массива по индексу: {ID.FIELD[N].SUB}.
	KindIndexed

	// KindKeyed — свойство элемента массива по ключу/значению: {ID.FIELD[$KEY$VALUE].SUB}.
	KindKeyed

	// KindPayload — бинарная подстановка файлов: <a.zip> или <a.py|b.py>.
	KindPayload
)

// String возвращает имя вида директивы.
func (k Kind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindEnv:
		return "env"
	case KindResult:
		return "result"
	case KindIndexed:
		return "indexed"
	case KindKeyed:
		return "keyed"
	case KindPayload:
		return "payload"
	default:
		return "unknown"
	}
}

// Directive — разобранный фрагмент строкового параметра.
//
// Какие поля заполнены, зависит от Kind:
//   - KindLiteral: Text
//   - KindEnv: Name
//   - KindResult: ResultsID, Field
//   - KindIndexed: ResultsID, Field, Index, Sub
//   - KindKeyed: ResultsID, Field, Key, Value, Sub
//   - KindPayload: Paths
type Directive struct {
	Kind Kind
	Raw  string

	Text string
	Name string

	ResultsID string
	Field     string
	Index     int
	Key       string
	Value     string
	Sub       string

	Paths []string
}

// IsReference возвращает true для директив, ссылающихся на хранилище результатов.
func (d Directive) IsReference() bool {
	return d.Kind == KindResult || d.Kind == KindIndexed || d.Kind == KindKeyed
}

func literal(text string) Directive {
	return Directive{Kind: KindLiteral, Raw: text, Text: text}
}

// tokenizer накапливает литеральный текст между директивами.
type tokenizer struct {
	tokens []Directive
	lit    strings.Builder
}

func (t *tokenizer) text(s string) {
	t.lit.WriteString(s)
}

func (t *tokenizer) char(c byte) {
	t.lit.WriteByte(c)
}

func (t *tokenizer) emit(d Directive) {
	t.flush()
	t.tokens = append(t.tokens, d)
}

func (t *tokenizer) flush() {
	if t.lit.Len() > 0 {
		t.tokens = append(t.tokens, literal(t.lit.String()))
		t.lit.Reset()
	}
}

func (t *tokenizer) result() []Directive {
	t.flush()
	return t.tokens
}

// TokenizeEnv разбивает строку на литералы и ссылки на переменные окружения.
//
// {%NAME%} — фигурные скобки поглощаются вместе с маркерами;
// %NAME% без скобок подставляется на месте. Экранированный старт {!
// проходит без изменений: его обрабатывает TokenizeRefs.
// Всё, что не похоже на ссылку, остаётся литералом.
func TokenizeEnv(s string) []Directive {
	var t tokenizer

	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == markStart && i+1 < len(s) && s[i+1] == markEscape:
			t.text(s[i : i+2])
			i += 2

		case c == markStart:
			if name, n, ok := bracedEnv(s[i:]); ok {
				t.emit(Directive{Kind: KindEnv, Raw: s[i : i+n], Name: name})
				i += n
				continue
			}
			t.char(c)
			i++

		case c == markEnv:
			if name, n, ok := bareEnv(s[i:]); ok {
				t.emit(Directive{Kind: KindEnv, Raw: s[i : i+n], Name: name})
				i += n
				continue
			}
			t.char(c)
			i++

		default:
			t.char(c)
			i++
		}
	}

	return t.result()
}

// bracedEnv распознаёт {%NAME%} в начале s.
func bracedEnv(s string) (string, int, bool) {
	end := strings.IndexByte(s, markEnd)
	if end < 0 {
		return "", 0, false
	}
	body := s[1:end]
	if len(body) < 3 || body[0] != markEnv || body[len(body)-1] != markEnv {
		return "", 0, false
	}
	name := body[1 : len(body)-1]
	if !validEnvName(name) {
		return "", 0, false
	}
	return name, end + 1, true
}

// bareEnv распознаёт %NAME% в начале s.
func bareEnv(s string) (string, int, bool) {
	end := strings.IndexByte(s[1:], markEnv)
	if end < 1 {
		return "", 0, false
	}
	name := s[1 : end+1]
	if !validEnvName(name) {
		return "", 0, false
	}
	return name, end + 2, true
}

func validEnvName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '_', c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// TokenizeRefs разбивает строку на литералы и ссылки на результаты.
//
// Сканирование слева направо, до первой } после каждой {.
// {! выводит литеральную { и продолжает сканирование за маркером.
// Незакрытая { остаётся литералом. Всё, что между { и } не является
// ссылкой, возвращается как DirectiveError с ErrMalformedDirective.
func TokenizeRefs(s string) ([]Directive, error) {
	var t tokenizer

	for i := 0; i < len(s); {
		c := s[i]
		if c != markStart {
			t.char(c)
			i++
			continue
		}

		if i+1 < len(s) && s[i+1] == markEscape {
			t.char(markStart)
			i += 2
			continue
		}

		end := strings.IndexByte(s[i+1:], markEnd)
		if end < 0 {
			t.text(s[i:])
			break
		}

		raw := s[i : i+end+2]
		d, err := parseRef(raw, s[i+1:i+1+end])
		if err != nil {
			return nil, err
		}
		t.emit(d)
		i += len(raw)
	}

	return t.result(), nil
}

// parseRef разбирает тело директивы между { и }.
func parseRef(raw, body string) (Directive, error) {
	if body == "" {
		return Directive{}, malformed(raw, "empty directive")
	}
	if body[0] == markEnv {
		return Directive{}, malformed(raw, "environment reference must be %NAME%")
	}

	lb := strings.IndexByte(body, markArrStart)
	if lb < 0 {
		id, field, ok := splitRef(body)
		if !ok {
			return Directive{}, malformed(raw, "expected ID.FIELD")
		}
		return Directive{Kind: KindResult, Raw: raw, ResultsID: id, Field: field}, nil
	}

	id, field, ok := splitRef(body[:lb])
	if !ok {
		return Directive{}, malformed(raw, "expected ID.FIELD before [")
	}

	rb := strings.IndexByte(body[lb:], markArrEnd)
	if rb < 0 {
		return Directive{}, malformed(raw, "unterminated [")
	}
	rb += lb

	selector := body[lb+1 : rb]
	rest := body[rb+1:]
	if len(rest) < 2 || !strings.HasPrefix(rest, markSep) {
		return Directive{}, malformed(raw, "expected .SUB after ]")
	}
	sub := rest[1:]
	if strings.ContainsAny(sub, ".[]") {
		return Directive{}, malformed(raw, "SUB must be a single property name")
	}

	d := Directive{Raw: raw, ResultsID: id, Field: field, Sub: sub}

	// Маркер ключа имеет приоритет над индексом.
	if k := strings.IndexByte(selector, markKey); k >= 0 {
		kv := selector[k+1:]
		sep := strings.IndexByte(kv, markKey)
		if sep <= 0 {
			return Directive{}, malformed(raw, "expected [$KEY$VALUE]")
		}
		d.Kind = KindKeyed
		d.Key = kv[:sep]
		d.Value = kv[sep+1:]
		return d, nil
	}

	n, err := strconv.Atoi(selector)
	if err != nil {
		return Directive{}, &DirectiveError{
			Raw:    raw,
			Reason: fmt.Sprintf("index %q is not a base-10 integer", selector),
			Err:    ErrInvalidIndex,
		}
	}
	d.Kind = KindIndexed
	d.Index = n
	return d, nil
}

// splitRef разбивает "ID.FIELD" ровно по одному разделителю.
func splitRef(s string) (string, string, bool) {
	parts := strings.Split(s, markSep)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// ParsePayload проверяет, является ли строка целиком бинарной подстановкой <...>.
//
// Строка с вложенными < или > (например, HTML) подстановкой не считается.
// <! в начале экранирует подстановку: возвращается false, а вызывающий
// убирает маркер.
func ParsePayload(s string) (Directive, bool, error) {
	if len(s) < 2 || s[0] != payloadStart || s[len(s)-1] != payloadEnd {
		return Directive{}, false, nil
	}
	inner := s[1 : len(s)-1]
	if strings.HasPrefix(inner, string(markEscape)) {
		return Directive{}, false, nil
	}
	if strings.ContainsAny(inner, "<>") {
		return Directive{}, false, nil
	}

	parts := strings.Split(inner, payloadSep)
	paths := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return Directive{}, false, fmt.Errorf("%w: %s", ErrEmptyPayload, s)
		}
		paths = append(paths, p)
	}

	return Directive{Kind: KindPayload, Raw: s, Paths: paths}, true, nil
}

// isEscapedPayload проверяет, что шаблон имеет вид <!...>.
func isEscapedPayload(s string) bool {
	return len(s) >= 3 && s[0] == payloadStart && s[1] == markEscape && s[len(s)-1] == payloadEnd
}

// Scan возвращает все директивы строки без их разрешения.
// Используется статической проверкой файла команд.
func Scan(s string) ([]Directive, error) {
	var out []Directive
	for _, tok := range TokenizeEnv(s) {
		if tok.Kind == KindEnv {
			out = append(out, tok)
			continue
		}
		refs, err := TokenizeRefs(tok.Text)
		if err != nil {
			return nil, err
		}
		for _, ref := range refs {
			if ref.Kind != KindLiteral {
				out = append(out, ref)
			}
		}
	}

	payload, ok, err := ParsePayload(s)
	if err != nil {
		return nil, err
	}
	if ok {
		out = append(out, payload)
	}
	return out, nil
}
