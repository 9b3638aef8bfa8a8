package capability

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/smithy-go"
)

type fakeInput struct {
	Name *string
	Size int32
	Data []byte
}

type fakeOutput struct {
	ID             *string
	Count          int64
	ResultMetadata struct{ RequestID string }
}

func TestSDKCall(t *testing.T) {
	var got *fakeInput
	id := "obj-1"
	call := func(ctx context.Context, in *fakeInput, opts ...func(*int)) (*fakeOutput, error) {
		got = in
		return &fakeOutput{ID: &id, Count: 9007199254740993}, nil
	}

	fn := SDKCall("Fake", call)
	result, err := fn(context.Background(), map[string]any{
		"Name": "demo",
		"Size": json.Number("12"),
		"Data": []byte{0x50, 0x4b, 0x03, 0x04},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Name == nil || *got.Name != "demo" || got.Size != 12 {
		t.Errorf("unexpected input: %+v", got)
	}
	if string(got.Data) != "PK\x03\x04" {
		t.Errorf("binary payload should arrive unchanged, got %q", got.Data)
	}

	if result["ID"] != "obj-1" {
		t.Errorf("unexpected ID: %v", result["ID"])
	}
	if result["Count"] != json.Number("9007199254740993") {
		t.Errorf("number should be preserved, got %v", result["Count"])
	}
	if _, ok := result["ResultMetadata"]; ok {
		t.Error("ResultMetadata should be dropped")
	}
}

func TestSDKCall_InvalidParams(t *testing.T) {
	call := func(ctx context.Context, in *fakeInput, opts ...func(*int)) (*fakeOutput, error) {
		t.Fatal("call should not happen")
		return nil, nil
	}

	_, err := SDKCall("Fake", call)(context.Background(), map[string]any{"Size": "not a number"})
	if !errors.Is(err, ErrInvalidParams) {
		t.Fatalf("expected ErrInvalidParams, got %v", err)
	}
}

func TestSDKCall_APIError(t *testing.T) {
	call := func(ctx context.Context, in *fakeInput, opts ...func(*int)) (*fakeOutput, error) {
		return nil, &smithy.OperationError{
			ServiceID:     "S3",
			OperationName: "GetObject",
			Err:           &smithy.GenericAPIError{Code: "NoSuchKey", Message: "gone"},
		}
	}

	_, err := SDKCall("S3", call)(context.Background(), nil)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.Service != "S3" || apiErr.Operation != "GetObject" || apiErr.Code != "NoSuchKey" {
		t.Errorf("unexpected api error: %+v", apiErr)
	}
	if apiErr.Error() != "S3 GetObject: NoSuchKey: gone" {
		t.Errorf("unexpected message: %s", apiErr.Error())
	}
}

func TestSDKCall_PlainError(t *testing.T) {
	boom := errors.New("boom")
	call := func(ctx context.Context, in *fakeInput, opts ...func(*int)) (*fakeOutput, error) {
		return nil, boom
	}

	_, err := SDKCall("Fake", call)(context.Background(), nil)
	if !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}

func TestParamHelpers(t *testing.T) {
	params := map[string]any{
		"s":       "text",
		"num":     json.Number("42"),
		"int":     7,
		"int64":   int64(8),
		"float":   9.0,
		"numstr":  "10",
		"bool":    true,
		"boolstr": "false",
		"map":     map[string]any{"a": "1", "b": json.Number("2"), "c": true},
		"list":    []string{"x", "y"},
		"bytes":   []byte("raw"),
		"obj":     map[string]any{"k": "v"},
	}

	if String(params, "s") != "text" || String(params, "num") != "42" || String(params, "missing") != "" {
		t.Error("String mismatch")
	}
	for key, want := range map[string]int{"num": 42, "int": 7, "int64": 8, "float": 9, "numstr": 10, "s": 0} {
		if got := Int(params, key); got != want {
			t.Errorf("Int(%s) = %d, want %d", key, got, want)
		}
	}
	if !Bool(params, "bool", false) || Bool(params, "boolstr", true) || !Bool(params, "missing", true) {
		t.Error("Bool mismatch")
	}

	m := StringMap(params, "map")
	if len(m) != 2 || m["a"] != "1" || m["b"] != "2" {
		t.Errorf("unexpected StringMap: %v", m)
	}
	if l := List(params, "list"); len(l) != 2 || l[1] != "y" {
		t.Errorf("unexpected List: %v", l)
	}

	b, ok, err := Bytes(params, "bytes")
	if err != nil || !ok || string(b) != "raw" {
		t.Errorf("unexpected Bytes: %q %v %v", b, ok, err)
	}
	b, ok, err = Bytes(params, "obj")
	if err != nil || !ok || string(b) != `{"k":"v"}` {
		t.Errorf("object should be JSON, got %q %v %v", b, ok, err)
	}
	if _, ok, _ := Bytes(params, "missing"); ok {
		t.Error("missing body should not be set")
	}
}

func TestEncode(t *testing.T) {
	out, err := Encode(struct {
		A string
		B float64
		C []int
	}{A: "x", B: 1.5, C: []int{1, 2}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["A"] != "x" || out["B"] != json.Number("1.5") {
		t.Errorf("unexpected encode result: %v", out)
	}
	list, ok := out["C"].([]any)
	if !ok || len(list) != 2 || list[0] != json.Number("1") {
		t.Errorf("unexpected list: %v", out["C"])
	}
}
