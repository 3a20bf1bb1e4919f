package msg

import (
	"errors"
	"testing"
)

func TestMessageValueWithoutDecoderReturnsRawPayload(t *testing.T) {
	m := &Message{Payload: []byte("raw")}
	v, err := m.Value()
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}
	b, ok := v.([]byte)
	if !ok || string(b) != "raw" {
		t.Errorf("Value() = %v, want []byte(\"raw\")", v)
	}
}

func TestMessageValueDecodesOnceAndMemoizes(t *testing.T) {
	calls := 0
	m := &Message{Payload: []byte("42")}
	m.SetDecoder(func(p []byte) (interface{}, error) {
		calls++
		return string(p) + "-decoded", nil
	})

	v1, err := m.Value()
	if err != nil {
		t.Fatalf("first Value() error = %v", err)
	}
	v2, err := m.Value()
	if err != nil {
		t.Fatalf("second Value() error = %v", err)
	}
	if v1 != v2 {
		t.Errorf("Value() returned different results across calls: %v vs %v", v1, v2)
	}
	if calls != 1 {
		t.Errorf("decoder called %d times, want 1 (memoized)", calls)
	}
}

func TestMessageSetDecoderIgnoresLaterCalls(t *testing.T) {
	m := &Message{Payload: []byte("x")}
	m.SetDecoder(func(p []byte) (interface{}, error) { return "first", nil })
	m.SetDecoder(func(p []byte) (interface{}, error) { return "second", nil })

	v, _ := m.Value()
	if v != "first" {
		t.Errorf("Value() = %v, want %q (first decoder installed wins)", v, "first")
	}
}

func TestMessageValuePropagatesDecodeError(t *testing.T) {
	wantErr := errors.New("boom")
	m := &Message{Payload: []byte("x")}
	m.SetDecoder(func(p []byte) (interface{}, error) { return nil, wantErr })

	_, err := m.Value()
	if err != wantErr {
		t.Errorf("Value() error = %v, want %v", err, wantErr)
	}
}

func TestDecodeAssertsConcreteType(t *testing.T) {
	m := &Message{Payload: []byte("x")}
	m.SetDecoder(func(p []byte) (interface{}, error) { return 42, nil })

	v, err := Decode[int](m)
	if err != nil {
		t.Fatalf("Decode[int]() error = %v", err)
	}
	if v != 42 {
		t.Errorf("Decode[int]() = %d, want 42", v)
	}
}

func TestDecodeReturnsErrorOnTypeMismatch(t *testing.T) {
	m := &Message{Payload: []byte("x")}
	m.SetDecoder(func(p []byte) (interface{}, error) { return "a string", nil })

	if _, err := Decode[int](m); err == nil {
		t.Fatal("Decode[int]() on a string-valued message should error")
	}
}

func TestMessageIsBatchedReflectsAcker(t *testing.T) {
	m := &Message{}
	if m.IsBatched() {
		t.Error("IsBatched() should be false with no Acker")
	}
	m.Acker = NewBatchAcker(2)
	if !m.IsBatched() {
		t.Error("IsBatched() should be true once Acker is set")
	}
}
