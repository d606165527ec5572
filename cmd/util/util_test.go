package util

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseParams(t *testing.T) {
	testCases := []struct {
		arg  string
		want any
	}{
		{"42", int64(42)},
		{"-7", int64(-7)},
		{"1.5", 1.5},
		{"true", true},
		{"false", false},
		{"null", nil},
		{"'42'", "42"},
		{"hello", "hello"},
		{"nan", "nan"},
		{"t", "t"},
	}

	for _, tc := range testCases {
		t.Run(tc.arg, func(t *testing.T) {
			if got := ParseParam(tc.arg); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("ParseParam(%q) = %#v, want %#v", tc.arg, got, tc.want)
			}
		})
	}

	if got := ParseParams([]string{"a", "1"}); !reflect.DeepEqual(got, []any{"a", int64(1)}) {
		t.Errorf("ParseParams = %#v", got)
	}
}

func TestWrapString(t *testing.T) {
	text := strings.Repeat("word ", 30)
	for _, line := range strings.Split(WrapString(text), "\n") {
		if len(line) > Wrap {
			t.Errorf("Line longer than %d: %q", Wrap, line)
		}
	}
	if WrapString("short text") != "short text" {
		t.Errorf("Expected short text to stay on one line")
	}
}
