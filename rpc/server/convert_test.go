package server

import (
	"reflect"
	"testing"
)

func TestConvert(t *testing.T) {
	t.Run("int64", func(t *testing.T) {
		tests := []struct {
			in      any
			want    int64
			wantErr bool
		}{
			{int32(5), 5, false},
			{int16(-3), -3, false},
			{"42", 42, false},
			{float64(7), 7, false},
			{float64(7.5), 0, true},
			{"x", 0, true},
			{nil, 0, false},
		}
		for _, tc := range tests {
			got, err := Convert[int64](tc.in)
			if (err != nil) != tc.wantErr {
				t.Errorf("Convert(%#v): unexpected error state: %v", tc.in, err)
				continue
			}
			if got != tc.want {
				t.Errorf("Convert(%#v) = %d, want %d", tc.in, got, tc.want)
			}
		}
	})

	t.Run("narrowing", func(t *testing.T) {
		if _, err := Convert[int8](int64(300)); err == nil {
			t.Errorf("Expected overflow error")
		}
		if v, err := Convert[uint8](int32(200)); err != nil || v != 200 {
			t.Errorf("Expected 200, got %d (%v)", v, err)
		}
	})

	t.Run("bool and float strings", func(t *testing.T) {
		if v, err := Convert[bool]("true"); err != nil || !v {
			t.Errorf("Expected true, got %v (%v)", v, err)
		}
		if v, err := Convert[float64]("1.5"); err != nil || v != 1.5 {
			t.Errorf("Expected 1.5, got %v (%v)", v, err)
		}
	})

	t.Run("lists", func(t *testing.T) {
		got, err := Convert[[]int32]([]any{int64(1), int32(2), int16(3)})
		if err != nil {
			t.Fatalf("Convert failed: %v", err)
		}
		if !reflect.DeepEqual(got, []int32{1, 2, 3}) {
			t.Errorf("Expected [1 2 3], got %v", got)
		}
	})

	t.Run("any", func(t *testing.T) {
		got, err := Convert[any]("hi")
		if err != nil || got != "hi" {
			t.Errorf("Expected hi, got %v (%v)", got, err)
		}
	})

	t.Run("unsupported", func(t *testing.T) {
		if _, err := Convert[struct{}]("x"); err == nil {
			t.Errorf("Expected error converting string to struct")
		}
	})
}
