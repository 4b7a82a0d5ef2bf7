package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out float64
		ok  bool
	}{
		{"-5", -5, true},
		{"+5", 5, true},
		{"1234.50", 1234.50, true},
		{"$1,234.50", 1234.50, true},
		{"€42.50", 42.50, true},
		{"₹42.50", 42.50, true},
		{"-£19.99", -19.99, true},
		{" 2.50 ", 2.50, true},
		{"0", 0, true},
		{"", 0, false},
		{"n/a", 0, false},
		{"1.2.3", 0, false},
		{"--5", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseAmount(tc.in)
		if ok != tc.ok || got != tc.out {
			t.Fatalf("ParseAmount(%q) = (%v, %v), want (%v, %v)", tc.in, got, ok, tc.out, tc.ok)
		}
	}
}

func TestRound2(t *testing.T) {
	cases := []struct {
		in  float64
		out float64
	}{
		{1.006, 1.01},
		{1.004, 1.0},
		{-1.006, -1.01},
		{0, 0},
		{123.456, 123.46},
		{2.5, 2.5},
	}
	for _, tc := range cases {
		if got := Round2(tc.in); got != tc.out {
			t.Fatalf("Round2(%v) = %v, want %v", tc.in, got, tc.out)
		}
	}
}
