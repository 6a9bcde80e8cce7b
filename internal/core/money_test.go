package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"80.50", 8050, true},
		{"80,50", 8050, true},
		{"1500", 150000, true},
		{"0,5", 50, true},
		{"12.345", 1234, true}, // rounds down
		{"12.346", 1235, true}, // rounds up
		{" 10 ", 1000, true},
		{"", 0, false},
		{"abc", 0, false},
		{"-5", 0, false},
		{"+5", 0, false},
		{"0", 0, false},
		{"0.00", 0, false},
		{"1.2.3", 0, false},
	}
	for i, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("case %d (%q) expected ok, got %v", i, tc.in, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d (%q) expected error", i, tc.in)
		}
		if tc.ok && got != tc.want {
			t.Fatalf("case %d (%q) expected %d cents, got %d", i, tc.in, tc.want, got)
		}
	}
}

func TestCommaAndDotParseEqually(t *testing.T) {
	comma, err := ParseDecimalToCents("80,50")
	if err != nil {
		t.Fatalf("comma parse: %v", err)
	}
	dot, err := ParseDecimalToCents("80.50")
	if err != nil {
		t.Fatalf("dot parse: %v", err)
	}
	if comma != dot {
		t.Fatalf("expected equal values, got %d and %d", comma, dot)
	}
}

func TestMoneyReais(t *testing.T) {
	if got := (Money{Cents: 8050}).Reais(); got != 80.50 {
		t.Fatalf("expected 80.50, got %v", got)
	}
}

func TestFormatBRL(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{8050, "R$ 80,50"},
		{150000, "R$ 1.500,00"},
		{5, "R$ 0,05"},
		{-1234, "-R$ 12,34"},
	}
	for i, tc := range cases {
		if got := (Money{Cents: tc.cents}).FormatBRL(); got != tc.want {
			t.Fatalf("case %d expected %q, got %q", i, tc.want, got)
		}
	}
}
