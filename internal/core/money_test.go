package core

import (
	"encoding/json"
	"testing"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1.00", true},
		{"1.0", "1.00", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{"0.01", "0.01", true},
		{"1.005", "1.00", true}, // half-even rounds to the even cent
		{"1.015", "1.02", true},
		{" 2.50 ", "2.50", true},
		{"-1", "-1.00", true}, // sign checks belong to Validate, not parsing
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestMoneySumOfPartsEqualsWhole(t *testing.T) {
	whole := MoneyFromCents(10000)
	third := whole.DivInt(3)
	rest := whole.Sub(third).Sub(third)

	sum := third.Add(third).Add(rest)
	if sum.Cmp(whole) != 0 {
		t.Fatalf("parts %s+%s+%s = %s, want %s", third, third, rest, sum, whole)
	}
}

func TestMoneyRatioZeroDenominator(t *testing.T) {
	if r := MoneyFromCents(500).Ratio(Zero()); r != 0 {
		t.Fatalf("ratio with zero denominator = %v, want 0", r)
	}
	if r := MoneyFromCents(2000).Ratio(MoneyFromCents(10000)); r != 0.2 {
		t.Fatalf("ratio = %v, want 0.2", r)
	}
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	in := MoneyFromCents(1234)
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"12.34"` {
		t.Fatalf("marshal = %s", data)
	}
	var out Money
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Cmp(in) != 0 {
		t.Fatalf("round trip %s != %s", out, in)
	}
}
