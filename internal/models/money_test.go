package models

import (
	"encoding/json"
	"testing"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"1234.50", "1234.50", false},
		{"-20", "-20.00", false},
		{"0", "0.00", false},
		{"abc", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			m, err := ParseMoney(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if m.String() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, m)
			}
		})
	}
}

func TestMoney_Fits(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"1234.50", true},
		{"9999999999999.99", true},
		{"-9999999999999.99", true},
		{"10000000000000.00", false},
		{"0.001", false},
		{"12.345", false},
	}
	for _, tt := range tests {
		if got := MustMoney(tt.in).Fits(); got != tt.want {
			t.Errorf("Fits(%s) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestMoney_JSON(t *testing.T) {
	t.Run("marshals as a two-place string", func(t *testing.T) {
		out, err := json.Marshal(struct {
			Amount Money `json:"amount"`
		}{MustMoney("1234.5")})
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(out) != `{"amount":"1234.50"}` {
			t.Errorf("unexpected JSON %s", out)
		}
	})

	t.Run("accepts numbers and strings", func(t *testing.T) {
		for _, in := range []string{`"-120.50"`, `-120.5`} {
			var m Money
			if err := json.Unmarshal([]byte(in), &m); err != nil {
				t.Fatalf("unmarshal %s: %v", in, err)
			}
			if m.String() != "-120.50" {
				t.Errorf("unmarshal %s: got %s", in, m)
			}
		}
	})
}

func TestMoney_Scan(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want string
	}{
		{"nil", nil, "0.00"},
		{"float from sqlite", 1234.5, "1234.50"},
		{"float noise", 0.1 + 0.2, "0.30"},
		{"string from postgres", "1234.50", "1234.50"},
		{"bytes", []byte("-7.25"), "-7.25"},
		{"integer", int64(42), "42.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m Money
			if err := m.Scan(tt.in); err != nil {
				t.Fatalf("scan: %v", err)
			}
			if m.String() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, m)
			}
		})
	}
}

func TestMoney_SignHelpers(t *testing.T) {
	m := MustMoney("-15.40")
	if m.Abs().String() != "15.40" {
		t.Errorf("Abs: got %s", m.Abs())
	}
	if m.Neg().String() != "15.40" {
		t.Errorf("Neg: got %s", m.Neg())
	}
	if v, _ := ZeroMoney().Value(); v != "0.00" {
		t.Errorf("Value: got %v", v)
	}
}

func TestEnumValid(t *testing.T) {
	if !AccountTypeCurrent.Valid() || AccountType("fixed").Valid() {
		t.Error("unexpected AccountType validity")
	}
	if !CategoryTypeTransfer.Valid() || CategoryType("savings").Valid() {
		t.Error("unexpected CategoryType validity")
	}
	if !TransactionTypeIncome.Valid() || TransactionType("refund").Valid() {
		t.Error("unexpected TransactionType validity")
	}
	if !TransactionSourceImport.Valid() || TransactionSource("").Valid() {
		t.Error("unexpected TransactionSource validity")
	}
}

func TestDefaultCategories(t *testing.T) {
	counts := map[CategoryType]int{}
	seen := map[string]bool{}
	for _, c := range DefaultCategories() {
		counts[c.Type]++
		key := string(c.Type) + "/" + c.Name
		if seen[key] {
			t.Errorf("duplicate default category %s", key)
		}
		seen[key] = true
	}
	if counts[CategoryTypeIncome] != 5 || counts[CategoryTypeExpense] != 9 || counts[CategoryTypeTransfer] != 3 {
		t.Errorf("unexpected split %v", counts)
	}
}
