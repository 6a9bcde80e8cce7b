package core

import (
	"errors"
	"testing"
)

func TestInterpretAmountExtraction(t *testing.T) {
	cases := []struct {
		in    string
		cents int64
	}{
		{"Gastei R$80,50 no mercado", 8050},
		{"Gastei R$80.50 no mercado", 8050},
		{"Paguei $25 de estacionamento", 2500},
		{"gastei 12,99 com lanche", 1299},
		{"Recebi R$ 1500 de salário", 150000},
	}
	for i, tc := range cases {
		d, err := Interpret(tc.in)
		if err != nil {
			t.Fatalf("case %d (%q) unexpected error: %v", i, tc.in, err)
		}
		if d.Amount.Cents != tc.cents {
			t.Fatalf("case %d (%q) expected %d cents, got %d", i, tc.in, tc.cents, d.Amount.Cents)
		}
	}
}

func TestInterpretTakesFirstAmount(t *testing.T) {
	d, err := Interpret("Almoço R$30 e depois café R$8")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Amount.Cents != 3000 {
		t.Fatalf("expected first amount 3000 cents, got %d", d.Amount.Cents)
	}
}

func TestInterpretNoAmount(t *testing.T) {
	cases := []string{
		"gastei muito hoje",
		"",
		"comprei umas coisas no mercado",
	}
	for i, in := range cases {
		if _, err := Interpret(in); !errors.Is(err, ErrNoAmountFound) {
			t.Fatalf("case %d (%q) expected ErrNoAmountFound, got %v", i, in, err)
		}
	}
}

func TestInterpretDirection(t *testing.T) {
	cases := []struct {
		in   string
		want TransactionType
	}{
		{"Recebi R$1500 de salário", Income},
		{"Ganhei R$200 num freela", Income},
		{"Entrada de R$300", Income},
		{"Renda extra de R$100", Income},
		{"Gastei R$80 com mercado hoje", Expense},
		{"R$45 de uber", Expense},
	}
	for i, tc := range cases {
		d, err := Interpret(tc.in)
		if err != nil {
			t.Fatalf("case %d unexpected error: %v", i, err)
		}
		if d.Type != tc.want {
			t.Fatalf("case %d (%q) expected type %s, got %s", i, tc.in, tc.want, d.Type)
		}
	}
}

func TestInterpretCategories(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Gastei R$80 com mercado hoje", "Alimentação"},
		{"R$45 de uber para o trabalho", "Transporte"},
		{"Paguei R$1200 de aluguel", "Moradia"},
		{"R$40 de cinema", "Entretenimento"},
		{"R$60 na farmácia", "Saúde"},
		{"Comprei roupa por R$150", "Compras"},
		{"Recebi R$1500 de salário", "Renda"},
		{"Gastei R$30 sei lá com o quê", "Outros"},
	}
	for i, tc := range cases {
		d, err := Interpret(tc.in)
		if err != nil {
			t.Fatalf("case %d unexpected error: %v", i, err)
		}
		if d.Category != tc.want {
			t.Fatalf("case %d (%q) expected category %s, got %s", i, tc.in, tc.want, d.Category)
		}
	}
}

func TestInterpretCategoryFirstMatchWins(t *testing.T) {
	// Market terms are scanned before transport terms, so the food group
	// wins even though an Uber is also mentioned.
	d, err := Interpret("Gastei R$50 no mercado e depois de Uber")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Category != "Alimentação" {
		t.Fatalf("expected Alimentação, got %s", d.Category)
	}
}

func TestInterpretDescriptionTrimmed(t *testing.T) {
	d, err := Interpret("  Gastei R$10 com lanche  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Description != "Gastei R$10 com lanche" {
		t.Fatalf("expected trimmed description, got %q", d.Description)
	}
}

func TestInterpretSalaryExample(t *testing.T) {
	d, err := Interpret("Recebi R$1500 de salário")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Type != Income || d.Amount.Cents != 150000 || d.Category != "Renda" {
		t.Fatalf("unexpected draft: %+v", d)
	}
}
