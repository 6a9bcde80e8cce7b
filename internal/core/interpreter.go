package core

import (
	"regexp"
	"strings"
)

// Draft is the interpreter's output: a candidate transaction without identity.
// ID, timestamp and display date are assigned at the persistence boundary.
type Draft struct {
	Description string
	Amount      Money
	Category    string
	Type        TransactionType
}

// amountPattern matches the first monetary amount in free text: an optional
// "R$"/"$" prefix, digits, and an optional comma or dot decimal separator
// with one or two fractional digits.
var amountPattern = regexp.MustCompile(`(?i)r?\$?\s*(\d+(?:[.,]\d{1,2})?)`)

// incomeKeywords classify a sentence as income when any of them appears.
// Absence of all of them defaults the transaction to expense.
var incomeKeywords = []string{"recebi", "ganhei", "entrada", "salário", "renda"}

// categoryRules is the fixed ordered keyword scan. The first group with a
// matching keyword wins; order is a deliberate simplification, not a
// semantic priority.
var categoryRules = []struct {
	category string
	keywords []string
}{
	{"Alimentação", []string{"mercado", "supermercado", "comida", "almoço", "jantar", "restaurante", "lanche", "delivery"}},
	{"Transporte", []string{"uber", "táxi", "ônibus", "transporte", "combustível", "gasolina"}},
	{"Moradia", []string{"aluguel", "condomínio", "água", "luz", "internet", "energia"}},
	{"Entretenimento", []string{"cinema", "show", "festa", "lazer"}},
	{"Saúde", []string{"médico", "farmácia", "medicamento", "saúde"}},
	{"Compras", []string{"roupa", "shopping", "compra"}},
}

// Interpret converts a free-text sentence into a transaction draft.
//
// The first numeric match in the input becomes the amount (comma decimals are
// normalized to dots); income keywords decide the direction; the category
// keyword groups are scanned in order with first-match-wins. Returns
// ErrNoAmountFound when no positive amount can be extracted. Pure function:
// no side effects, no identity assignment.
func Interpret(input string) (Draft, error) {
	lower := strings.ToLower(input)

	m := amountPattern.FindStringSubmatch(input)
	if m == nil {
		return Draft{}, ErrNoAmountFound
	}
	cents, err := ParseDecimalToCents(m[1])
	if err != nil {
		return Draft{}, ErrNoAmountFound
	}

	isIncome := false
	for _, kw := range incomeKeywords {
		if strings.Contains(lower, kw) {
			isIncome = true
			break
		}
	}

	category := classifyCategory(lower, isIncome)

	typ := Expense
	if isIncome {
		typ = Income
	}
	return Draft{
		Description: strings.TrimSpace(input),
		Amount:      Money{Cents: cents},
		Category:    category,
		Type:        typ,
	}, nil
}

func classifyCategory(lower string, isIncome bool) string {
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.category
			}
		}
	}
	if isIncome {
		return "Renda"
	}
	return "Outros"
}
