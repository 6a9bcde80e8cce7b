package core

// Illustrative placeholder data substituted when the store yields nothing
// usable, so callers always have something renderable. Absorbing empty or
// malformed data into these fixtures instead of failing is deliberate.

// SavingSuggestion is a static economy tip the user can convert into a goal.
type SavingSuggestion struct {
	ID               int
	Title            string
	Description      string
	PotentialSavings Money
}

// SuggestedGoal is a pre-built goal template offered on the planning page.
type SuggestedGoal struct {
	ID          string
	Title       string
	Description string
	Value       Money
}

// GoalFromSuggestionMonths is the multiplier used when a saving suggestion
// becomes a goal: target = potential monthly savings times this horizon.
const GoalFromSuggestionMonths = 12

// PlaceholderSummary returns the fixed illustrative summary.
func PlaceholderSummary() Summary {
	return Summary{
		TotalIncome:    Money{Cents: 6500_00},
		TotalExpenses:  Money{Cents: 2450_75},
		Balance:        Money{Cents: 4049_25},
		CurrentSavings: Money{Cents: 8500_00},
	}
}

// PlaceholderCategories returns the fixed illustrative category breakdown.
func PlaceholderCategories() []Category {
	return []Category{
		{Name: "Moradia", Amount: Money{Cents: 1200_00}, Color: CategoryColor("Moradia")},
		{Name: "Alimentação", Amount: Money{Cents: 650_00}, Color: CategoryColor("Alimentação")},
		{Name: "Transporte", Amount: Money{Cents: 280_00}, Color: CategoryColor("Transporte")},
		{Name: "Entretenimento", Amount: Money{Cents: 150_00}, Color: CategoryColor("Entretenimento")},
		{Name: "Saúde", Amount: Money{Cents: 90_00}, Color: CategoryColor("Saúde")},
		{Name: "Outros", Amount: Money{Cents: 80_75}, Color: CategoryColor("Outros")},
	}
}

// PlaceholderDailyTrend returns the fixed illustrative 7-day expense series.
func PlaceholderDailyTrend() []DailyPoint {
	return []DailyPoint{
		{Day: "Seg", Date: "05", Amount: Money{Cents: 125_50}},
		{Day: "Ter", Date: "06", Amount: Money{Cents: 85_30}},
		{Day: "Qua", Date: "07", Amount: Money{Cents: 197_20}},
		{Day: "Qui", Date: "08", Amount: Money{Cents: 340_00}},
		{Day: "Sex", Date: "09", Amount: Money{Cents: 452_25}},
		{Day: "Sáb", Date: "10", Amount: Money{Cents: 180_00}},
		{Day: "Dom", Date: "11", Amount: Money{Cents: 70_50}},
	}
}

// SavingSuggestions is the static economy-tip catalog.
func SavingSuggestions() []SavingSuggestion {
	return []SavingSuggestion{
		{
			ID:               1,
			Title:            "Reduza gastos com delivery",
			Description:      "Você gastou R$320 com delivery este mês, 40% a mais que o mês passado. Considere cozinhar mais em casa.",
			PotentialSavings: Money{Cents: 150_00},
		},
		{
			ID:               2,
			Title:            "Assinaturas não utilizadas",
			Description:      "Você tem 3 assinaturas que usa menos de 1x por semana. Cancelá-las pode economizar R$75/mês.",
			PotentialSavings: Money{Cents: 75_00},
		},
		{
			ID:               3,
			Title:            "Transporte alternativo",
			Description:      "Usando transporte público 2x por semana em vez de carro/app, você economizaria cerca de R$120/mês.",
			PotentialSavings: Money{Cents: 120_00},
		},
	}
}

// SuggestedGoals is the static goal-template catalog.
func SuggestedGoals() []SuggestedGoal {
	return []SuggestedGoal{
		{ID: "sg1", Title: "Fundo de emergência", Description: "Crie uma reserva equivalente a 6 meses de gastos", Value: Money{Cents: 12000_00}},
		{ID: "sg2", Title: "Troca de celular", Description: "Economize para um novo smartphone", Value: Money{Cents: 3500_00}},
		{ID: "sg3", Title: "Viagem", Description: "Férias para relaxar e recarregar energias", Value: Money{Cents: 5000_00}},
	}
}
