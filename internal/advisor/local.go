package advisor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"financesense/internal/core"
)

var monthNamesPT = [...]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// fallbackMonthlyExpenseCents seeds predictions when no history exists.
const fallbackMonthlyExpenseCents = 2500_00

// Local implements Client with deterministic in-process computations. It
// never returns an error: it is the substitute of last resort.
//
// Scoring goes through the same core functions as the aggregation engine,
// so a locally computed analysis can never disagree with the dashboard.
type Local struct {
	now func() time.Time
}

func NewLocal() *Local {
	return &Local{now: time.Now}
}

func (l *Local) Analyze(_ context.Context, snap Snapshot) (Analysis, error) {
	in := scoreInput(snap)
	score := core.HealthScore(in)
	risk := core.Risk(in)
	savingsRate := rate(snap.Summary.CurrentSavings.Cents, snap.Summary.TotalIncome.Cents)
	expenseRate := rate(snap.Summary.TotalExpenses.Cents, snap.Summary.TotalIncome.Cents)

	insights := []string{
		fmt.Sprintf("Sua taxa de poupança atual é de %.1f%%", savingsRate),
		fmt.Sprintf("Seus gastos totais representam %.1f%% da renda", expenseRate),
	}

	recommendations := []string{
		"Revise seus gastos recorrentes mensalmente",
	}
	if savingsRate < 20 {
		recommendations = append([]string{"Tente aumentar sua taxa de poupança para pelo menos 20%"}, recommendations...)
	} else {
		recommendations = append([]string{"Parabéns pela boa taxa de poupança!"}, recommendations...)
	}

	predictions := []string{
		"Mantendo o padrão atual, você atingirá suas metas em tempo hábil",
		"Considere investir parte da reserva em opções de maior rentabilidade",
	}

	return Analysis{
		Insights:        insights,
		Recommendations: recommendations,
		Predictions:     predictions,
		RiskLevel:       risk,
		Score:           score,
	}, nil
}

// DetectAnomalies flags outliers against the average amount, near-duplicate
// pairs within 24 hours, and large small-hour transactions. At most five
// findings are reported.
func (l *Local) DetectAnomalies(_ context.Context, transactions []core.Transaction) ([]string, error) {
	if len(transactions) == 0 {
		return []string{}, nil
	}

	var total, max int64
	for _, t := range transactions {
		total += t.Amount.Cents
		if t.Amount.Cents > max {
			max = t.Amount.Cents
		}
	}
	avg := total / int64(len(transactions))

	anomalies := []string{}
	if avg > 0 && max > avg*3 {
		anomalies = append(anomalies, fmt.Sprintf(
			"Transação de %s muito acima da média (%s)",
			core.Money{Cents: max}.FormatBRL(), core.Money{Cents: avg}.FormatBRL()))
	}

	duplicates := 0
	for i := 0; i < len(transactions); i++ {
		for j := i + 1; j < len(transactions); j++ {
			a, b := transactions[i], transactions[j]
			if a.Amount.Cents != b.Amount.Cents {
				continue
			}
			if !strings.EqualFold(a.Description, b.Description) {
				continue
			}
			gap := a.Timestamp.Sub(b.Timestamp)
			if gap < 0 {
				gap = -gap
			}
			if gap < 24*time.Hour {
				duplicates++
			}
		}
	}
	if duplicates > 0 {
		anomalies = append(anomalies, fmt.Sprintf(
			"%d transação(ões) duplicada(s) detectada(s) em menos de 24 horas", duplicates))
	}

	night := 0
	for _, t := range transactions {
		h := t.Timestamp.Hour()
		if h >= 0 && h <= 5 && t.Amount.Cents > avg {
			night++
		}
	}
	if night > 0 {
		anomalies = append(anomalies, fmt.Sprintf(
			"%d transação(ões) em horário noturno (00h-05h) com valores elevados", night))
	}

	if len(anomalies) > 5 {
		anomalies = anomalies[:5]
	}
	return anomalies, nil
}

// RecommendInvestments returns a static allocation table keyed off the
// stated risk profile and horizon. Allocations always sum to 100.
func (l *Local) RecommendInvestments(_ context.Context, profile string, _ core.Money, horizon string) ([]InvestmentRecommendation, error) {
	p := strings.ToLower(profile)
	conservative := strings.Contains(p, "conservador") || strings.Contains(p, "baixo")
	aggressive := strings.Contains(p, "agressivo") || strings.Contains(p, "alto")
	longTerm := strings.Contains(horizon, "ano") || strings.Contains(horizon, "longo")

	if conservative {
		return []InvestmentRecommendation{
			{Type: "Tesouro Selic", Allocation: 50, Risk: "baixo", ExpectedReturn: "11-12% a.a.", Description: "Liquidez diária, acompanha a taxa básica de juros"},
			{Type: "CDB/LCI/LCA", Allocation: 35, Risk: "baixo", ExpectedReturn: "110-120% CDI", Description: "Proteção do FGC até R$ 250 mil por instituição"},
			{Type: "Fundos DI", Allocation: 15, Risk: "baixo", ExpectedReturn: "95-105% CDI", Description: "Gestão profissional, baixa volatilidade"},
		}, nil
	}

	if aggressive && longTerm {
		return []InvestmentRecommendation{
			{Type: "Ações/ETFs", Allocation: 40, Risk: "alto", ExpectedReturn: "15-25% a.a.", Description: "Potencial de maior retorno no longo prazo"},
			{Type: "Fundos Multimercado", Allocation: 30, Risk: "médio", ExpectedReturn: "12-18% a.a.", Description: "Diversificação profissional em várias classes"},
			{Type: "Tesouro IPCA+", Allocation: 20, Risk: "médio", ExpectedReturn: "IPCA + 5-6% a.a.", Description: "Proteção contra inflação de longo prazo"},
			{Type: "Reserva de Emergência", Allocation: 10, Risk: "baixo", ExpectedReturn: "11-12% a.a.", Description: "Tesouro Selic para liquidez imediata"},
		}, nil
	}

	return []InvestmentRecommendation{
		{Type: "Tesouro Selic", Allocation: 40, Risk: "baixo", ExpectedReturn: "11-13% a.a.", Description: "Base da carteira, liquidez diária"},
		{Type: "CDB/LCI", Allocation: 30, Risk: "baixo", ExpectedReturn: "12-14% a.a.", Description: "Proteção do FGC, boa rentabilidade"},
		{Type: "Fundos Multimercado", Allocation: 20, Risk: "médio", ExpectedReturn: "13-17% a.a.", Description: "Diversificação e gestão profissional"},
		{Type: "Fundos Imobiliários", Allocation: 10, Risk: "médio", ExpectedReturn: "8-12% a.a. + dividendos", Description: "Exposição ao mercado imobiliário"},
	}, nil
}

// PredictExpenses projects the historical monthly average forward, scaled
// by Brazilian seasonality (year-end festivities, school terms, holidays)
// and a flat monthly inflation factor. Confidence decays with distance.
func (l *Local) PredictExpenses(_ context.Context, transactions []core.Transaction, months int) ([]ExpensePrediction, error) {
	if months <= 0 {
		return []ExpensePrediction{}, nil
	}
	if months > 12 {
		months = 12
	}

	base := int64(fallbackMonthlyExpenseCents)
	var sum int64
	count := 0
	for _, t := range transactions {
		if t.Type != core.Expense {
			continue
		}
		sum += t.Amount.Cents
		count++
	}
	if count > 0 {
		base = sum / int64(count)
	}

	now := l.now()
	out := make([]ExpensePrediction, 0, months)
	for i := 1; i <= months; i++ {
		month := now.AddDate(0, i, 0)
		name := monthNamesPT[int(month.Month())-1]

		factor := 1.0
		factors := []string{"padrão histórico"}
		switch name {
		case "Dezembro":
			factor = 1.3
			factors = []string{"Natal e festas", "13º salário", "gastos sazonais"}
		case "Janeiro", "Fevereiro":
			factor = 1.15
			factors = []string{"volta das férias", "ajustes pós-festas"}
		case "Março":
			factor = 1.1
			factors = []string{"volta às aulas", "gastos escolares"}
		case "Julho":
			factor = 1.1
			factors = []string{"férias escolares", "viagens"}
		case "Maio":
			factor = 1.05
			factors = []string{"Dia das Mães", "presentes"}
		case "Agosto":
			factor = 1.05
			factors = []string{"Dia dos Pais", "presentes"}
		}

		inflation := 1 + 0.04/12
		confidence := 95 - i*5
		if confidence > 70 {
			confidence = 70
		}

		out = append(out, ExpensePrediction{
			Month:           name,
			PredictedAmount: int64(float64(base) * factor * inflation),
			Confidence:      confidence,
			Factors:         factors,
		})
	}
	return out, nil
}

func (l *Local) GenerateReport(_ context.Context, snap Snapshot) (string, error) {
	income := snap.Summary.TotalIncome
	savings := snap.Summary.CurrentSavings
	expenses := snap.Summary.TotalExpenses
	savingsRate := rate(savings.Cents, income.Cents)
	expenseRate := rate(expenses.Cents, income.Cents)

	var b strings.Builder
	b.WriteString("# Relatório Financeiro Personalizado\n\n")

	b.WriteString("## Situação Atual\n")
	fmt.Fprintf(&b, "Sua renda é de **%s** e você possui **%s** em poupança.\n\n",
		income.FormatBRL(), savings.FormatBRL())
	fmt.Fprintf(&b, "Sua taxa de poupança atual é de **%.1f%%**, %s\n\n", savingsRate, savingsRateVerdict(savingsRate))

	b.WriteString("## Análise por Categoria\n")
	fmt.Fprintf(&b, "Seus gastos representam **%.1f%%** da sua renda total.\n\n", expenseRate)
	if len(snap.Categories) == 0 {
		b.WriteString("Nenhuma categoria de gasto registrada.\n")
	}
	for _, c := range snap.Categories {
		fmt.Fprintf(&b, "- **%s**: %s (%.1f%%)\n", c.Name, c.Amount.FormatBRL(), rate(c.Amount.Cents, expenses.Cents))
	}
	b.WriteString("\n")

	b.WriteString("## Progresso das Metas\n")
	if len(snap.Goals) > 0 {
		fmt.Fprintf(&b, "Você tem %d meta(s) financeira(s) ativa(s). Continue focado nos seus objetivos!\n\n", len(snap.Goals))
	} else {
		b.WriteString("Considere definir metas financeiras claras para melhor controle.\n\n")
	}

	b.WriteString("## Pontos de Atenção\n")
	if savingsRate < 10 {
		b.WriteString("- **Crítico**: Taxa de poupança muito baixa\n")
	}
	if expenseRate > 90 {
		b.WriteString("- **Atenção**: Gastos muito altos em relação à renda\n")
	}
	b.WriteString("- Monitore gastos recorrentes mensalmente\n")
	b.WriteString("- Mantenha uma reserva de emergência\n\n")

	b.WriteString("## Recomendações\n")
	if savingsRate < 20 {
		b.WriteString("- Tente aumentar sua taxa de poupança para pelo menos 20%\n")
	} else {
		b.WriteString("- Mantenha sua excelente disciplina de poupança\n")
	}
	b.WriteString("- Revise e otimize suas categorias de gasto mensalmente\n")
	b.WriteString("- Considere investir parte da reserva em opções de maior rentabilidade\n\n")

	b.WriteString("## Próximos Passos\n")
	b.WriteString("1. **Esta semana**: Revise todos os gastos do mês passado\n")
	if savingsRate < 15 {
		b.WriteString("2. **Próximos 15 dias**: Identifique 3 gastos desnecessários para cortar\n")
	} else {
		b.WriteString("2. **Próximos 15 dias**: Pesquise opções de investimento para sua reserva\n")
	}
	b.WriteString("3. **Próximo mês**: Implemente um sistema de controle mais rigoroso\n")

	return b.String(), nil
}

// Chat routes the question by keyword to a canned, context-filled answer.
func (l *Local) Chat(_ context.Context, message string, snap Snapshot) (string, error) {
	lower := strings.ToLower(message)
	expenses := snap.Summary.TotalExpenses
	savingsRate := rate(snap.Summary.CurrentSavings.Cents, snap.Summary.TotalIncome.Cents)

	switch {
	case strings.Contains(lower, "gast") || strings.Contains(lower, "despesa"):
		verdict := "Está dentro de um nível controlável."
		if snap.Summary.TotalIncome.Cents > 0 &&
			float64(expenses.Cents)/float64(snap.Summary.TotalIncome.Cents) > 0.8 {
			verdict = "Isso está um pouco alto, considere revisar algumas categorias."
		}
		return fmt.Sprintf(
			"Analisando seus gastos, o total é de %s, representando %.1f%% da sua renda. %s Gostaria que eu detalhe alguma categoria específica?",
			expenses.FormatBRL(), rate(expenses.Cents, snap.Summary.TotalIncome.Cents), verdict), nil

	case strings.Contains(lower, "economi") || strings.Contains(lower, "poupar") || strings.Contains(lower, "guardar"):
		suggestion := "Parabéns! Sua taxa de poupança está excelente"
		if savingsRate < 10 {
			suggestion = "Recomendo começar poupando pelo menos 10% da renda"
		} else if savingsRate < 20 {
			suggestion = "Tente aumentar gradualmente para 20% da renda"
		}
		return fmt.Sprintf(
			"Sua taxa de poupança atual é %.1f%%. %s. Uma dica prática: automatize transferências para a poupança logo que receber o salário.",
			savingsRate, suggestion), nil

	case strings.Contains(lower, "invest") || strings.Contains(lower, "aplicar") || strings.Contains(lower, "render"):
		return fmt.Sprintf(
			"Com %s disponíveis, recomendo: 50%% em Tesouro Selic (liquidez diária), 30%% em CDB/LCI (proteção FGC), 20%% em fundos conservadores. Isso pode render aproximadamente 11-13%% ao ano.",
			snap.Summary.CurrentSavings.FormatBRL()), nil

	case strings.Contains(lower, "meta") || strings.Contains(lower, "objetivo") || strings.Contains(lower, "planej"):
		intro := "Ainda não identifiquei metas específicas."
		if len(snap.Goals) > 0 {
			intro = fmt.Sprintf("Você tem %d meta(s) definida(s).", len(snap.Goals))
		}
		return intro + " Para um bom planejamento financeiro, recomendo metas SMART: específicas, mensuráveis e com prazo.", nil
	}

	state := "precisando de ajustes"
	if savingsRate > 15 {
		state = "em bom caminho"
	}
	return fmt.Sprintf(
		"Obrigado pela pergunta! Com base no seu perfil financeiro (renda de %s, poupança de %.1f%%), posso te ajudar com estratégias personalizadas. Suas finanças estão %s. Gostaria de focar em gastos, investimentos ou planejamento?",
		snap.Summary.TotalIncome.FormatBRL(), savingsRate, state), nil
}

func scoreInput(snap Snapshot) core.ScoreInput {
	return core.ScoreInput{
		TotalIncome:      snap.Summary.TotalIncome,
		TotalExpenses:    snap.Summary.TotalExpenses,
		CurrentSavings:   snap.Summary.CurrentSavings,
		GoalCount:        len(snap.Goals),
		TransactionCount: len(snap.Transactions),
	}
}

// rate returns part/whole as a percentage, zero when the whole is zero.
func rate(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

func savingsRateVerdict(r float64) string {
	switch {
	case r >= 20:
		return "que está excelente! Parabéns pelo controle financeiro."
	case r >= 10:
		return "que está dentro do aceitável, mas pode melhorar."
	default:
		return "que precisa de atenção urgente."
	}
}
