package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"financesense/internal/core"
)

const defaultGeminiModel = "gemini-1.5-flash"

// Gemini implements Client against the Google Generative AI API. Prompts
// request strict JSON matching the fixed schemas; anything else comes back
// as an error for the caller to recover from.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key not set")
	}
	if modelName == "" {
		modelName = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Gemini{
		client: client,
		model:  client.GenerativeModel(modelName),
	}, nil
}

func (g *Gemini) Analyze(ctx context.Context, snap Snapshot) (Analysis, error) {
	snapshot, err := json.Marshal(snap)
	if err != nil {
		return Analysis{}, fmt.Errorf("marshal snapshot: %w", err)
	}

	prompt := fmt.Sprintf(`Analise os dados financeiros a seguir e forneça insights valiosos.

Dados: %s

Responda APENAS com um JSON válido no formato:
{
  "insights": ["insight1", "insight2"],
  "recommendations": ["rec1", "rec2"],
  "predictions": ["pred1", "pred2"],
  "riskLevel": "low|medium|high",
  "score": número de 0-100
}`, snapshot)

	text, err := g.generate(ctx, prompt)
	if err != nil {
		return Analysis{}, err
	}

	var out Analysis
	if err := json.Unmarshal([]byte(stripFences(text)), &out); err != nil {
		return Analysis{}, fmt.Errorf("unexpected analysis response: %w", err)
	}
	if !out.RiskLevel.IsValid() || out.Score < 0 || out.Score > 100 {
		return Analysis{}, fmt.Errorf("analysis response out of schema")
	}
	return out, nil
}

func (g *Gemini) DetectAnomalies(ctx context.Context, transactions []core.Transaction) ([]string, error) {
	if len(transactions) > 50 {
		transactions = transactions[:50]
	}
	data, err := json.Marshal(transactions)
	if err != nil {
		return nil, fmt.Errorf("marshal transactions: %w", err)
	}

	prompt := fmt.Sprintf(`Analise estas transações financeiras brasileiras e identifique possíveis anomalias.
Considere: valores muito altos para o padrão, padrões irregulares, gastos duplicados.

Transações: %s

Responda APENAS com um array JSON de strings em português descrevendo as anomalias.
Se não houver anomalias, retorne [].`, data)

	text, err := g.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var out []string
	if err := json.Unmarshal([]byte(stripFences(text)), &out); err != nil {
		return nil, fmt.Errorf("unexpected anomaly response: %w", err)
	}
	if len(out) > 10 {
		out = out[:10]
	}
	return out, nil
}

func (g *Gemini) RecommendInvestments(ctx context.Context, profile string, amount core.Money, horizon string) ([]InvestmentRecommendation, error) {
	prompt := fmt.Sprintf(`Gere recomendações de investimento para o mercado brasileiro atual.

Perfil: %s
Valor: %s
Prazo: %s

Responda APENAS com um array JSON no formato:
[{
  "type": "nome do investimento",
  "allocation": número de 0-100,
  "risk": "baixo|médio|alto",
  "expectedReturn": "X%% a.a.",
  "description": "descrição em português"
}]

Garanta que a soma das alocações seja 100%%.`, profile, amount.FormatBRL(), horizon)

	text, err := g.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var out []InvestmentRecommendation
	if err := json.Unmarshal([]byte(stripFences(text)), &out); err != nil {
		return nil, fmt.Errorf("unexpected investment response: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty investment response")
	}
	if len(out) > 6 {
		out = out[:6]
	}
	return out, nil
}

func (g *Gemini) PredictExpenses(ctx context.Context, transactions []core.Transaction, months int) ([]ExpensePrediction, error) {
	if len(transactions) > 12 {
		transactions = transactions[:12]
	}
	data, err := json.Marshal(transactions)
	if err != nil {
		return nil, fmt.Errorf("marshal transactions: %w", err)
	}

	prompt := fmt.Sprintf(`Baseado nos dados históricos brasileiros, preveja gastos para %d meses.

Dados: %s

Considere sazonalidade brasileira (Natal, férias, volta às aulas, 13º salário em dezembro) e inflação.

Responda APENAS com array JSON:
[{
  "month": "nome do mês em português",
  "predictedAmount": valor em centavos,
  "confidence": número de 0-100,
  "factors": ["fator1", "fator2"]
}]`, months, data)

	text, err := g.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var out []ExpensePrediction
	if err := json.Unmarshal([]byte(stripFences(text)), &out); err != nil {
		return nil, fmt.Errorf("unexpected prediction response: %w", err)
	}
	if len(out) > months {
		out = out[:months]
	}
	return out, nil
}

func (g *Gemini) GenerateReport(ctx context.Context, snap Snapshot) (string, error) {
	snapshot, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	prompt := fmt.Sprintf(`Gere um relatório financeiro personalizado em português brasileiro, em Markdown.

Dados: %s

Estrutura: Situação Atual, Análise por Categoria, Progresso das Metas, Pontos de Atenção, Recomendações, Próximos Passos.
Use tom amigável, valores em reais (R$) e percentuais claros.`, snapshot)

	text, err := g.generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("empty report response")
	}
	return text, nil
}

func (g *Gemini) Chat(ctx context.Context, message string, snap Snapshot) (string, error) {
	snapshot, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	prompt := fmt.Sprintf(`Você é um consultor financeiro especializado no mercado brasileiro.

Contexto financeiro: %s
Pergunta: %s

Responda de forma clara e objetiva em português, com sugestões práticas, valores em reais (R$) e tom amigável. Máximo 200 palavras.`, snapshot, message)

	text, err := g.generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("empty chat response")
	}
	return text, nil
}

func (g *Gemini) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from gemini API")
	}
	return fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]), nil
}

func (g *Gemini) Close() error {
	return g.client.Close()
}

// stripFences removes a markdown code fence around a JSON payload; models
// frequently wrap responses in one despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
