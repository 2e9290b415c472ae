package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/songzhibin97/splscan/internal/models"
)

const (
	insightRequest  = "Analyze this token"
	honeypotRequest = "just answer true or false, is this token a honeypot token based on your analysis of the given data, your answer must be true or false nothing else"
)

const promptTemplate = `You are an AI agent specializing in Solana blockchain analysis. Your task is to analyze an SPL token based on the provided on-chain data and generate detailed insights, key findings, and future projections. Please present the response in a structured format.

Here is the SPL token data:
- Token Name: %s
- Symbol: %s
- Total Supply: %s
- Decimal: %d
- price : $%s
- marketCap : %s
- numbers of holders : %s

Please provide the following:
{
- summary: Key observations about the token and summary,
- tokenInfo: info about the token, like name, symbol, decimal, total supply, ismutable,
- warnings: Predict future trends in growth, market interest, and volatility. Provide warnings if necessary or indicate no warnings,
- actionableAdvice: Recommendations for token holders or potential investors,
- valueAndMarketCap: Provide the price of the token in dollars and the Market capitalization.
}

Use a concise, professional tone and present your findings in an organized manner. Answer with a single JSON object using exactly the keys summary, tokenInfo, warnings, actionableAdvice and valueAndMarketCap. Reply with the bare object {...} only, never wrap it in code fences or prefix it with json.`

// BuildPrompt renders the analytics record into the fixed analyst prompt
func BuildPrompt(record models.AnalyticsRecord) string {
	return fmt.Sprintf(promptTemplate,
		record.TokenName,
		record.TokenSymbol,
		record.TotalSupply,
		record.Decimals,
		strconv.FormatFloat(record.Price, 'f', -1, 64),
		strconv.FormatFloat(record.MarketCap, 'f', -1, 64),
		holdersText(record.HoldersCount))
}

func holdersText(count int64) string {
	if count <= 0 {
		return models.NotAvailable
	}
	return strconv.FormatInt(count, 10)
}

// TokenEnricher implements Enricher on top of a ChatModel
type TokenEnricher struct {
	model       ChatModel
	callTimeout time.Duration
	logger      *slog.Logger
}

// NewTokenEnricher creates an enricher. A zero callTimeout leaves model calls
// bounded only by the caller's context.
func NewTokenEnricher(model ChatModel, callTimeout time.Duration, logger *slog.Logger) *TokenEnricher {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenEnricher{
		model:       model,
		callTimeout: callTimeout,
		logger:      logger,
	}
}

// Enrich issues the insight and honeypot requests concurrently. The first
// failure cancels the other request.
func (e *TokenEnricher) Enrich(ctx context.Context, record models.AnalyticsRecord) (*models.EnrichmentResult, error) {
	prompt := BuildPrompt(record)

	var (
		insight    *models.Insight
		isHoneypot bool
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		reply, err := e.ask(gctx, prompt, insightRequest)
		if err != nil {
			return err
		}
		insight, err = ParseInsight(reply)
		return err
	})

	g.Go(func() error {
		reply, err := e.ask(gctx, prompt, honeypotRequest)
		if err != nil {
			return err
		}
		isHoneypot, err = ParseVerdict(reply)
		return err
	})

	if err := g.Wait(); err != nil {
		e.logger.Error("enrichment failed", "token", record.TokenSymbol, "err", err)
		return nil, err
	}

	return &models.EnrichmentResult{
		Insight:    *insight,
		IsHoneypot: isHoneypot,
	}, nil
}

func (e *TokenEnricher) ask(ctx context.Context, prompt, request string) (string, error) {
	if e.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.callTimeout)
		defer cancel()
	}

	reply, err := e.model.CreateChatCompletion(ctx, []Message{
		{Role: RoleSystem, Content: prompt},
		{Role: RoleUser, Content: request},
	})
	if err != nil {
		return "", &EnrichmentError{Kind: ModelUnavailable, Err: err}
	}

	return strings.TrimSpace(reply), nil
}

// ParseInsight decodes the insight reply. The reply must be a bare JSON
// object carrying every insight field.
func ParseInsight(reply string) (*models.Insight, error) {
	body := bytes.TrimSpace([]byte(reply))
	if len(body) == 0 || body[0] != '{' {
		return nil, &EnrichmentError{Kind: MalformedInsight, Reply: reply, Err: fmt.Errorf("reply is not a bare object")}
	}

	var insight models.Insight
	if err := json.Unmarshal(body, &insight); err != nil {
		return nil, &EnrichmentError{Kind: MalformedInsight, Reply: reply, Err: err}
	}

	fields := []struct {
		name  string
		value json.RawMessage
	}{
		{"summary", insight.Summary},
		{"tokenInfo", insight.TokenInfo},
		{"warnings", insight.Warnings},
		{"actionableAdvice", insight.ActionableAdvice},
		{"valueAndMarketCap", insight.ValueAndMarketCap},
	}
	for _, f := range fields {
		if len(f.value) == 0 || bytes.Equal(f.value, []byte("null")) {
			return nil, &EnrichmentError{Kind: MalformedInsight, Reply: reply, Err: fmt.Errorf("missing field %s", f.name)}
		}
	}

	return &insight, nil
}

// ParseVerdict accepts exactly "true" or "false" after trimming surrounding
// whitespace. Any other spelling, including "TRUE", is rejected.
func ParseVerdict(reply string) (bool, error) {
	switch strings.TrimSpace(reply) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, &EnrichmentError{Kind: UnexpectedVerdictFormat, Reply: reply}
	}
}
