package ai

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/songzhibin97/splscan/internal/models"
)

const insightReply = `{"summary":"Foo is a small token","tokenInfo":{"name":"Foo","symbol":"FOO","decimals":6},"warnings":["low liquidity"],"actionableAdvice":"Do your own research","valueAndMarketCap":{"price":"$0","marketCap":0}}`

// fakeModel answers by the user request of each conversation
type fakeModel struct {
	insight    string
	verdict    string
	insightErr error
	verdictErr error
	delay      time.Duration
	calls      atomic.Int32
	lastSystem atomic.Value
}

func (m *fakeModel) CreateChatCompletion(ctx context.Context, messages []Message) (string, error) {
	m.calls.Add(1)
	m.lastSystem.Store(messages[0].Content)

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if messages[len(messages)-1].Content == insightRequest {
		return m.insight, m.insightErr
	}
	return m.verdict, m.verdictErr
}

func testRecord() models.AnalyticsRecord {
	return models.AnalyticsRecord{
		TokenName:       "Foo",
		TokenSymbol:     "FOO",
		TotalSupply:     "1000000",
		FormattedSupply: "1",
		Decimals:        6,
		HoldersCount:    2,
		Price:           0,
		Exchange:        models.NotAvailable,
		PairLabel:       models.NotAvailable,
		MarketCap:       0,
	}
}

func TestBuildPrompt(t *testing.T) {
	record := testRecord()
	record.Price = 0.25
	record.MarketCap = 250000

	prompt := BuildPrompt(record)

	want := strings.Join([]string{
		"- Token Name: Foo",
		"- Symbol: FOO",
		"- Total Supply: 1000000",
		"- Decimal: 6",
		"- price : $0.25",
		"- marketCap : 250000",
		"- numbers of holders : 2",
	}, "\n")
	assert.Contains(t, prompt, want)
	assert.Contains(t, prompt, "valueAndMarketCap")
	assert.Equal(t, prompt, BuildPrompt(record))
}

func TestBuildPrompt_UnknownHolderCount(t *testing.T) {
	record := testRecord()
	record.HoldersCount = 0

	prompt := BuildPrompt(record)

	assert.Contains(t, prompt, "- numbers of holders : N/A\n")
	assert.NotContains(t, prompt, "numbers of holders : 0")
}

func TestTokenEnricher_Enrich(t *testing.T) {
	model := &fakeModel{insight: insightReply, verdict: " false\n"}
	enricher := NewTokenEnricher(model, time.Second, nil)

	record := testRecord()
	result, err := enricher.Enrich(context.Background(), record)

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsHoneypot)
	assert.Equal(t, int32(2), model.calls.Load())
	assert.Equal(t, BuildPrompt(record), model.lastSystem.Load())

	assert.JSONEq(t, `"Foo is a small token"`, string(result.Insight.Summary))
	assert.JSONEq(t, `{"name":"Foo","symbol":"FOO","decimals":6}`, string(result.Insight.TokenInfo))
	assert.JSONEq(t, `["low liquidity"]`, string(result.Insight.Warnings))
	assert.JSONEq(t, `"Do your own research"`, string(result.Insight.ActionableAdvice))
	assert.JSONEq(t, `{"price":"$0","marketCap":0}`, string(result.Insight.ValueAndMarketCap))
}

func TestTokenEnricher_Errors(t *testing.T) {
	tests := []struct {
		name     string
		model    *fakeModel
		wantKind EnrichmentErrorKind
	}{
		{
			name:     "insight call fails",
			model:    &fakeModel{insightErr: errors.New("401 unauthorized"), verdict: "false"},
			wantKind: ModelUnavailable,
		},
		{
			name:     "verdict call fails",
			model:    &fakeModel{insight: insightReply, verdictErr: errors.New("429 rate limited")},
			wantKind: ModelUnavailable,
		},
		{
			name:     "fenced insight",
			model:    &fakeModel{insight: "```json\n" + insightReply + "\n```", verdict: "true"},
			wantKind: MalformedInsight,
		},
		{
			name:     "verdict is not a boolean",
			model:    &fakeModel{insight: insightReply, verdict: "maybe"},
			wantKind: UnexpectedVerdictFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enricher := NewTokenEnricher(tt.model, 0, nil)

			result, err := enricher.Enrich(context.Background(), testRecord())

			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, IsKind(err, tt.wantKind), "got %v", err)
		})
	}
}

func TestTokenEnricher_CallTimeout(t *testing.T) {
	model := &fakeModel{insight: insightReply, verdict: "true", delay: time.Second}
	enricher := NewTokenEnricher(model, 20*time.Millisecond, nil)

	_, err := enricher.Enrich(context.Background(), testRecord())

	require.Error(t, err)
	assert.True(t, IsKind(err, ModelUnavailable))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// stallingModel fails one request at once and holds the other until its
// context ends
type stallingModel struct {
	failRequest string
	err         error
	stalled     chan error
}

func (m *stallingModel) CreateChatCompletion(ctx context.Context, messages []Message) (string, error) {
	if messages[len(messages)-1].Content == m.failRequest {
		return "", m.err
	}
	select {
	case <-ctx.Done():
		m.stalled <- ctx.Err()
		return "", ctx.Err()
	case <-time.After(5 * time.Second):
		m.stalled <- nil
		if messages[len(messages)-1].Content == insightRequest {
			return insightReply, nil
		}
		return "false", nil
	}
}

func TestTokenEnricher_FirstFailureCancelsOther(t *testing.T) {
	tests := []struct {
		name        string
		failRequest string
	}{
		{name: "insight fails while verdict pending", failRequest: insightRequest},
		{name: "verdict fails while insight pending", failRequest: honeypotRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			boom := errors.New("502 bad gateway")
			model := &stallingModel{failRequest: tt.failRequest, err: boom, stalled: make(chan error, 1)}
			enricher := NewTokenEnricher(model, 0, nil)

			start := time.Now()
			result, err := enricher.Enrich(context.Background(), testRecord())
			elapsed := time.Since(start)

			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, IsKind(err, ModelUnavailable))
			assert.ErrorIs(t, err, boom)
			assert.Less(t, elapsed, time.Second)
			assert.ErrorIs(t, <-model.stalled, context.Canceled)
		})
	}
}

func TestParseInsight(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		wantErr bool
	}{
		{name: "bare object", reply: insightReply},
		{name: "surrounding whitespace", reply: "\n  " + insightReply + "\n"},
		{name: "capitalised keys", reply: `{"Summary":"s","TokenInfo":"t","Warnings":"w","ActionableAdvice":"a","ValueAndMarketCap":"v"}`},
		{name: "prose", reply: "Here is my analysis", wantErr: true},
		{name: "json prefix", reply: "json" + insightReply, wantErr: true},
		{name: "array", reply: `[1,2]`, wantErr: true},
		{name: "truncated", reply: `{"summary":"s"`, wantErr: true},
		{name: "missing field", reply: `{"summary":"s","tokenInfo":"t","warnings":"w","actionableAdvice":"a"}`, wantErr: true},
		{name: "null field", reply: `{"summary":null,"tokenInfo":"t","warnings":"w","actionableAdvice":"a","valueAndMarketCap":"v"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			insight, err := ParseInsight(tt.reply)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsKind(err, MalformedInsight))
				assert.Nil(t, insight)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, insight.Summary)
		})
	}
}

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		reply   string
		want    bool
		wantErr bool
	}{
		{reply: "true", want: true},
		{reply: "false", want: false},
		{reply: " true\n", want: true},
		{reply: "\tfalse ", want: false},
		{reply: "TRUE", wantErr: true},
		{reply: "False", wantErr: true},
		{reply: "maybe", wantErr: true},
		{reply: "true.", wantErr: true},
		{reply: `"true"`, wantErr: true},
		{reply: "yes", wantErr: true},
		{reply: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			got, err := ParseVerdict(tt.reply)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsKind(err, UnexpectedVerdictFormat))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
