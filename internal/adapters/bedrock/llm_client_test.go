package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mikey/upi-risk-engine/internal/core"
	"github.com/mikey/upi-risk-engine/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeInvoker struct {
	body  []byte
	err   error
	input *bedrockruntime.InvokeModelInput
}

func (f *fakeInvoker) InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &bedrockruntime.InvokeModelOutput{Body: f.body}, nil
}

func newTestClient(modelID string, inv *fakeInvoker) *BedrockClient {
	logger := zap.NewNop()
	return NewBedrockClient(inv, modelID, 300, 0.1, 0.9, 2000, logger, utils.NewTextProcessor(logger))
}

func TestAssessContextClaude(t *testing.T) {
	inv := &fakeInvoker{body: []byte(`{"content":[{"type":"text","text":"{\"risk_score\":0.9,\"explanation\":\"refund scam\",\"flags\":[\"refund\"]}"}]}`)}
	c := newTestClient("anthropic.claude-3-haiku-20240307-v1:0", inv)

	a, err := c.AssessContext(context.Background(), core.ContextRequest{Text: "Pay 1 rupee to receive your refund"})
	require.NoError(t, err)
	assert.Equal(t, 0.9, a.RiskScore)
	assert.Equal(t, "refund scam", a.Explanation)

	var sent map[string]interface{}
	require.NoError(t, json.Unmarshal(inv.input.Body, &sent))
	assert.Equal(t, anthropicVersion, sent["anthropic_version"])
	assert.Contains(t, sent, "messages")
}

func TestAssessContextTitan(t *testing.T) {
	inv := &fakeInvoker{body: []byte(`{"results":[{"outputText":"{\"risk_score\":0.2,\"explanation\":\"looks fine\"}"}]}`)}
	c := newTestClient("amazon.titan-text-express-v1", inv)

	a, err := c.AssessContext(context.Background(), core.ContextRequest{Text: "rent for March"})
	require.NoError(t, err)
	assert.Equal(t, 0.2, a.RiskScore)

	var sent map[string]interface{}
	require.NoError(t, json.Unmarshal(inv.input.Body, &sent))
	assert.Contains(t, sent, "inputText")
}

func TestAssessContextGeneric(t *testing.T) {
	inv := &fakeInvoker{body: []byte(`{"output":"{\"risk_score\":0.5}"}`)}
	c := newTestClient("meta.llama3-8b-instruct-v1:0", inv)

	a, err := c.AssessContext(context.Background(), core.ContextRequest{Counterparty: "x@ybl"})
	require.NoError(t, err)
	assert.Equal(t, 0.5, a.RiskScore)
	assert.Equal(t, "meta.llama3-8b-instruct-v1:0", a.ModelUsed)
}

func TestAssessContextErrors(t *testing.T) {
	c := newTestClient("amazon.titan-text-express-v1", &fakeInvoker{err: errors.New("throttled")})
	_, err := c.AssessContext(context.Background(), core.ContextRequest{Text: "x"})
	assert.ErrorContains(t, err, "throttled")

	c = newTestClient("amazon.titan-text-express-v1", &fakeInvoker{body: []byte(`{"results":[]}`)})
	_, err = c.AssessContext(context.Background(), core.ContextRequest{Text: "x"})
	assert.Error(t, err)

	c = newTestClient("anthropic.claude-3-haiku-20240307-v1:0", &fakeInvoker{body: []byte(`{"content":[]}`)})
	_, err = c.AssessContext(context.Background(), core.ContextRequest{Text: "x"})
	assert.Error(t, err)
}
