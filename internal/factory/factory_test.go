package factory

import (
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/upi-risk-engine/internal/adapters/cache"
	"github.com/mikey/upi-risk-engine/internal/adapters/openai"
	"github.com/mikey/upi-risk-engine/internal/adapters/reports"
	"github.com/mikey/upi-risk-engine/internal/config"
	"github.com/mikey/upi-risk-engine/internal/metrics"
	"github.com/mikey/upi-risk-engine/internal/utils"
)

func newConfig(settings map[string]any) *config.Config {
	v := config.NewEmptyViper()
	for k, val := range settings {
		v.Set(k, val)
	}
	return config.NewFromViper(v)
}

func newLLMFactory(settings map[string]any) *LLMFactory {
	logger := zap.NewNop()
	return NewLLMFactory(newConfig(settings), logger, utils.NewTextProcessor(logger))
}

func TestCreateContextOracleDisabled(t *testing.T) {
	for _, provider := range []string{"", "none", "NONE"} {
		oracle, err := newLLMFactory(map[string]any{"llm.provider": provider}).CreateContextOracle()
		require.NoError(t, err)
		assert.Nil(t, oracle, "provider %q", provider)
	}
}

func TestCreateContextOracleMissingKey(t *testing.T) {
	for _, provider := range []string{"openai", "gemini"} {
		oracle, err := newLLMFactory(map[string]any{"llm.provider": provider}).CreateContextOracle()
		require.NoError(t, err)
		assert.Nil(t, oracle, "provider %q", provider)
	}
}

func TestCreateContextOracleOpenAI(t *testing.T) {
	oracle, err := newLLMFactory(map[string]any{
		"llm.provider":    "openai",
		"openai.api_key":  "sk-test",
		"openai.base_url": "http://127.0.0.1:1/v1",
	}).CreateContextOracle()
	require.NoError(t, err)
	assert.IsType(t, &openai.OpenAIClient{}, oracle)
}

func TestCreateContextOracleUnsupported(t *testing.T) {
	_, err := newLLMFactory(map[string]any{"llm.provider": "watson"}).CreateContextOracle()
	assert.ErrorContains(t, err, "unsupported LLM provider")
}

func TestCreateCacheRepository(t *testing.T) {
	logger := zap.NewNop()

	repo, err := NewCacheFactory(newConfig(nil), logger).CreateCacheRepository()
	require.NoError(t, err)
	mc, ok := repo.(*cache.MemoryCache)
	require.True(t, ok)
	mc.Stop()

	repo, err = NewCacheFactory(newConfig(map[string]any{"cache.enabled": false}), logger).CreateCacheRepository()
	require.NoError(t, err)
	assert.Nil(t, repo)

	_, err = NewCacheFactory(newConfig(map[string]any{"cache.type": "redis"}), logger).CreateCacheRepository()
	assert.ErrorContains(t, err, "unsupported cache type")
}

func TestCreateReportRepository(t *testing.T) {
	logger := zap.NewNop()

	repo, err := NewReportStoreFactory(newConfig(nil), logger).CreateReportRepository()
	require.NoError(t, err)
	assert.IsType(t, &reports.MemoryStore{}, repo)

	path := filepath.Join(t.TempDir(), "nested", "reports.db")
	repo, err = NewReportStoreFactory(newConfig(map[string]any{
		"reports.type":        "sqlite",
		"reports.sqlite_path": path,
	}), logger).CreateReportRepository()
	require.NoError(t, err)
	store, ok := repo.(*reports.SQLStore)
	require.True(t, ok)
	assert.NoError(t, store.Close())

	_, err = NewReportStoreFactory(newConfig(map[string]any{"reports.type": "csv"}), logger).CreateReportRepository()
	assert.ErrorContains(t, err, "unsupported report store type")
}

func TestCreateListeners(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := metrics.NewMetrics()

	listeners, err := NewListenerFactory(newConfig(nil), zap.NewNop(), nil, m).CreateListeners()
	require.NoError(t, err)
	require.Len(t, listeners, 1)
	assert.Equal(t, "http", listeners[0].Name())

	listeners, err = NewListenerFactory(newConfig(map[string]any{
		"server.http.enabled": false,
		"server.smtp.enabled": true,
	}), zap.NewNop(), nil, m).CreateListeners()
	require.NoError(t, err)
	require.Len(t, listeners, 1)
	assert.Equal(t, "smtp", listeners[0].Name())
}
