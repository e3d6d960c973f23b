package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scorecard/internal/config"
	"scorecard/internal/scorecard"
	"scorecard/internal/shared/testutil"
)

func TestNewLoader_FollowsInputConfig(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	in := config.Default().Input
	in.Encoding = "utf-8"
	in.Columns = "positional"

	// UTF-8 content with a header the header matcher would not recognise.
	content := "A;B;C;D\n" +
		"Análise do Desafio Tecnológico;Problema definido;1;0\n" +
		"Resultado;Pontuação Geral Final;12;\n" +
		"Classificação por Faixas;Grau 1;0-20;\n"
	path := filepath.Join(t.TempDir(), "utf8.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	b, err := NewLoader(in, logger).Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 12, b.FinalScore)
	assert.Equal(t, "Grau 1", b.Classification)
	require.Len(t, b.Requirements, 1)
	assert.Equal(t, "Problema definido", b.Requirements[0].Label)
}

func TestNewCache(t *testing.T) {
	assert.Nil(t, NewCache(config.CacheConfig{Enabled: false, MaxEntries: 8}))

	c := NewCache(config.CacheConfig{Enabled: true, MaxEntries: 3, TTL: time.Minute})
	require.NotNil(t, c)
	stats := c.Stats()
	assert.Equal(t, 3, stats.MaxEntries)
	assert.Equal(t, float64(60), stats.TTLSeconds)
}

func TestLoadFailureMessage(t *testing.T) {
	missing := fmt.Errorf("open: %w", scorecard.ErrInputNotFound)
	assert.Equal(t,
		"Erro: Arquivo `grau-1.csv` não encontrado. Por favor, certifique-se que o arquivo está no mesmo diretório que o script.",
		LoadFailureMessage("/srv/data/grau-1.csv", missing))
	assert.Equal(t,
		"Ocorreu um erro inesperado ao processar os dados: boom",
		LoadFailureMessage("/srv/data/grau-1.csv", errors.New("boom")))
}
