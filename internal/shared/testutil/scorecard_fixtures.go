package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/encoding/charmap"
)

// DefaultInputName is the file name the dashboard looks for by default.
const DefaultInputName = "grau-1.csv"

// SampleScorecardCSV is a small but complete scorecard export.
//
//	score 35 -> "Grau 2"; 5 evaluable requirements, 3 met;
//	3 theme totals (10, 20, 5); bands 0-20, 21-40, 41-60;
//	one count_invalid warning on line 9.
const SampleScorecardCSV = "Tema Principal;Requisitos Necessarios;Presente;Ausente;\n" +
	"Análise do Desafio Tecnológico;Problema definido;1;0;\n" +
	"Análise do Desafio Tecnológico;Solução inovadora;0;1;\n" +
	"Análise do Desafio Tecnológico;Total Geral Análise do Desafio Tecnológico;10;5;\n" +
	"Avaliação de Recursos e Metodologia;Equipe qualificada;1;0;\n" +
	"Avaliação de Recursos e Metodologia;Metodologia ágil;1;0;\n" +
	"Avaliação de Recursos e Metodologia;Total Geral Avaliação de Recursos e Metodologia;20;0;\n" +
	"Indicadores de Projeto Rotineiro;Cronograma;0;1;\n" +
	"Indicadores de Projeto Rotineiro;Orçamento;abc;;\n" +
	"Indicadores de Projeto Rotineiro;Total Geral Indicadores de Projeto Rotineiro;5;10;\n" +
	"Outros;Item extra;1;0;\n" +
	"Resultado;Pontuação Geral Final;35;;\n" +
	"Classificação por Faixas;Grau 1;0-20;;\n" +
	"Classificação por Faixas;Grau 2;21-40;;\n" +
	"Classificação por Faixas;Grau 3;41-60;;\n"

// EncodeLatin1 converts UTF-8 test content to ISO-8859-1 bytes.
func EncodeLatin1(t *testing.T, content string) []byte {
	t.Helper()
	encoded, err := charmap.ISO8859_1.NewEncoder().String(content)
	if err != nil {
		t.Fatalf("encode latin1: %v", err)
	}
	return []byte(encoded)
}

// WriteScorecardFile writes content as a latin1 grau-1.csv inside dir and
// returns its path.
func WriteScorecardFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, DefaultInputName)
	if err := os.WriteFile(path, EncodeLatin1(t, content), 0o644); err != nil {
		t.Fatalf("write scorecard: %v", err)
	}
	return path
}

// ReadFileBytes reads a file or fails the test.
func ReadFileBytes(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return data
}
