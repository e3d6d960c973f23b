package services

import (
	"errors"
	"fmt"
	"path/filepath"

	"scorecard/internal/scorecard"
)

// ErrInvalidFilter marks filter input that could not be parsed.
var ErrInvalidFilter = errors.New("invalid filter")

// Messages shown to people when a load fails, on the page and in the CLI.
const (
	MsgInputNotFound = "Erro: Arquivo `%s` não encontrado. Por favor, certifique-se que o arquivo está no mesmo diretório que o script."
	MsgUnexpected    = "Ocorreu um erro inesperado ao processar os dados: %v"
)

// LoadFailureMessage picks the message for a failed load of path.
func LoadFailureMessage(path string, err error) string {
	if errors.Is(err, scorecard.ErrInputNotFound) {
		return fmt.Sprintf(MsgInputNotFound, filepath.Base(path))
	}
	return fmt.Sprintf(MsgUnexpected, err)
}
