package domain

import "errors"

// ErrorKind identifica a categoria estável de um erro de domínio,
// exposta ao caller junto com a mensagem legível.
type ErrorKind string

const (
	KindValidation          ErrorKind = "VALIDATION_ERROR"
	KindNotFound            ErrorKind = "NOT_FOUND"
	KindWagerClosed         ErrorKind = "WAGER_CLOSED"
	KindGameStarted         ErrorKind = "GAME_STARTED"
	KindInvalidStake        ErrorKind = "INVALID_STAKE"
	KindSelfAcceptance      ErrorKind = "SELF_ACCEPTANCE"
	KindDuplicateAcceptance ErrorKind = "DUPLICATE_ACCEPTANCE"
	KindGameNotFinished     ErrorKind = "GAME_NOT_FINISHED"
	KindInternal            ErrorKind = "INTERNAL_FAILURE"
)

// Error é um erro de domínio com categoria estável e mensagem legível
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return e.Message }

// E cria um erro de domínio
func E(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// KindOf extrai a categoria de um erro; erros não mapeados viram
// INTERNAL_FAILURE (falha inesperada de store/provider).
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// IsKind testa se um erro pertence a uma categoria
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
