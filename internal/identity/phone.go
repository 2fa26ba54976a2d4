package identity

import (
	"errors"

	"github.com/nyaruka/phonenumbers"
)

// ErrInvalidIdentity indica que o número informado não pôde ser normalizado
var ErrInvalidIdentity = errors.New("invalid phone number")

const defaultRegion = "US"

// Normalize converte um número de telefone em qualquer formato para E.164
// (ex: "+15555551234"). O E.164 é o token canônico de identidade do sistema.
func Normalize(raw string) (string, error) {
	num, err := phonenumbers.Parse(raw, defaultRegion)
	if err != nil {
		return "", ErrInvalidIdentity
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalidIdentity
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// FormatForDisplay formata um E.164 no formato nacional (ex: "(555) 555-1234").
// Se o parse falhar, devolve a string original.
func FormatForDisplay(e164 string) string {
	num, err := phonenumbers.Parse(e164, "")
	if err != nil {
		return e164
	}
	return phonenumbers.Format(num, phonenumbers.NATIONAL)
}
