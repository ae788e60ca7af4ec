package scoring

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// AnswerType define o tipo de resposta esperado por uma bet.
type AnswerType string

const (
	AnswerNumber AnswerType = "NUMBER"
	AnswerText   AnswerType = "TEXT"
)

var ErrBadAnswerType = errors.New("unknown answer type")

// ParseAnswerType valida a representação textual do tipo.
func ParseAnswerType(raw string) (AnswerType, error) {
	switch AnswerType(strings.ToUpper(strings.TrimSpace(raw))) {
	case AnswerNumber:
		return AnswerNumber, nil
	case AnswerText:
		return AnswerText, nil
	}
	return "", ErrBadAnswerType
}

// Answer é um valor etiquetado pelo AnswerType da bet: exatamente um dos
// campos Number/Text é significativo. Evita "type sniff" em runtime no
// caminho de scoring.
type Answer struct {
	Type   AnswerType
	Number int64
	Text   string
}

func NumberAnswer(n int64) Answer { return Answer{Type: AnswerNumber, Number: n} }
func TextAnswer(s string) Answer  { return Answer{Type: AnswerText, Text: s} }

// ParseAnswer converte a entrada crua do usuário para o tipo da bet.
// A coerção numérica falha aqui, na submissão, nunca no scoring.
func ParseAnswer(t AnswerType, raw string) (Answer, error) {
	switch t {
	case AnswerNumber:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return Answer{}, fmt.Errorf("numeric answer expected: %w", err)
		}
		return NumberAnswer(n), nil
	case AnswerText:
		return TextAnswer(strings.TrimSpace(raw)), nil
	}
	return Answer{}, ErrBadAnswerType
}

func (a Answer) String() string {
	if a.Type == AnswerNumber {
		return strconv.FormatInt(a.Number, 10)
	}
	return a.Text
}
