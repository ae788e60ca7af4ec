// Package scoring implementa o motor de pontuação de bets: ranking por
// distância para bets numéricas, partição por igualdade normalizada para
// bets de texto e bônus de acerto exato. Função pura de
// (resposta, palpites) -> delta de reedz por usuário; persistência fica
// a cargo do reward-worker.
package scoring

import (
	"sort"
	"strings"
)

// ExactMatchBonus é o bônus fixo por acerto exato, somado ao rank.
const ExactMatchBonus = 5

// Entry é o palpite de um participante. No máximo um por usuário.
type Entry struct {
	UserID string
	Value  Answer
}

// Distribute calcula o delta de reedz de cada participante.
// Conjunto vazio resulta em mapa vazio (não é erro).
func Distribute(resolved Answer, entries []Entry) map[string]int {
	if len(entries) == 0 {
		return map[string]int{}
	}

	if resolved.Type == AnswerNumber {
		return scoreNumeric(resolved.Number, entries)
	}
	return scoreText(resolved.Text, entries)
}

// scoreNumeric aplica competition ranking ("1224") por distância absoluta:
// o 1º grupo recebe N pontos e cada grupo seguinte recebe
// N - (participantes estritamente mais próximos). Empatados recebem o
// mesmo valor, sem divisão.
func scoreNumeric(resolved int64, entries []Entry) map[string]int {
	n := len(entries)

	type ranked struct {
		entry Entry
		dist  int64
	}
	rs := make([]ranked, 0, n)
	for _, e := range entries {
		rs = append(rs, ranked{entry: e, dist: abs64(e.Value.Number - resolved)})
	}
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].dist < rs[j].dist })

	awards := make(map[string]int, n)
	points := n
	for i, r := range rs {
		if i > 0 && r.dist != rs[i-1].dist {
			points = n - i
		}
		awards[r.entry.UserID] = points
	}

	// bônus por igualdade exata, independente do rank
	for _, e := range entries {
		if e.Value.Number == resolved {
			awards[e.UserID] += ExactMatchBonus
		}
	}

	return awards
}

// scoreText dá N+bônus para todo palpite normalizado igual à resposta e
// zero para o resto. Sem rateio entre vencedores.
func scoreText(resolved string, entries []Entry) map[string]int {
	n := len(entries)
	answer := Normalize(resolved)

	awards := make(map[string]int, n)
	for _, e := range entries {
		if Normalize(e.Value.Text) == answer {
			awards[e.UserID] = n + ExactMatchBonus
		} else {
			awards[e.UserID] = 0
		}
	}
	return awards
}

// Normalize torna a comparação de texto insensível a caixa e espaços.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
