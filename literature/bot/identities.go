package bot

import (
	"math/rand"
	"strings"

	"literature-lite/literature"
)

type persona struct {
	name   string
	avatar string
}

var personas = []persona{
	{"Ada", "owl"},
	{"Bashir", "fox"},
	{"Chen", "crane"},
	{"Dara", "otter"},
	{"Emeka", "lion"},
	{"Freya", "hare"},
	{"Goran", "bear"},
	{"Hana", "koi"},
	{"Ines", "swan"},
	{"Jomo", "rhino"},
	{"Kaveh", "lynx"},
	{"Lena", "wren"},
}

// Identities draws n distinct bot identities from the pool.
func Identities(n int, rng *rand.Rand) []literature.Identity {
	idx := rng.Perm(len(personas))
	out := make([]literature.Identity, 0, n)
	for i := 0; i < n && i < len(idx); i++ {
		p := personas[idx[i]]
		out = append(out, literature.Identity{
			ID:     "bot-" + strings.ToLower(p.name),
			Name:   p.name,
			Avatar: p.avatar,
		})
	}
	return out
}
