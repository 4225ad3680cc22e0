package bot

import (
	"fmt"
	"math/rand"
	"sort"

	"literature-lite/card"
	"literature-lite/literature"
)

// Heuristic ranks candidate moves by tracker weight: a known owner counts W,
// an inferred one W/2 and a possible one its share of W. Equal weights are
// broken by the seeded rng.
type Heuristic struct {
	maxWeight float64
	rng       *rand.Rand
}

// NewHeuristic creates a heuristic bot. maxWeight <= 0 uses the game's W.
func NewHeuristic(seed int64, maxWeight float64) *Heuristic {
	return &Heuristic{
		maxWeight: maxWeight,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

func (h *Heuristic) Name() string { return "heuristic" }

// Decide tries, in order, a transfer, a claim and an ask.
func (h *Heuristic) Decide(view literature.PlayerView) (Decision, error) {
	b, err := h.newBoard(view)
	if err != nil {
		return Decision{}, err
	}
	if d, ok := h.suggestTransfer(b); ok {
		return d, nil
	}
	if d, ok := h.suggestClaim(b); ok {
		return d, nil
	}
	if d, ok := h.suggestAsk(b); ok {
		return d, nil
	}
	return Decision{}, ErrNoMove
}

// board is the bot's reading of a PlayerView.
type board struct {
	view  literature.PlayerView
	deck  *card.Deck
	w     float64
	me    string
	team  map[string]string
	cards map[string]int
	hand  card.CardList
}

func (h *Heuristic) newBoard(view literature.PlayerView) (*board, error) {
	deck, err := card.NewDeck(view.Config.Layout, view.Config.ExcludedRanks)
	if err != nil {
		return nil, fmt.Errorf("bot: %w", err)
	}
	w := h.maxWeight
	if w <= 0 {
		w = view.Config.MaxWeight
	}
	if w <= 0 {
		w = literature.DefaultMaxWeight
	}
	b := &board{
		view:  view,
		deck:  deck,
		w:     w,
		me:    view.You,
		team:  make(map[string]string, len(view.Players)),
		cards: make(map[string]int, len(view.Players)),
		hand:  card.CardList(view.Hand),
	}
	for _, p := range view.Players {
		b.team[p.ID] = p.TeamID
		b.cards[p.ID] = p.CardCount
	}
	return b, nil
}

func (b *board) teammate(id string) bool {
	return id != b.me && b.team[id] != "" && b.team[id] == b.team[b.me]
}

func (b *board) opponent(id string) bool {
	return b.team[id] != "" && b.team[id] != b.team[b.me]
}

func (b *board) ours(id string) bool { return id == b.me || b.teammate(id) }

func (b *board) openBooks() []card.Book {
	var out []card.Book
	for _, book := range b.deck.Books() {
		if _, done := b.view.Claimed[book.ID]; !done {
			out = append(out, book)
		}
	}
	return out
}

// owner returns the known or inferred holder of c with its weight.
func (b *board) owner(c card.Card) (string, float64, bool) {
	belief, ok := b.view.Beliefs[c]
	if !ok {
		return "", 0, false
	}
	if belief.Known != "" {
		return belief.Known, b.w, true
	}
	if belief.Inferred != "" {
		return belief.Inferred, b.w / 2, true
	}
	return "", 0, false
}

func (b *board) holdsAny(book card.Book) bool {
	for _, c := range book.Cards {
		if b.hand.Contains(c) {
			return true
		}
	}
	return false
}

// suggestTransfer only fires right after the bot's own successful claim.
// Teammates score for every card they are known or inferred to hold in a
// resolved book the team does not already own outright.
func (h *Heuristic) suggestTransfer(b *board) (Decision, bool) {
	last, ok := b.view.LastMove()
	if !ok || last.Kind != literature.MoveClaim || last.Actor != b.me || !last.Success {
		return Decision{}, false
	}
	score := make(map[string]float64)
	for _, book := range b.openBooks() {
		resolved, confirmed := true, true
		for _, c := range book.Cards {
			owner, _, ok := b.owner(c)
			if !ok {
				resolved = false
				break
			}
			if b.view.Beliefs[c].Known == "" || !b.ours(owner) {
				confirmed = false
			}
		}
		if !resolved || confirmed {
			continue
		}
		for _, c := range book.Cards {
			owner, w, _ := b.owner(c)
			if b.teammate(owner) && b.cards[owner] > 0 {
				score[owner] += w
			}
		}
	}

	type candidate struct {
		id     string
		weight float64
		cards  int
	}
	cands := make([]candidate, 0, len(score))
	for id, w := range score {
		cands = append(cands, candidate{id: id, weight: w, cards: b.cards[id]})
	}
	if len(cands) == 0 {
		return Decision{}, false
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].id < cands[j].id })
	top := best(h.rng, cands, func(a, c candidate) bool {
		if a.weight != c.weight {
			return a.weight > c.weight
		}
		return a.cards > c.cards
	})
	return Decision{Kind: literature.MoveTransfer, Target: top.id, Weight: top.weight}, true
}

// suggestClaim picks the heaviest book whose every card is resolved to the
// bot's team, with at least one card in the bot's own hand.
func (h *Heuristic) suggestClaim(b *board) (Decision, bool) {
	var cands []Decision
	for _, book := range b.openBooks() {
		claim := make(map[card.Card]string, len(book.Cards))
		weight := 0.0
		mine, ok := false, true
		for _, c := range book.Cards {
			owner, w, resolved := b.owner(c)
			if !resolved || !b.ours(owner) {
				ok = false
				break
			}
			if owner == b.me {
				mine = true
			}
			claim[c] = owner
			weight += w
		}
		if ok && mine {
			cands = append(cands, Decision{Kind: literature.MoveClaim, Claim: claim, Weight: weight})
		}
	}
	if len(cands) == 0 {
		return Decision{}, false
	}
	return best(h.rng, cands, func(a, c Decision) bool { return a.Weight > c.Weight }), true
}

// suggestAsk asks for a missing card of a book the bot holds, from the
// opponent most likely to have it.
func (h *Heuristic) suggestAsk(b *board) (Decision, bool) {
	var cands []Decision
	for _, book := range b.openBooks() {
		if !b.holdsAny(book) {
			continue
		}
		for _, c := range book.Cards {
			if b.hand.Contains(c) {
				continue
			}
			belief, ok := b.view.Beliefs[c]
			if !ok {
				continue
			}
			if belief.Known != "" {
				if b.opponent(belief.Known) && b.cards[belief.Known] > 0 {
					cands = append(cands, Decision{Kind: literature.MoveAsk, Target: belief.Known, Card: c, Weight: b.w})
				}
				continue
			}
			for _, id := range belief.Candidates() {
				if b.opponent(id) && b.cards[id] > 0 {
					cands = append(cands, Decision{Kind: literature.MoveAsk, Target: id, Card: c, Weight: belief.Possible[id]})
				}
			}
		}
	}
	if len(cands) == 0 {
		return Decision{}, false
	}
	return best(h.rng, cands, func(a, c Decision) bool { return a.Weight > c.Weight }), true
}

// Guess is the fallback when Decide finds nothing: claim a held book whose
// remaining candidates all sit on the bot's team, naming the heaviest
// candidate for each card. It can be wrong.
func (h *Heuristic) Guess(view literature.PlayerView) (Decision, error) {
	b, err := h.newBoard(view)
	if err != nil {
		return Decision{}, err
	}
	var cands []Decision
	for _, book := range b.openBooks() {
		if !b.holdsAny(book) {
			continue
		}
		claim := make(map[card.Card]string, len(book.Cards))
		weight := 0.0
		ok := true
		for _, c := range book.Cards {
			owner, w, resolved := b.owner(c)
			if !resolved {
				owner, w = b.heaviestOurs(c)
			}
			if owner == "" || !b.ours(owner) {
				ok = false
				break
			}
			claim[c] = owner
			weight += w
		}
		if ok {
			cands = append(cands, Decision{Kind: literature.MoveClaim, Claim: claim, Weight: weight})
		}
	}
	if len(cands) == 0 {
		return Decision{}, ErrNoMove
	}
	return best(h.rng, cands, func(a, c Decision) bool { return a.Weight > c.Weight }), nil
}

// heaviestOurs returns the strongest candidate for c, or "" if an opponent
// could still hold it.
func (b *board) heaviestOurs(c card.Card) (string, float64) {
	belief := b.view.Beliefs[c]
	top, weight := "", -1.0
	for _, id := range belief.Candidates() {
		if !b.ours(id) {
			return "", 0
		}
		if w := belief.Possible[id]; w > weight {
			top, weight = id, w
		}
	}
	return top, weight
}

// best shuffles items so equal ones come out in rng order, then returns the
// first under before.
func best[T any](rng *rand.Rand, items []T, before func(a, b T) bool) T {
	rng.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
	sort.SliceStable(items, func(i, j int) bool { return before(items[i], items[j]) })
	return items[0]
}
