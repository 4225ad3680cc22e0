package card

import (
	"fmt"
	"strings"
)

// Layout decides how the cards in play are grouped into books.
type Layout byte

const (
	LayoutHalfSuit Layout = iota + 1 // 6-card books: lower and upper half of each suit
	LayoutRank                       // 4-card books: one rank across all suits
)

func (l Layout) String() string {
	switch l {
	case LayoutHalfSuit:
		return "half_suit"
	case LayoutRank:
		return "rank"
	}
	return "unknown"
}

func (l Layout) MarshalText() ([]byte, error) {
	if l != LayoutHalfSuit && l != LayoutRank {
		return nil, fmt.Errorf("invalid layout %d", byte(l))
	}
	return []byte(l.String()), nil
}

func (l *Layout) UnmarshalText(b []byte) error {
	parsed, err := ParseLayout(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "half_suit", "halfsuit", "half-suit":
		return LayoutHalfSuit, nil
	case "rank":
		return LayoutRank, nil
	}
	return 0, fmt.Errorf("invalid layout: %q", s)
}

type BookID uint8

// Book is a group of cards that can only be declared together.
type Book struct {
	ID    BookID
	Name  string
	Cards []Card
}

func (b Book) Contains(c Card) bool {
	for _, cc := range b.Cards {
		if cc == c {
			return true
		}
	}
	return false
}

// Deck is the immutable card set of one variant: which cards are in play and
// which book each belongs to.
type Deck struct {
	layout   Layout
	excluded []Rank
	cards    []Card
	books    []Book
	bookOf   map[Card]BookID
}

// NewDeck builds the deck for a layout with the given ranks removed.
// Half-suit layouts need exactly twelve ranks per suit.
func NewDeck(layout Layout, excluded []Rank) (*Deck, error) {
	skip := make(map[Rank]bool, len(excluded))
	for _, r := range excluded {
		if !r.Valid() {
			return nil, fmt.Errorf("invalid excluded rank %d", byte(r))
		}
		skip[r] = true
	}
	ranks := make([]Rank, 0, len(Ranks))
	for _, r := range Ranks {
		if !skip[r] {
			ranks = append(ranks, r)
		}
	}

	d := &Deck{
		layout:   layout,
		excluded: append([]Rank(nil), excluded...),
		bookOf:   make(map[Card]BookID, len(ranks)*len(Suits)),
	}
	for _, s := range Suits {
		for _, r := range ranks {
			d.cards = append(d.cards, New(r, s))
		}
	}

	switch layout {
	case LayoutHalfSuit:
		if len(ranks) != 12 {
			return nil, fmt.Errorf("half-suit books need 12 ranks per suit, got %d", len(ranks))
		}
		for _, s := range Suits {
			d.addBook("low "+s.Name(), suitCards(s, ranks[:6]))
			d.addBook("high "+s.Name(), suitCards(s, ranks[6:]))
		}
	case LayoutRank:
		if len(ranks) == 0 {
			return nil, fmt.Errorf("rank books need at least one rank")
		}
		for _, r := range ranks {
			cs := make([]Card, 0, len(Suits))
			for _, s := range Suits {
				cs = append(cs, New(r, s))
			}
			d.addBook(r.Plural(), cs)
		}
	default:
		return nil, fmt.Errorf("invalid layout %d", byte(layout))
	}
	return d, nil
}

func suitCards(s Suit, ranks []Rank) []Card {
	out := make([]Card, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, New(r, s))
	}
	return out
}

func (d *Deck) addBook(name string, cards []Card) {
	id := BookID(len(d.books))
	d.books = append(d.books, Book{ID: id, Name: name, Cards: cards})
	for _, c := range cards {
		d.bookOf[c] = id
	}
}

func (d *Deck) Layout() Layout { return d.layout }

func (d *Deck) Excluded() []Rank { return append([]Rank(nil), d.excluded...) }

// Size is the number of cards in play.
func (d *Deck) Size() int { return len(d.cards) }

func (d *Deck) BookCount() int { return len(d.books) }

// Cards returns a fresh copy in suit-then-rank order.
func (d *Deck) Cards() CardList {
	out := make(CardList, len(d.cards))
	copy(out, d.cards)
	return out
}

func (d *Deck) Contains(c Card) bool {
	_, ok := d.bookOf[c]
	return ok
}

func (d *Deck) BookOf(c Card) (BookID, bool) {
	id, ok := d.bookOf[c]
	return id, ok
}

func (d *Deck) Book(id BookID) (Book, bool) {
	if int(id) >= len(d.books) {
		return Book{}, false
	}
	b := d.books[id]
	b.Cards = append([]Card(nil), b.Cards...)
	return b, true
}

func (d *Deck) Books() []Book {
	out := make([]Book, 0, len(d.books))
	for _, b := range d.books {
		b.Cards = append([]Card(nil), b.Cards...)
		out = append(out, b)
	}
	return out
}
