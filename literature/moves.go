package literature

import (
	"fmt"

	"literature-lite/card"
)

const msgClaimShape = "A claim must name every card of exactly one set!"

func (g *Game) checkTurnLocked(actor string) error {
	switch g.status {
	case StatusInProgress:
	case StatusCompleted:
		return invalidState("The game is already over!")
	default:
		return invalidState("The game has not started yet!")
	}
	if _, ok := g.players[actor]; !ok {
		return notFound("Player %s is not in this game", actor)
	}
	if actor != g.turn {
		return ErrOutOfTurn
	}
	return nil
}

// Ask requests card c from target. A hit moves the card and keeps the turn,
// a miss passes the turn to target.
func (g *Game) Ask(actor, target string, c card.Card) (Move, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.checkTurnLocked(actor); err != nil {
		return Move{}, err
	}
	bookID, ok := g.deck.BookOf(c)
	if !ok {
		return Move{}, notFound("Card %s is not in play", c)
	}
	if _, done := g.claimed[bookID]; done {
		return Move{}, ruleViolation("This set has already been claimed!")
	}
	from, ok := g.players[target]
	if !ok {
		return Move{}, notFound("Player %s is not in this game", target)
	}
	if target == actor {
		return Move{}, ruleViolation("You cannot ask yourself!")
	}
	if g.sameTeamLocked(actor, target) {
		return Move{}, ruleViolation("You cannot ask your own teammate!")
	}
	asker := g.players[actor]
	if asker.holds(c) {
		return Move{}, ruleViolation("You cannot ask a card that you already have!")
	}
	if from.CardCount() == 0 {
		return Move{}, ruleViolation("You cannot ask a player who has no cards!")
	}
	book, _ := g.deck.Book(bookID)
	if g.cfg.StrictAsk && !holdsAny(asker, book.Cards) {
		return Move{}, ruleViolation("You must hold a card of the same set to ask for it!")
	}

	hit := from.holds(c)
	g.tracker.ObserveAsk(actor, target, c, book.Cards, hit)
	asker.stats.AsksMade++
	if hit {
		from.hand.Remove(c)
		asker.hand.Add(c)
		asker.hand.Sort()
		asker.stats.CardsTaken++
		from.stats.CardsGiven++
	}

	m := Move{
		Kind:    MoveAsk,
		Actor:   actor,
		Success: hit,
		Ask:     &AskMove{Target: target, Card: c},
	}
	if hit {
		m.Description = fmt.Sprintf("%s asked %s for %s and got it", asker.Name, from.Name, c)
	} else {
		m.Description = fmt.Sprintf("%s asked %s for %s but %s did not have it", asker.Name, from.Name, c, from.Name)
	}
	return g.commitLocked(m), nil
}

// Claim declares who holds every card of one book. The book leaves play
// either way; a wrong claim scores for the opponents.
func (g *Game) Claim(actor string, owners map[card.Card]string) (Move, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.checkTurnLocked(actor); err != nil {
		return Move{}, err
	}
	book, err := g.claimBookLocked(actor, owners)
	if err != nil {
		return Move{}, err
	}

	success := true
	holders := make(map[string]int, len(g.teamIDs)) // team id -> cards of the book held
	for _, c := range book.Cards {
		if !g.players[owners[c]].holds(c) {
			success = false
		}
		for _, pid := range g.order {
			if p := g.players[pid]; p.hand.Remove(c) {
				holders[p.TeamID]++
				break
			}
		}
	}

	claimant := g.players[actor]
	claimant.stats.ClaimsAttempted++
	winner := claimant.TeamID
	if success {
		claimant.stats.ClaimsSucceeded++
	} else {
		winner = g.failedClaimWinnerLocked(claimant.TeamID, holders)
	}
	t := g.teams[winner]
	t.Score++
	t.Books = append(t.Books, book.ID)
	g.claimed[book.ID] = winner
	g.tracker.Retire(book.Cards)
	if len(g.claimed) == g.deck.BookCount() {
		g.status = StatusCompleted
	}

	named := make(map[card.Card]string, len(owners))
	for c, pid := range owners {
		named[c] = pid
	}
	m := Move{
		Kind:    MoveClaim,
		Actor:   actor,
		Success: success,
		Claim: &ClaimMove{
			Book:        book.ID,
			BookName:    book.Name,
			Owners:      named,
			WinningTeam: winner,
		},
	}
	if success {
		m.Description = fmt.Sprintf("%s claimed the %s for %s", claimant.Name, book.Name, t.Name)
	} else {
		m.Description = fmt.Sprintf("%s got the %s wrong, %s takes the set", claimant.Name, book.Name, t.Name)
	}
	return g.commitLocked(m), nil
}

func (g *Game) claimBookLocked(actor string, owners map[card.Card]string) (card.Book, error) {
	if len(owners) == 0 {
		return card.Book{}, ruleViolation(msgClaimShape)
	}
	var bookID card.BookID
	first := true
	for c := range owners {
		id, ok := g.deck.BookOf(c)
		if !ok {
			return card.Book{}, notFound("Card %s is not in play", c)
		}
		if first {
			bookID, first = id, false
		} else if id != bookID {
			return card.Book{}, ruleViolation(msgClaimShape)
		}
	}
	book, _ := g.deck.Book(bookID)
	if len(owners) != len(book.Cards) {
		return card.Book{}, ruleViolation(msgClaimShape)
	}
	if _, done := g.claimed[bookID]; done {
		return card.Book{}, ruleViolation("This set has already been claimed!")
	}

	named := false
	team := ""
	for _, c := range book.Cards {
		pid := owners[c]
		p, ok := g.players[pid]
		if !ok {
			return card.Book{}, notFound("Player %s is not in this game", pid)
		}
		if pid == actor {
			named = true
		}
		if team == "" {
			team = p.TeamID
		} else if p.TeamID != team {
			return card.Book{}, ruleViolation("All cards of a claim must belong to one team!")
		}
	}
	if !named {
		return card.Book{}, ruleViolation("You must name yourself as the owner of at least one card!")
	}
	return book, nil
}

// failedClaimWinnerLocked picks the opposing team holding most of the book,
// first in team order on a tie.
func (g *Game) failedClaimWinnerLocked(claimTeam string, holders map[string]int) string {
	winner, most := "", -1
	for _, id := range g.teamIDs {
		if id == claimTeam {
			continue
		}
		if holders[id] > most {
			winner, most = id, holders[id]
		}
	}
	return winner
}

// Transfer hands the turn to a teammate right after the actor's own
// successful claim.
func (g *Game) Transfer(actor, target string) (Move, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.checkTurnLocked(actor); err != nil {
		return Move{}, err
	}
	if len(g.history) == 0 {
		return Move{}, ruleViolation("You can only transfer the turn right after your own successful claim!")
	}
	if last := g.history[0]; last.Kind != MoveClaim || last.Actor != actor || !last.Success {
		return Move{}, ruleViolation("You can only transfer the turn right after your own successful claim!")
	}
	to, ok := g.players[target]
	if !ok {
		return Move{}, notFound("Player %s is not in this game", target)
	}
	if target == actor || !g.sameTeamLocked(actor, target) {
		return Move{}, ruleViolation("You can only transfer the turn to a teammate!")
	}
	if to.CardCount() == 0 {
		return Move{}, ruleViolation("You cannot transfer the turn to a player with no cards!")
	}

	m := Move{
		Kind:        MoveTransfer,
		Actor:       actor,
		Success:     true,
		Description: fmt.Sprintf("%s passed the turn to %s", g.players[actor].Name, to.Name),
		Transfer:    &TransferMove{Target: target},
	}
	return g.commitLocked(m), nil
}

// commitLocked stamps and records an applied move and moves the turn on.
func (g *Game) commitLocked(m Move) Move {
	g.seq++
	m.Seq = g.seq
	m.At = g.cfg.Now()
	g.turn = g.nextTurnLocked(m)
	for _, pid := range g.order {
		if g.players[pid].CardCount() == 0 {
			g.tracker.ObserveEmpty(pid)
		}
	}
	g.history = append([]Move{m}, g.history...)
	g.touchLocked()
	return m.clone()
}

func (g *Game) nextTurnLocked(m Move) string {
	switch m.Kind {
	case MoveAsk:
		if m.Success {
			return m.Actor
		}
		return m.Ask.Target
	case MoveClaim:
		if g.status == StatusCompleted {
			return ""
		}
		return g.claimTurnLocked(m.Actor, m.Success)
	case MoveTransfer:
		return m.Transfer.Target
	}
	panic(fmt.Sprintf("literature: no turn rule for move kind %s", m.Kind))
}

// claimTurnLocked: after a good claim the claimant keeps playing if they can,
// then a teammate, then an opponent. After a bad claim the opponents go
// first.
func (g *Game) claimTurnLocked(claimant string, success bool) string {
	teammates := g.withCardsLocked(g.teammatesLocked(claimant))
	opponents := g.withCardsLocked(g.opponentsLocked(claimant))
	if success {
		if g.players[claimant].CardCount() > 0 {
			return claimant
		}
		if len(teammates) > 0 {
			return teammates[0]
		}
		if len(opponents) > 0 {
			return opponents[0]
		}
		return claimant
	}
	if len(opponents) > 0 {
		return opponents[0]
	}
	if len(teammates) > 0 {
		return teammates[0]
	}
	return claimant
}

func holdsAny(p *Player, cards []card.Card) bool {
	for _, c := range cards {
		if p.holds(c) {
			return true
		}
	}
	return false
}
