package domain

import "math"

type PollOption struct {
	ID          OptionID   `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Votes       []MemberID `json:"votes"`
}

type Poll struct {
	ID       PollID       `json:"id"`
	Question string       `json:"question"`
	Options  []PollOption `json:"options"`
	Active   bool         `json:"active"`
}

// OptionTally is the computed result for one option.
type OptionTally struct {
	OptionID OptionID
	Votes    int
	Percent  int
}

type PollTally struct {
	PollID     PollID
	TotalVotes int
	Options    []OptionTally
}

// Tally computes vote counts and rounded percentages. Percent is 0 for every
// option when nobody has voted.
func (p Poll) Tally() PollTally {
	total := 0
	for _, o := range p.Options {
		total += len(o.Votes)
	}
	out := PollTally{PollID: p.ID, TotalVotes: total, Options: make([]OptionTally, 0, len(p.Options))}
	for _, o := range p.Options {
		pct := 0
		if total > 0 {
			pct = int(math.Round(float64(len(o.Votes)) / float64(total) * 100))
		}
		out.Options = append(out.Options, OptionTally{OptionID: o.ID, Votes: len(o.Votes), Percent: pct})
	}
	return out
}

// VotedOption returns the option the member currently votes for, if any.
func (p Poll) VotedOption(member MemberID) (OptionID, bool) {
	for _, o := range p.Options {
		for _, v := range o.Votes {
			if v == member {
				return o.ID, true
			}
		}
	}
	return "", false
}
