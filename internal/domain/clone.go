package domain

// Clone returns a deep copy of the trip. Nil slices stay nil.
func (t Trip) Clone() Trip {
	out := t
	out.ExternalLinks = cloneSlice(t.ExternalLinks)
	out.Gallery = cloneSlice(t.Gallery)
	out.Comments = cloneSlice(t.Comments)
	out.Participants = cloneSlice(t.Participants)
	return out
}

// Clone returns a deep copy of the poll including every option's vote set.
func (p Poll) Clone() Poll {
	out := p
	if p.Options != nil {
		out.Options = make([]PollOption, len(p.Options))
		for i, o := range p.Options {
			o.Votes = cloneSlice(o.Votes)
			out.Options[i] = o
		}
	}
	return out
}

func CloneMembers(ms []Member) []Member { return cloneSlice(ms) }

func CloneTrips(ts []Trip) []Trip {
	if ts == nil {
		return nil
	}
	out := make([]Trip, len(ts))
	for i, t := range ts {
		out[i] = t.Clone()
	}
	return out
}

func ClonePolls(ps []Poll) []Poll {
	if ps == nil {
		return nil
	}
	out := make([]Poll, len(ps))
	for i, p := range ps {
		out[i] = p.Clone()
	}
	return out
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
