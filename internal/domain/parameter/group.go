package parameter

// GroupMembers pairs a group with its member parameters
type GroupMembers struct {
	Group      Group
	Parameters []*Parameter
}

// GroupOrder returns the declared groups in order with their member
// parameters resolved from the set. Parameters that belong to no group
// follow in a final group with an empty name.
func GroupOrder(s *Set) []GroupMembers {
	var out []GroupMembers
	for _, g := range s.Groups() {
		gm := GroupMembers{Group: g}
		for _, name := range g.Members {
			if p, ok := s.Get(name); ok {
				gm.Parameters = append(gm.Parameters, p)
			}
		}
		out = append(out, gm)
	}

	var ungrouped []*Parameter
	for _, p := range s.params {
		if _, grouped := s.groupOf[p.Name]; !grouped {
			ungrouped = append(ungrouped, p)
		}
	}
	if len(ungrouped) > 0 {
		out = append(out, GroupMembers{Parameters: ungrouped})
	}

	return out
}

// PromptOrder returns the parameters in the order interactive prompts should
// follow: grouped parameters first, by group, then the rest in declaration
// order
func PromptOrder(s *Set) []*Parameter {
	var out []*Parameter
	for _, gm := range GroupOrder(s) {
		out = append(out, gm.Parameters...)
	}
	return out
}
