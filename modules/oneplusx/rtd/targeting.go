package oneplusx

// targetingKeywords uses opeaud for audience segments and opectx for contextual topics.
type targetingKeywords struct {
	Audience []string `json:"opeaud"`
	Context  []string `json:"opectx"`
}

type targetingGroup struct {
	Keywords targetingKeywords `json:"keywords"`
}

// targetingFragment is the ortb2 fragment written into every selected bidder's config.
// Both groups carry the same keywords.
type targetingFragment struct {
	Site targetingGroup `json:"site"`
	User targetingGroup `json:"user"`
}

// buildTargetingFragment turns a profile response into a fragment. Absent segments or
// topics result in empty lists, never null.
func buildTargetingFragment(resp *profileResponse) targetingFragment {
	keywords := targetingKeywords{
		Audience: []string{},
		Context:  []string{},
	}
	if resp != nil {
		keywords.Audience = append(keywords.Audience, resp.Segments...)
		keywords.Context = append(keywords.Context, resp.Topics...)
	}

	return targetingFragment{
		Site: targetingGroup{Keywords: keywords},
		User: targetingGroup{Keywords: targetingKeywords{
			Audience: append([]string{}, keywords.Audience...),
			Context:  append([]string{}, keywords.Context...),
		}},
	}
}
