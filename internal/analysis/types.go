package analysis

// Outcome is the structured verdict produced for one piece of content. It is
// created once per analysis request and never mutated afterwards.
type Outcome struct {
	IsScam         bool   `json:"isScam"`
	IsFakeNews     bool   `json:"isFakeNews"`
	HasVirus       bool   `json:"hasVirus"`
	IsVerifiedTrue bool   `json:"isVerifiedTrue"`
	Reason         string `json:"reason"`
}
