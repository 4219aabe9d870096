package cluster

import (
	"cmp"
	"slices"
	"strings"

	"github.com/JaimeStill/lacuna/internal/signals"
)

// DefaultThreshold is the minimum Jaccard similarity for an unhinted signal to join a cluster.
const DefaultThreshold = 0.3

const keyTokens = 3

// TopicClusterer groups signals by exact normalized topic hint, falling back to
// leader-based token similarity for signals without a hint.
type TopicClusterer struct {
	threshold float64
}

// NewTopicClusterer creates a TopicClusterer. Thresholds outside (0,1] use DefaultThreshold.
func NewTopicClusterer(threshold float64) *TopicClusterer {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &TopicClusterer{threshold: threshold}
}

type group struct {
	key    string
	label  string
	leader map[string]struct{}
	sigs   []signals.Signal
}

func (tc *TopicClusterer) Cluster(sigs []signals.Signal) []Cluster {
	ordered := slices.Clone(sigs)
	slices.SortStableFunc(ordered, func(a, b signals.Signal) int {
		if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(a.Fingerprint, b.Fingerprint)
	})

	var (
		groups  []*group
		byKey   = make(map[string]*group)
		leaders []*group
	)

	add := func(key, label string, s signals.Signal) *group {
		g, ok := byKey[key]
		if !ok {
			g = &group{key: key, label: label}
			byKey[key] = g
			groups = append(groups, g)
		}
		g.sigs = append(g.sigs, s)
		return g
	}

	for _, s := range ordered {
		if s.TopicHint != "" {
			add(s.TopicHint, strings.ReplaceAll(s.TopicHint, "-", " "), s)
			continue
		}

		toks := Tokens(s.Text)
		set := tokenSet(toks)

		var (
			best      *group
			bestScore float64
		)
		for _, g := range leaders {
			if score := jaccard(set, g.leader); score >= tc.threshold && score > bestScore {
				best, bestScore = g, score
			}
		}

		if best != nil {
			best.sigs = append(best.sigs, s)
			continue
		}

		key := textKey(toks, s.Text)
		g := add(key, truncate(firstLine(s.Text), 80), s)
		if g.leader == nil {
			g.leader = set
			leaders = append(leaders, g)
		}
	}

	out := make([]Cluster, 0, len(groups))
	for _, g := range groups {
		out = append(out, New(g.key, g.label, g.sigs))
	}

	slices.SortFunc(out, func(a, b Cluster) int {
		return cmp.Compare(a.Key, b.Key)
	})
	return out
}

func textKey(toks []string, text string) string {
	if len(toks) == 0 {
		return "text-" + ID(strings.ToLower(text))[:8]
	}

	var picked []string
	for _, t := range toks {
		if !slices.Contains(picked, t) {
			picked = append(picked, t)
		}
		if len(picked) == keyTokens {
			break
		}
	}
	slices.Sort(picked)
	return strings.Join(picked, "-")
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var inter int
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	return float64(inter) / float64(len(a)+len(b)-inter)
}

func tokenSet(toks []string) map[string]struct{} {
	set := make(map[string]struct{}, len(toks))
	for _, t := range toks {
		set[t] = struct{}{}
	}
	return set
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "…"
}
