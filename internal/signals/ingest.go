package signals

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	maxTextLength  = 4000
	maxTopicLength = 120
)

// Ingest validates and normalizes a batch into signals. Records missing a timestamp
// are stamped with now. Every problem in the batch is reported in a single
// *ValidationError; no signals are returned when any record is invalid.
func Ingest(b Batch, now time.Time) ([]Signal, error) {
	var (
		out      = make([]Signal, 0, len(b.SearchQueries)+len(b.SupportTickets))
		problems []string
		seen     = make(map[string]int)
	)

	for i, q := range b.SearchQueries {
		text := collapseSpace(q.Query)
		if text == "" {
			problems = append(problems, fmt.Sprintf("search_queries[%d].query: required", i))
			continue
		}
		if len(text) > maxTextLength {
			problems = append(problems, fmt.Sprintf("search_queries[%d].query: exceeds %d characters", i, maxTextLength))
			continue
		}
		if q.Count < 0 {
			problems = append(problems, fmt.Sprintf("search_queries[%d].count: must not be negative", i))
			continue
		}

		weight := max(q.Count, 1)

		out = append(out, newSignal(seen, Signal{
			Text:      text,
			TopicHint: NormalizeTopic(q.Topic),
			Source:    SourceSearchQuery,
			Weight:    weight,
		}, q.Timestamp, now))
	}

	for i, t := range b.SupportTickets {
		subject := collapseSpace(t.Subject)
		description := strings.TrimSpace(t.Description)
		if subject == "" && description == "" {
			problems = append(problems, fmt.Sprintf("support_tickets[%d]: subject or description required", i))
			continue
		}

		text := subject
		if description != "" {
			if text != "" {
				text += "\n\n"
			}
			text += description
		}
		text = truncate(text, maxTextLength)

		out = append(out, newSignal(seen, Signal{
			Text:      text,
			TopicHint: NormalizeTopic(t.Category),
			Source:    SourceSupportTicket,
			Ref:       strings.TrimSpace(t.ID),
			Weight:    1,
			Detail:    strings.TrimSpace(t.Resolution),
		}, t.CreatedAt, now))
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}

	return out, nil
}

// NormalizeTopic lowercases a topic label and reduces it to dash-separated
// alphanumeric words. Returns "" when nothing remains.
func NormalizeTopic(s string) string {
	var (
		b    strings.Builder
		dash bool
	)

	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
			continue
		}
		dash = true
	}

	topic := b.String()
	if len(topic) > maxTopicLength {
		topic = strings.TrimRight(truncate(topic, maxTopicLength), "-")
	}
	return topic
}

// newSignal stamps the timestamp and fingerprint. The fingerprint covers the
// signal's timestamp, so an undated record observed in a later batch is new
// evidence. Identical records in one batch are distinguished by their
// occurrence index so each still counts.
func newSignal(seen map[string]int, s Signal, ts *time.Time, now time.Time) Signal {
	s.Timestamp = now.UTC()
	if ts != nil && !ts.IsZero() {
		s.Timestamp = ts.UTC()
	}

	base := strings.Join([]string{
		string(s.Source),
		s.Ref,
		strings.ToLower(s.Text),
		s.Timestamp.Format(time.RFC3339Nano),
	}, "\x1f")

	n := seen[base]
	seen[base] = n + 1

	sum := sha1.Sum(fmt.Appendf(nil, "%s\x1f%d", base, n))
	s.Fingerprint = hex.EncodeToString(sum[:])
	return s
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
