package faqs

import (
	"fmt"
	"strings"
	"time"

	"github.com/JaimeStill/lacuna/internal/review"
	"github.com/JaimeStill/lacuna/internal/signals"
)

const (
	maxQuestionLength = 1000
	maxAnswerLength   = 20000
)

// DefaultMinConfidence is the confidence at which a draft is ready for review.
const DefaultMinConfidence = 0.7

// The draft → published edge is guarded by Publish.
var workflow = review.NewMachine(map[Status][]Status{
	StatusDraft:         {StatusPendingReview, StatusPublished},
	StatusPendingReview: {StatusApproved, StatusPublished},
	StatusApproved:      {StatusPublished},
})

func transition(f *FAQ, to Status, now time.Time) error {
	if err := workflow.Check(f.Status, to); err != nil {
		return err
	}

	f.Status = to
	if to == StatusPublished {
		t := now
		f.PublishedAt = &t
	}
	f.Version++
	f.UpdatedAt = now
	return nil
}

// Submit moves a draft to pending_review.
func Submit(f *FAQ, now time.Time) error {
	if f.Status != StatusDraft {
		return fmt.Errorf("%w: submit requires draft, faq is %s", review.ErrInvalidTransition, f.Status)
	}
	return transition(f, StatusPendingReview, now)
}

// Approve moves a pending FAQ to approved.
func Approve(f *FAQ, now time.Time) error {
	return transition(f, StatusApproved, now)
}

// Publish moves f to published. A draft publishes only with override or when its
// confidence meets minConfidence.
func Publish(f *FAQ, override bool, minConfidence float64, now time.Time) error {
	if f.Status == StatusDraft && !override && f.ConfidenceScore < minConfidence {
		return fmt.Errorf("%w: confidence %.2f below %.2f", review.ErrNotReady, f.ConfidenceScore, minConfidence)
	}
	return transition(f, StatusPublished, now)
}

// Promote moves a draft to pending_review when its confidence meets minConfidence.
// Other FAQs are left unchanged.
func Promote(f *FAQ, minConfidence float64, now time.Time) {
	if f.Status == StatusDraft && f.ConfidenceScore >= minConfidence {
		_ = transition(f, StatusPendingReview, now)
	}
}

// RecordFeedback increments one feedback counter. Status and content are untouched.
func RecordFeedback(f *FAQ, helpful bool) {
	if helpful {
		f.HelpfulCount++
	} else {
		f.NotHelpfulCount++
	}
	f.Version++
}

// Edit applies cmd to a draft or pending FAQ.
func Edit(f *FAQ, cmd EditCommand, now time.Time) error {
	if f.Status != StatusDraft && f.Status != StatusPendingReview {
		return fmt.Errorf("%w: %s faqs cannot be edited", review.ErrInvalidTransition, f.Status)
	}
	if err := cmd.validate(); err != nil {
		return err
	}

	if cmd.Question != nil {
		f.Question = strings.TrimSpace(*cmd.Question)
	}
	if cmd.Answer != nil {
		f.Answer = strings.TrimSpace(*cmd.Answer)
	}
	if cmd.Category != nil {
		f.Category = strings.TrimSpace(*cmd.Category)
	}
	f.Version++
	f.UpdatedAt = now
	return nil
}

func (c EditCommand) validate() error {
	if c.Question == nil && c.Answer == nil && c.Category == nil {
		return fmt.Errorf("%w: no fields to update", ErrInvalidInput)
	}
	if c.Question != nil {
		if err := checkText("question", *c.Question, maxQuestionLength); err != nil {
			return err
		}
	}
	if c.Answer != nil {
		if err := checkText("answer", *c.Answer, maxAnswerLength); err != nil {
			return err
		}
	}
	return nil
}

func (c CreateCommand) validate() error {
	if err := checkText("question", c.Question, maxQuestionLength); err != nil {
		return err
	}
	return checkText("answer", c.Answer, maxAnswerLength)
}

// topic derives the topic of a curated FAQ from its category.
func (c CreateCommand) topic() string {
	if t := signals.NormalizeTopic(c.Category); t != "" {
		return t
	}
	return "general"
}

func checkText(field, value string, limit int) error {
	v := strings.TrimSpace(value)
	if v == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
	}
	if len(v) > limit {
		return fmt.Errorf("%w: %s exceeds %d characters", ErrInvalidInput, field, limit)
	}
	return nil
}
