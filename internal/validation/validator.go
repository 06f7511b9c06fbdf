// Package validation gates free-text study goals before they reach a
// generative model. Every check is a pure predicate paired with a reason code;
// rule sets apply them in a fixed order and the first failing rule decides the
// rejection.
package validation

import (
	"strings"
	"unicode/utf8"
)

// Field identifies which form input is being validated.
type Field int

const (
	FieldGoalName Field = iota + 1
	FieldTopic
)

func (f Field) String() string {
	switch f {
	case FieldGoalName:
		return "goal_name"
	case FieldTopic:
		return "topic"
	default:
		return "unknown"
	}
}

// ParseField maps the wire names used by the HTTP API and CLI to a Field.
func ParseField(name string) (Field, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "goal", "goal_name", "goalname", "name":
		return FieldGoalName, true
	case "topic":
		return FieldTopic, true
	default:
		return 0, false
	}
}

// ReasonCode is the closed set of rejection reasons.
type ReasonCode string

const (
	ReasonTooShort            ReasonCode = "too_short"
	ReasonTooLong             ReasonCode = "too_long"
	ReasonNoLetters           ReasonCode = "no_letters"
	ReasonAllNumeric          ReasonCode = "all_numeric"
	ReasonForbiddenChar       ReasonCode = "forbidden_char"
	ReasonSuspiciousPattern   ReasonCode = "suspicious_pattern"
	ReasonProhibitedWord      ReasonCode = "prohibited_word"
	ReasonVagueContent        ReasonCode = "vague_content"
	ReasonExcessiveRepetition ReasonCode = "excessive_repetition"
	ReasonExcessiveWhitespace ReasonCode = "excessive_whitespace"
)

// Result is either an acceptance carrying the normalized text or a rejection
// carrying a reason and a non-empty human message.
type Result struct {
	Field       Field      `json:"-"`
	Accepted    bool       `json:"accepted"`
	Text        string     `json:"text,omitempty"`
	Reason      ReasonCode `json:"reason,omitempty"`
	Message     string     `json:"message,omitempty"`
	SuggestHelp bool       `json:"suggest_help,omitempty"`
	// Detail holds rule specific context, e.g. the offending character.
	Detail string `json:"-"`
}

// Rejected reports whether the input was refused.
func (r Result) Rejected() bool {
	return !r.Accepted
}

// Localized returns the rejection message in lang ("es" or "en"). Accepted
// results have no message.
func (r Result) Localized(lang string) string {
	if r.Accepted {
		return ""
	}
	return message(r.Field, r.Reason, r.Detail, lang)
}

// Rule is a single heuristic: Reject reports whether text fails the check.
// Detail optionally extracts context for the user message.
type Rule struct {
	Name   string
	Reason ReasonCode
	Reject func(text string) bool
	Detail func(text string) string
}

// RuleSet is an ordered list of rules for one field. Rules see the trimmed
// input; Normalize shapes the accepted text.
type RuleSet struct {
	Field     Field
	Rules     []Rule
	Normalize func(text string) string
}

// Validate runs the rules in order and stops at the first failure. It never
// panics and accepts any string, including the empty one.
func (s *RuleSet) Validate(raw string) Result {
	if !utf8.ValidString(raw) {
		raw = strings.ToValidUTF8(raw, "")
	}
	text := strings.TrimSpace(raw)
	for _, rule := range s.Rules {
		if !rule.Reject(text) {
			continue
		}
		var detail string
		if rule.Detail != nil {
			detail = rule.Detail(text)
		}
		return Result{
			Field:       s.Field,
			Reason:      rule.Reason,
			Message:     message(s.Field, rule.Reason, detail, DefaultLanguage),
			SuggestHelp: suggestsHelp(rule.Reason),
			Detail:      detail,
		}
	}
	if s.Normalize != nil {
		text = s.Normalize(text)
	}
	return Result{Field: s.Field, Accepted: true, Text: text}
}

// RuleNames lists the rule names in evaluation order.
func (s *RuleSet) RuleNames() []string {
	names := make([]string, 0, len(s.Rules))
	for _, r := range s.Rules {
		names = append(names, r.Name)
	}
	return names
}

var (
	// GoalNameRules validates the short goal name (3-30 characters).
	GoalNameRules = newGoalNameRules()
	// TopicRules validates the topic description (5-200 characters).
	TopicRules = newTopicRules(TopicMinLength)
	// StrictTopicRules is the stricter client pass (25-200 characters).
	StrictTopicRules = newTopicRules(StrictTopicMinLength)
)

// Validate classifies text for field using the standard rule sets.
func Validate(text string, field Field) Result {
	return RulesFor(field, false).Validate(text)
}

// RulesFor picks the rule set for field. strict only affects topics.
func RulesFor(field Field, strict bool) *RuleSet {
	switch field {
	case FieldGoalName:
		return GoalNameRules
	default:
		if strict {
			return StrictTopicRules
		}
		return TopicRules
	}
}

// Goal is a sanitized goal ready to be embedded in a prompt.
type Goal struct {
	GoalName string `json:"goal_name"`
	Topic    string `json:"topic"`
}

// GoalResult is the combined server-side verdict for both form fields.
type GoalResult struct {
	GoalName  Result
	Topic     Result
	Sanitized *Goal
}

// Valid reports whether both fields were accepted.
func (g GoalResult) Valid() bool {
	return g.Sanitized != nil
}

// Rejections returns the rejected field results in form order.
func (g GoalResult) Rejections() []Result {
	var out []Result
	if g.GoalName.Rejected() {
		out = append(out, g.GoalName)
	}
	if g.Topic.Rejected() {
		out = append(out, g.Topic)
	}
	return out
}

// ValidateGoal validates both fields and sanitizes them for prompt use when
// both pass.
func ValidateGoal(goalName, topic string, strict bool) GoalResult {
	res := GoalResult{
		GoalName: GoalNameRules.Validate(goalName),
		Topic:    RulesFor(FieldTopic, strict).Validate(topic),
	}
	if res.GoalName.Accepted && res.Topic.Accepted {
		res.Sanitized = &Goal{
			GoalName: SanitizeForAI(res.GoalName.Text),
			Topic:    SanitizeForAI(res.Topic.Text),
		}
	}
	return res
}

// SanitizeForAI trims, collapses whitespace runs to one space and caps the
// text at MaxSanitizedLength characters.
func SanitizeForAI(text string) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(collapsed) <= MaxSanitizedLength {
		return collapsed
	}
	runes := []rune(collapsed)
	return string(runes[:MaxSanitizedLength])
}

func suggestsHelp(reason ReasonCode) bool {
	switch reason {
	case ReasonTooShort, ReasonVagueContent, ReasonNoLetters, ReasonAllNumeric:
		return true
	default:
		return false
	}
}
