package validation

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	GoalNameMinLength    = 3
	GoalNameMaxLength    = 30
	TopicMinLength       = 5
	StrictTopicMinLength = 25
	TopicMaxLength       = 200
	MaxSanitizedLength   = 500

	goalNameMinLetterRatio = 0.4
	topicMinLetterRatio    = 0.3
	maxGoalNameCharRun     = 4
	maxTopicCharRun        = 5
	minTopicWords          = 4
	maxConsonantRun        = 7
	maxDigitRatio          = 0.2
	minNoisyDigits         = 6
)

// goalNamePunctuation is the set whose long runs mark a goal name as garbage.
const goalNamePunctuation = `!@#$%^&*()_+=[]{};':"\|,.<>/?`

// topicForbiddenChars may never appear in a topic.
var topicForbiddenChars = []rune{'@', '/', '\\', '*', '<', '>', '|', '{', '}', '[', ']', '`', '~', '^'}

var injectionPatterns = compileAll(
	`ignore\s+(all\s+)?(the\s+)?(previous|above|prior|earlier|all)\s+(instructions|prompts|rules)`,
	`ignora\s+(todas?\s+)?(las\s+|los\s+)?(instrucciones|indicaciones|reglas)`,
	`forget\s+(everything|all|previous)`,
	`olvida\s+(todo|todas?\s+las\s+instrucciones)`,
	`you\s+are\s+now`,
	`ahora\s+eres`,
	`new\s+(instructions|prompt|role)`,
	`nuevas?\s+(instrucciones|reglas)`,
	`system\s+(prompt|message|role)`,
	`prompt\s+del\s+sistema`,
	`\bact\s+as\b`,
	`act[uú]a\s+como`,
	`pretend\s+(to\s+be|you\s+are)`,
	`finge\s+(ser|que)`,
	`rm\s+-rf`,
	`\bsudo\s`,
	`\bchmod\s`,
	`\b(exec|eval|system)\s*\(`,
	`select\s+\*`,
	`show\s+(me\s+)?tables`,
	`sql\s+(query|injection)`,
)

// aiAddressingPatterns catch topics that talk to the model instead of naming
// something to study.
var aiAddressingPatterns = compileAll(
	`\bas\s+an?\s+(ai|chatbot|language\s+model|assistant)\b`,
	`\brole[\s-]?play`,
	`\bjailbreak`,
	`\bcomo\s+(una\s+)?(ia|inteligencia\s+artificial|chatbot|asistente)\b`,
	`\bjuego\s+de\s+rol\b`,
)

var sensitiveDataPatterns = compileAll(
	`pass\s?word`,
	`contrase[nñ]a`,
	`\bcredentials?\b`,
	`\bcredencial(es)?\b`,
	`\bapi\s?keys?\b`,
	`access\s?tokens?`,
	`\b(dame|muestra|revela)\s+(tu\s+|tus\s+)?(api|key|token|password|clave|secret|credencial)`,
	`cu[aá]l\s+es\s+(tu\s+)?(api|key|token|password|clave|credencial)`,
	`lista\s+(todos\s+)?los\s+usuarios`,
	`nombres?\s+de\s+usuario`,
)

// prohibitedWords are matched on word boundaries so "administración" or
// "tokenización" still pass.
var prohibitedWords = compileAll(
	`\b(hack|hacking|exploit|malware|credential|token|apikey|inject|injection|xss|csrf|admin|sudo|chmod)\b`,
)

var vaguePatterns = compileAll(
	`^(cosas?|tema|aprender|estudiar|saber)(\s+(de|sobre))?\s*$`,
	`^(hola|hi|hey|test|prueba)$`,
	`^(nada|algo|cualquier\s+cosa)$`,
	`something\s+about`,
	`\bstuff\b`,
	`\bwhatever\b`,
	`i\s+don'?t\s+know\s+what\s+to\s+(put|write)`,
	`\balgo\s+(sobre|de)\b`,
	`\bcosas\s+(de|sobre)\b`,
	`no\s+s[eé]\s+qu[eé]\s+(poner|escribir)`,
	`\blo\s+que\s+sea\b`,
	`\bcualquier\s+cosa\b`,
)

var multiWhitespace = regexp.MustCompile(`\s{3,}`)

func newGoalNameRules() *RuleSet {
	return &RuleSet{
		Field: FieldGoalName,
		Rules: []Rule{
			{Name: "min_length", Reason: ReasonTooShort, Reject: shorterThan(GoalNameMinLength)},
			{Name: "max_length", Reason: ReasonTooLong, Reject: longerThan(GoalNameMaxLength)},
			{Name: "all_numeric", Reason: ReasonAllNumeric, Reject: isAllDigits},
			{Name: "has_letter", Reason: ReasonNoLetters, Reject: hasNoLetter},
			{Name: "punctuation_run", Reason: ReasonForbiddenChar, Reject: hasPunctuationRun(4)},
			{Name: "letter_ratio", Reason: ReasonNoLetters, Reject: letterRatioBelow(goalNameMinLetterRatio)},
			{Name: "char_run", Reason: ReasonExcessiveRepetition, Reject: hasCharRunLongerThan(maxGoalNameCharRun)},
			{Name: "injection", Reason: ReasonSuspiciousPattern, Reject: matchesAny(injectionPatterns)},
		},
		Normalize: strings.TrimSpace,
	}
}

func newTopicRules(minLength int) *RuleSet {
	return &RuleSet{
		Field: FieldTopic,
		Rules: []Rule{
			{Name: "min_length", Reason: ReasonTooShort, Reject: shorterThan(minLength)},
			{Name: "max_length", Reason: ReasonTooLong, Reject: longerThan(TopicMaxLength)},
			{Name: "forbidden_char", Reason: ReasonForbiddenChar, Reject: hasForbiddenChar, Detail: firstForbiddenChar},
			{Name: "injection", Reason: ReasonSuspiciousPattern, Reject: matchesAny(injectionPatterns, aiAddressingPatterns)},
			{Name: "sensitive_data", Reason: ReasonProhibitedWord, Reject: matchesAny(sensitiveDataPatterns, prohibitedWords)},
			{Name: "all_numeric", Reason: ReasonAllNumeric, Reject: isNumericOnly},
			{Name: "repetition", Reason: ReasonExcessiveRepetition, Reject: isRepetitive},
			{Name: "noise", Reason: ReasonVagueContent, Reject: isNoisy},
			{Name: "word_count", Reason: ReasonVagueContent, Reject: fewerWordsThan(minTopicWords)},
			{Name: "vague_phrase", Reason: ReasonVagueContent, Reject: matchesAny(vaguePatterns)},
			{Name: "letter_ratio", Reason: ReasonNoLetters, Reject: letterRatioBelow(topicMinLetterRatio)},
			{Name: "edge_whitespace", Reason: ReasonExcessiveWhitespace, Reject: hasEdgeWhitespace},
			{Name: "whitespace_run", Reason: ReasonExcessiveWhitespace, Reject: multiWhitespace.MatchString},
		},
		Normalize: SanitizeForAI,
	}
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(`(?i)`+p))
	}
	return out
}

func matchesAny(groups ...[]*regexp.Regexp) func(string) bool {
	return func(text string) bool {
		for _, group := range groups {
			for _, re := range group {
				if re.MatchString(text) {
					return true
				}
			}
		}
		return false
	}
}

func shorterThan(n int) func(string) bool {
	return func(text string) bool { return utf8.RuneCountInString(text) < n }
}

func longerThan(n int) func(string) bool {
	return func(text string) bool { return utf8.RuneCountInString(text) > n }
}

// isLetter accepts Latin letters, accented ones included.
func isLetter(r rune) bool {
	return unicode.IsLetter(r) && unicode.Is(unicode.Latin, r)
}

func isVowel(r rune) bool {
	return strings.ContainsRune("aeiouáéíóúàèìòùäëïöüâêîôû", unicode.ToLower(r))
}

func hasNoLetter(text string) bool {
	return strings.IndexFunc(text, isLetter) < 0
}

func isAllDigits(text string) bool {
	if text == "" {
		return false
	}
	for _, r := range text {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// isNumericOnly is true for digits mixed only with spaces and basic
// punctuation, e.g. "123 456" or "2024-05".
func isNumericOnly(text string) bool {
	digits := 0
	for _, r := range text {
		switch {
		case unicode.IsDigit(r):
			digits++
		case unicode.IsSpace(r), strings.ContainsRune("-_.,;:!?", r):
		default:
			return false
		}
	}
	return digits > 0
}

func hasPunctuationRun(n int) func(string) bool {
	return func(text string) bool {
		run := 0
		for _, r := range text {
			if strings.ContainsRune(goalNamePunctuation, r) {
				run++
				if run >= n {
					return true
				}
				continue
			}
			run = 0
		}
		return false
	}
}

func letterRatioBelow(ratio float64) func(string) bool {
	return func(text string) bool {
		total, letters := 0, 0
		for _, r := range text {
			total++
			if isLetter(r) {
				letters++
			}
		}
		return float64(letters) < float64(total)*ratio
	}
}

// hasCharRunLongerThan reports whether any rune repeats more than max times
// in a row.
func hasCharRunLongerThan(max int) func(string) bool {
	return func(text string) bool {
		var prev rune
		run := 0
		for i, r := range text {
			if i > 0 && r == prev {
				run++
			} else {
				run = 1
			}
			if run > max {
				return true
			}
			prev = r
		}
		return false
	}
}

func hasForbiddenChar(text string) bool {
	return firstForbiddenChar(text) != ""
}

func firstForbiddenChar(text string) string {
	for _, r := range text {
		for _, f := range topicForbiddenChars {
			if r == f {
				return string(r)
			}
		}
	}
	return ""
}

// isRepetitive catches "aaaaaa" style runs and repeated digit groups such as
// "123123123123".
func isRepetitive(text string) bool {
	if hasCharRunLongerThan(maxTopicCharRun)(text) {
		return true
	}
	for _, run := range digitRuns(text) {
		if hasRepeatedGroup(run, 4) {
			return true
		}
	}
	return false
}

func digitRuns(text string) []string {
	var runs []string
	var b strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			continue
		}
		if b.Len() > 0 {
			runs = append(runs, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		runs = append(runs, b.String())
	}
	return runs
}

// hasRepeatedGroup reports whether s contains some group repeated at least
// times in a row.
func hasRepeatedGroup(s string, times int) bool {
	n := len(s)
	for size := 1; size*times <= n; size++ {
		for start := 0; start+size*times <= n; start++ {
			group := s[start : start+size]
			if strings.Repeat(group, times) == s[start:start+size*times] {
				return true
			}
		}
	}
	return false
}

// isNoisy flags keyboard mashing: long consonant clusters, digit heavy text
// or fewer than two pronounceable words.
func isNoisy(text string) bool {
	consonants := 0
	for _, r := range text {
		if isLetter(r) && !isVowel(r) {
			consonants++
			if consonants > maxConsonantRun {
				return true
			}
			continue
		}
		consonants = 0
	}

	total, digits := 0, 0
	for _, r := range text {
		total++
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if digits >= minNoisyDigits && float64(digits) > float64(total)*maxDigitRatio {
		return true
	}

	pronounceable := 0
	for _, word := range strings.Fields(text) {
		if strings.IndexFunc(word, isLetter) >= 0 && strings.IndexFunc(word, isVowel) >= 0 {
			pronounceable++
		}
	}
	return pronounceable < 2
}

func fewerWordsThan(n int) func(string) bool {
	return func(text string) bool { return len(strings.Fields(text)) < n }
}

func hasEdgeWhitespace(text string) bool {
	return text != strings.TrimSpace(text)
}
