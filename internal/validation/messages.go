package validation

import (
	"fmt"
	"strings"
)

// DefaultLanguage is used when the caller has no locale preference.
const DefaultLanguage = "es"

type messageKey struct {
	field  Field
	reason ReasonCode
}

type localizedText struct {
	es string
	en string
}

var fieldMessages = map[messageKey]localizedText{
	{FieldGoalName, ReasonTooShort}: {
		es: "El nombre debe tener al menos 3 caracteres.",
		en: "The name must be at least 3 characters long.",
	},
	{FieldGoalName, ReasonTooLong}: {
		es: "El nombre no puede exceder 30 caracteres.",
		en: "The name cannot exceed 30 characters.",
	},
	{FieldGoalName, ReasonNoLetters}: {
		es: "El nombre debe ser principalmente texto y contener al menos una letra.",
		en: "The name must be mostly text and contain at least one letter.",
	},
	{FieldGoalName, ReasonAllNumeric}: {
		es: "El nombre no puede ser solo números.",
		en: "The name cannot be only numbers.",
	},
	{FieldGoalName, ReasonForbiddenChar}: {
		es: "Demasiados caracteres especiales consecutivos.",
		en: "Too many consecutive special characters.",
	},
	{FieldGoalName, ReasonExcessiveRepetition}: {
		es: "El nombre contiene demasiados caracteres repetidos.",
		en: "The name contains too many repeated characters.",
	},
	{FieldGoalName, ReasonSuspiciousPattern}: {
		es: "El texto contiene patrones no permitidos.",
		en: "The text contains patterns that are not allowed.",
	},
	{FieldTopic, ReasonTooShort}: {
		es: "El tema es demasiado corto. Describe con más detalle qué quieres aprender.",
		en: "The topic is too short. Describe in more detail what you want to learn.",
	},
	{FieldTopic, ReasonTooLong}: {
		es: "El tema no puede exceder 200 caracteres.",
		en: "The topic cannot exceed 200 characters.",
	},
	{FieldTopic, ReasonForbiddenChar}: {
		es: "El carácter %q no está permitido. Usa solo letras, números, espacios y puntuación básica.",
		en: "The character %q is not allowed. Use only letters, numbers, spaces and basic punctuation.",
	},
	{FieldTopic, ReasonSuspiciousPattern}: {
		es: "El texto contiene patrones no permitidos. Por favor, describe solo tu tema de estudio.",
		en: "The text contains patterns that are not allowed. Please describe only your study topic.",
	},
	{FieldTopic, ReasonProhibitedWord}: {
		es: "El texto contiene términos no apropiados para un tema de estudio.",
		en: "The text contains terms that are not appropriate for a study topic.",
	},
	{FieldTopic, ReasonAllNumeric}: {
		es: "Por favor, describe tu tema de estudio con palabras.",
		en: "Please describe your study topic with words.",
	},
	{FieldTopic, ReasonExcessiveRepetition}: {
		es: "El texto parece no ser un tema de estudio válido.",
		en: "The text does not look like a valid study topic.",
	},
	{FieldTopic, ReasonVagueContent}: {
		es: "Por favor, especifica qué tema deseas estudiar. Ejemplo: 'Funciones trigonométricas' o 'Historia de la Segunda Guerra Mundial'.",
		en: "Please specify which topic you want to study. Example: 'Trigonometric functions' or 'History of World War II'.",
	},
	{FieldTopic, ReasonNoLetters}: {
		es: "El tema debe contener suficiente texto descriptivo.",
		en: "The topic must contain enough descriptive text.",
	},
	{FieldTopic, ReasonExcessiveWhitespace}: {
		es: "El tema contiene demasiados espacios consecutivos.",
		en: "The topic contains too many consecutive spaces.",
	},
}

var genericMessage = localizedText{
	es: "El texto no es válido. Revísalo e inténtalo de nuevo.",
	en: "The text is not valid. Please review it and try again.",
}

func message(field Field, reason ReasonCode, detail, lang string) string {
	text, ok := fieldMessages[messageKey{field, reason}]
	if !ok {
		text = genericMessage
	}
	tmpl := text.es
	if normalizeLanguage(lang) == "en" {
		tmpl = text.en
	}
	if strings.Contains(tmpl, "%q") {
		return fmt.Sprintf(tmpl, detail)
	}
	return tmpl
}

func normalizeLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if strings.HasPrefix(lang, "en") {
		return "en"
	}
	return DefaultLanguage
}

// ValidTopicExamples are shown next to vague or too short topics.
var ValidTopicExamples = []string{
	"Funciones trigonométricas y sus aplicaciones",
	"Historia de la Segunda Guerra Mundial",
	"Programación orientada a objetos en Python",
	"Fotosíntesis y respiración celular",
	"Literatura del Siglo de Oro español",
	"Ecuaciones diferenciales de primer orden",
	"Marketing digital y redes sociales",
	"Anatomía del sistema nervioso humano",
}

// HelpMessage returns the guidance text for a field.
func HelpMessage(field Field, lang string) string {
	en := normalizeLanguage(lang) == "en"
	switch field {
	case FieldGoalName:
		if en {
			return "Example: 'Physics Exam', 'AWS Certification', 'Thesis'"
		}
		return "Ejemplo: 'Examen de Física', 'Certificación AWS', 'Tesis de Grado'"
	default:
		if en {
			return "Describe specifically what you want to learn. Examples:\n" +
				"✓ 'Exponential and logarithmic functions'\n" +
				"✓ 'French Revolution: causes and consequences'\n" +
				"✗ 'math stuff'\n" +
				"✗ 'study'"
		}
		return "Describe específicamente qué quieres aprender. Ejemplos:\n" +
			"✓ 'Funciones exponenciales y logarítmicas'\n" +
			"✓ 'Revolución Francesa: causas y consecuencias'\n" +
			"✗ 'cosas de matemáticas'\n" +
			"✗ 'estudiar'"
	}
}
