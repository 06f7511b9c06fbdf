package video

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"studyblossom/internal/providers/genai"
)

const truncationMarker = "..."

// ScriptArtifact is the narration produced for one video. Body never exceeds
// the tier's MaxChars.
type ScriptArtifact struct {
	Title     string   `json:"title"`
	Body      string   `json:"script"`
	KeyPoints []string `json:"key_points"`
}

type scriptPayload struct {
	Title     string   `json:"title"`
	Script    string   `json:"script"`
	KeyPoints []string `json:"keyPoints"`
}

var errEmptyScript = errors.New("script field is empty")

// BuildScriptPrompt renders the script-writing instructions for topic.
func BuildScriptPrompt(topic string, spec TierSpec) string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "Eres un guionista experto en contenido educativo. Crea un guión CONCISO y DIRECTO para un video educativo sobre %q.\n\n", topic)
	sb.WriteString("IMPORTANTE: El guión debe ser CORTO y CLARO para narración de voz.\n\n")
	fmt.Fprintf(sb, "Características:\n- Duración objetivo: %s\n- Palabras aproximadas: %d\n- Máximo de caracteres: %d\n\n", spec.Duration, spec.Words, spec.MaxChars)
	sb.WriteString("Estructura:\n1. Introducción (15-20 segundos): Hook atractivo\n2. Desarrollo (60-70% del tiempo): Explicación clara con 2-3 puntos principales\n3. Conclusión (10-15 segundos): Resumen breve\n\n")
	sb.WriteString("Estilo de narración:\n- Tono conversacional y cercano\n- Frases cortas y directas\n- Sin jerga innecesaria\n- Usar \"tú\" para conectar con el espectador\n\n")
	sb.WriteString("Devuelve SOLO un JSON con esta estructura: ")
	sb.WriteString(`{"title":string (máximo 60 caracteres),"script":string (un solo párrafo fluido, sin secciones marcadas),"keyPoints":string[]}`)
	sb.WriteString("\n\nCRÍTICO: El \"script\" debe ser un texto continuo, natural para lectura en voz alta, SIN marcadores de sección ni títulos internos.")
	return sb.String()
}

// ParseScript decodes model output into an artifact and enforces the tier
// budget. The title falls back to "Video Educativo: <topic>".
func ParseScript(raw, topic string, spec TierSpec) (ScriptArtifact, error) {
	payload, err := genai.DecodeJSON[scriptPayload](raw)
	if err != nil {
		return ScriptArtifact{}, err
	}
	body := strings.TrimSpace(payload.Script)
	if body == "" {
		return ScriptArtifact{}, errEmptyScript
	}

	title := strings.TrimSpace(payload.Title)
	if title == "" {
		title = "Video Educativo: " + topic
	}
	keyPoints := make([]string, 0, len(payload.KeyPoints))
	for _, kp := range payload.KeyPoints {
		if kp = strings.TrimSpace(kp); kp != "" {
			keyPoints = append(keyPoints, kp)
		}
	}

	return ScriptArtifact{
		Title:     title,
		Body:      TruncateScript(body, spec.MaxChars),
		KeyPoints: keyPoints,
	}, nil
}

// TruncateScript cuts text to at most maxChars characters, marker included.
func TruncateScript(text string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return text
	}
	keep := maxChars - utf8.RuneCountInString(truncationMarker)
	if keep <= 0 {
		return string([]rune(text)[:maxChars])
	}
	runes := []rune(text)
	return strings.TrimRight(string(runes[:keep]), " ") + truncationMarker
}
