package study

import (
	"fmt"
	"strings"
)

func flashcardsPrompt(topic string) string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "Eres un experto en la técnica Feynman. Genera tarjetas de estudio en español para el tema: %q.\n", topic)
	sb.WriteString("Cada tarjeta tiene una 'question' (anverso) y una 'answer' (reverso), ambas de máximo 15 palabras.\n")
	sb.WriteString("Explica el concepto en términos sencillos.\n")
	fmt.Fprintf(sb, "Genera exactamente %d tarjetas. Responde solo con JSON: ", FlashcardCount)
	sb.WriteString(`{"flashcards":[{"question":string,"answer":string}]}`)
	return sb.String()
}

func quizPrompt(cards []Flashcard) string {
	sb := &strings.Builder{}
	sb.WriteString("Eres un profesor experto creando evaluaciones. A partir de las siguientes tarjetas de estudio crea un quiz de opción múltiple en español.\n")
	fmt.Fprintf(sb, "Reglas:\n- Exactamente %d preguntas.\n- Cada pregunta con %d opciones y una sola correcta.\n", QuizQuestions, QuizOptions)
	sb.WriteString("- Usa únicamente la información de las tarjetas.\n- Los distractores deben ser plausibles pero claramente incorrectos.\n\nTarjetas:\n")
	for _, c := range cards {
		fmt.Fprintf(sb, "- Pregunta: %s\n  Respuesta: %s\n", strings.TrimSpace(c.Question), strings.TrimSpace(c.Answer))
	}
	sb.WriteString("\nResponde solo con JSON: ")
	sb.WriteString(`{"questions":[{"question":string,"options":string[],"correctAnswer":string}]}`)
	sb.WriteString(". 'correctAnswer' debe coincidir exactamente con una de las 'options'.")
	return sb.String()
}

func conceptMapPrompt(topic string) string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "Eres un experto en mapas conceptuales con sintaxis Mermaid para el tema %q.\n", topic)
	sb.WriteString("El texto dentro de los nodos (entre corchetes) nunca debe contener los caracteres () / #.\n")
	sb.WriteString("- Genera un diagrama 'graph TD' que conecte entre 5 y 10 conceptos clave.\n")
	sb.WriteString("- Conecta los conceptos con 'A --> B' sin texto en las conexiones.\n")
	sb.WriteString("Responde solo con JSON: ")
	sb.WriteString(`{"mermaidGraph":"graph TD; A[Tema Principal]; B[Concepto Clave 1]; A --> B;"}`)
	return sb.String()
}

func explanationPrompt(topic string) string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "Eres un experto en la técnica Feynman. Para el tema %q, genera una explicación muy simple y concisa, ", topic)
	sb.WriteString("como si se la estuvieras explicando a un niño de 12 años. Usa analogías si es posible. No excedas las 100 palabras.\n")
	sb.WriteString("Responde solo con JSON: ")
	sb.WriteString(`{"explanation":string}`)
	return sb.String()
}

func analysisPrompt(topic, userExplanation string) string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "Eres un profesor experto en la técnica Feynman. El tema de estudio es %q.\n", topic)
	fmt.Fprintf(sb, "La explicación del estudiante es: %q\n\n", userExplanation)
	sb.WriteString("Analiza su explicación y divídela en dos partes:\n")
	sb.WriteString("1. gaps: identifica 1-2 brechas clave o conceptos erróneos. Sé directo.\n")
	sb.WriteString("2. simplifications: sugiere 1-2 formas de simplificar las partes complejas.\n")
	sb.WriteString("Usa guiones (-) para cada punto y dirígete al estudiante en segunda persona.\n")
	sb.WriteString("Responde solo con JSON: ")
	sb.WriteString(`{"gaps":"- punto\n- punto","simplifications":"- punto\n- punto"}`)
	return sb.String()
}

func engagementPrompt(topic string) string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "Eres un experto en marketing educativo y motivación. Para el tema %q, genera contenido motivacional con el modelo AIDA (Atención, Interés, Deseo).\n", topic)
	sb.WriteString("Reglas:\n")
	sb.WriteString("- attention: una pregunta contraintuitiva o un dato sorprendente. Máximo 15 palabras.\n")
	sb.WriteString("- interest: un párrafo corto que conecte el tema con algo relevante para el estudiante. Máximo 50 palabras.\n")
	fmt.Fprintf(sb, "- desire: exactamente %d beneficios directos y accionables de aprender el tema.\n", DesireCount)
	sb.WriteString("- Todo el contenido en español.\n")
	sb.WriteString("Responde solo con JSON: ")
	sb.WriteString(`{"attention":string,"interest":string,"desire":string[]}`)
	return sb.String()
}

func pomodoroPrompt(topic string) string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "Eres un asistente de investigación experto. Para el tema de estudio %q, ", topic)
	sb.WriteString("genera subtemas clave y fuentes de alta calidad para investigar durante una sesión Pomodoro.\n")
	fmt.Fprintf(sb, "Reglas:\n- Entre %d y %d subtemas.\n", MinRecommendations, MaxRecommendations)
	fmt.Fprintf(sb, "- Exactamente %d fuentes por subtema, accesibles por una URL http o https.\n", SourcesPerTopic)
	sb.WriteString("- El tipo de cada fuente es video, article, book o documentation.\n")
	sb.WriteString("Responde solo con JSON: ")
	sb.WriteString(`{"recommendations":[{"subTopic":string,"sources":[{"title":string,"url":string,"type":string}]}]}`)
	return sb.String()
}

func tutorPrompt(topic, question string, history []TutorTurn) string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "Eres un tutor experto, paciente y motivador especializado en %s.\n\n", topic)
	if len(history) > 0 {
		sb.WriteString("Contexto de la conversación anterior:\n")
		for _, t := range history {
			speaker := "Estudiante"
			if t.Role == RoleAssistant {
				speaker = "Tutor"
			}
			fmt.Fprintf(sb, "%s: %s\n", speaker, t.Content)
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(sb, "El estudiante pregunta: %q\n\n", question)
	sb.WriteString("Instrucciones:\n")
	sb.WriteString("- Responde de forma clara, didáctica y motivadora.\n")
	sb.WriteString("- Usa analogías o ejemplos concretos cuando sea apropiado.\n")
	sb.WriteString("- Si detectas confusión, simplifica la explicación.\n")
	sb.WriteString("- Máximo 150 palabras, con un tono conversacional y cercano.\n")
	sb.WriteString("Responde SOLO con la explicación, sin mencionar que eres un tutor o una IA.")
	return sb.String()
}

func followUpPrompt(topic, question, answer string) string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "Basándote en esta pregunta sobre %s: %q\n", topic, question)
	fmt.Fprintf(sb, "Y esta respuesta: %q\n\n", answer)
	fmt.Fprintf(sb, "Genera exactamente %d preguntas de seguimiento que un estudiante podría hacer para profundizar.\n", FollowUpCount)
	sb.WriteString(`Responde solo con un array JSON de strings, por ejemplo ["¿Pregunta 1?","¿Pregunta 2?","¿Pregunta 3?"]`)
	return sb.String()
}
