package service

import (
	"fmt"
	"strings"
)

// greetings are small-talk openers answered without touching the index.
// Matching is exact after trimming, lower-casing and collapsing whitespace.
var greetings = map[string]struct{}{
	"hola":          {},
	"buenas":        {},
	"hey":           {},
	"hello":         {},
	"hi":            {},
	"buenos dias":   {},
	"buenos días":   {},
	"buenas tardes": {},
	"buenas noches": {},
	"holi":          {},
}

func isGreeting(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	q = strings.Join(strings.Fields(q), " ")
	_, ok := greetings[q]
	return ok
}

func greetingReply(name string) string {
	return fmt.Sprintf("¡Hola! Soy %s. ¿En qué puedo ayudarte hoy?", name)
}

// emptyContextReply is returned when retrieval found nothing usable. The
// hint names the detected area, or the areas searched when none was given.
func emptyContextReply(area string, areasSearched []string) string {
	hint := ""
	if area != "" {
		hint = fmt.Sprintf(" (área detectada: %s)", area)
	} else if len(areasSearched) > 0 {
		hint = fmt.Sprintf(" (busqué en: %s)", strings.Join(areasSearched, ", "))
	}

	return fmt.Sprintf(
		"No encontré información en los documentos%s para responder eso todavía.\n\n"+
			"Para ayudarte mejor:\n"+
			"• dame un identificador único (contenedor, remisión, factura, PI)\n"+
			"• o selecciona el área (logistica, sistemas, general)\n",
		hint,
	)
}

func systemPrompt(name string) string {
	return fmt.Sprintf(
		"Eres %s, un asistente virtual corporativo amable, claro y profesional.\n"+
			"Reglas:\n"+
			"1) Responde SOLO con base en el CONTEXTO proporcionado.\n"+
			"2) Si la respuesta NO está en el contexto, dilo con tacto y pide UN solo dato faltante.\n"+
			"3) Si el contexto incluye datos de Excel, NO combines datos de filas diferentes como si fueran el mismo registro.\n"+
			"4) Si el contexto incluye datos de Excel, cita hoja y fila para cada dato clave.\n"+
			"5) Mantén un tono cordial; evita sonar seco.",
		name,
	)
}

func userPrompt(query, contextText, area string, areasSearched []string) string {
	var b strings.Builder

	if area != "" {
		fmt.Fprintf(&b, "(Área detectada: %s)\n", area)
	}
	if len(areasSearched) > 0 {
		fmt.Fprintf(&b, "(Áreas buscadas: %s)\n", strings.Join(areasSearched, ", "))
	}

	b.WriteString("\n")
	b.WriteString("Contexto de soporte (extraído de documentos internos):\n\n")
	b.WriteString(contextText)
	b.WriteString("\n\nPregunta del usuario:\n")
	b.WriteString(query)
	b.WriteString("\n\nInstrucciones:\n")
	b.WriteString("- Si hay varias filas, lista cada fila por separado (no combines campos entre filas).\n")
	b.WriteString("- Si no hay información suficiente, indícalo y pide UN solo dato faltante.\n")

	return b.String()
}
