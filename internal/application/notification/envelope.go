package notification

import (
	"encoding/json"
	"unicode/utf8"
)

// Envelope cuerpo de sendMessage tal como se envía y se guarda en la cola.
type Envelope struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// NewEnvelope sobre con parse_mode HTML.
func NewEnvelope(chatID, text string) Envelope {
	return Envelope{ChatID: chatID, Text: text, ParseMode: "HTML"}
}

// Marshal serializa el sobre.
func (e Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// maxErrorLen longitud máxima del error guardado en la cola.
const maxErrorLen = 500

// truncateError recorta a maxErrorLen bytes sin partir un carácter UTF-8.
func truncateError(s string) string {
	if len(s) <= maxErrorLen {
		return s
	}
	cut := maxErrorLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
