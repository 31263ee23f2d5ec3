package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/CasaWayra/wayra-backend/internal/models"
)

// Canonical beer kinds stored in the session once validated
const (
	BeerKindSixpack = "sixpack"
	BeerKindKeg20L  = "keg20L"
	BeerKindKeg30L  = "keg30L"
)

var beerKindLabels = map[string]string{
	BeerKindSixpack: "Sixpack",
	BeerKindKeg20L:  "Barril 20L",
	BeerKindKeg30L:  "Barril 30L",
}

// Confirmation patterns: affirmative must match the whole reply,
// negative only needs the prefix ("no", "nop", "cancelar", ...)
var (
	affirmativePattern = regexp.MustCompile(`(?i)^(si|sí|ok|correcto)$`)
	negativePattern    = regexp.MustCompile(`(?i)^(no|cancel)`)
)

// IsAffirmative reports whether input confirms the pending summary
func IsAffirmative(input string) bool {
	return affirmativePattern.MatchString(strings.TrimSpace(input))
}

// IsNegative reports whether input cancels the pending summary
func IsNegative(input string) bool {
	return negativePattern.MatchString(strings.TrimSpace(input))
}

// SlotValidator normalizes raw input into a slot value. ok=false means
// the input was not understood and the slot must be re-prompted.
type SlotValidator func(input string) (value string, ok bool)

// Slot is one field collected in order within a flow
type Slot struct {
	Name        string
	Prompt      string
	ErrorPrompt string        // sent when Validate rejects the input
	Validate    SlotValidator // nil accepts any non-empty input verbatim
	Options     []ListRow     // when set, the prompt is sent as a list
}

// Flow is an ordered slot-filling dialogue. The three concrete flows
// are configurations of this one machine, not separate code paths.
type Flow struct {
	Mode       models.SessionMode
	Intro      string
	Slots      []Slot
	Summary    func(fields map[string]string) string
	DoneText   string
	CancelText string
}

// ParseBeerKind maps free text or a list row ID to a canonical beer
// kind. This is the only validated slot; everything else is stored
// verbatim.
func ParseBeerKind(input string) (string, bool) {
	lowered := strings.ToLower(strings.TrimSpace(input))
	switch {
	case strings.Contains(lowered, "six"):
		return BeerKindSixpack, true
	case strings.Contains(lowered, "20"):
		return BeerKindKeg20L, true
	case strings.Contains(lowered, "30"):
		return BeerKindKeg30L, true
	default:
		return "", false
	}
}

// BeerKindLabel renders a canonical kind for user-facing summaries
func BeerKindLabel(kind string) string {
	if label, ok := beerKindLabels[kind]; ok {
		return label
	}
	return kind
}

// BuildFlows wires the three conversation flows with their prompts
func BuildFlows(templates *TemplateService) map[models.SessionMode]*Flow {
	flows := map[models.SessionMode]*Flow{
		models.ModeReserving: {
			Mode:  models.ModeReserving,
			Intro: "Perfecto, vamos con tu reserva.",
			Slots: []Slot{
				{Name: "fecha", Prompt: "¿Para qué fecha? (ej: 15/10)"},
				{Name: "hora", Prompt: "¿A qué hora? (ej: 20:00)"},
				{Name: "personas", Prompt: "¿Para cuántas personas?"},
				{Name: "nombre", Prompt: "¿A nombre de quién hacemos la reserva?"},
			},
			Summary: func(fields map[string]string) string {
				return fmt.Sprintf(
					"Revisa tu reserva:\nFecha: %s\nHora: %s\nPersonas: %s\nNombre: %s\n\n¿Confirmamos?",
					fields["fecha"], fields["hora"], fields["personas"], fields["nombre"])
			},
			DoneText:   "✅ Reserva registrada. Te confirmaremos por este medio.",
			CancelText: "Reserva cancelada. Cuando quieras retomamos.",
		},
		models.ModeReservingSpecial: {
			Mode:  models.ModeReservingSpecial,
			Intro: "¡Qué bien! Vamos con tu reserva especial.",
			Slots: []Slot{
				{Name: "ocasion", Prompt: "¿Qué celebramos? (cumpleaños, aniversario, evento...)"},
				{Name: "fecha", Prompt: "¿Para qué fecha? (ej: 15/10)"},
				{Name: "hora", Prompt: "¿A qué hora? (ej: 20:00)"},
				{Name: "personas", Prompt: "¿Para cuántas personas?"},
				{Name: "nombre", Prompt: "¿A nombre de quién hacemos la reserva?"},
				{Name: "notas", Prompt: "¿Algún detalle extra? (decoración, torta, alergias...)"},
			},
			Summary: func(fields map[string]string) string {
				return fmt.Sprintf(
					"Revisa tu reserva especial:\nOcasión: %s\nFecha: %s\nHora: %s\nPersonas: %s\nNombre: %s\nNotas: %s\n\n¿Confirmamos?",
					fields["ocasion"], fields["fecha"], fields["hora"],
					fields["personas"], fields["nombre"], fields["notas"])
			},
			DoneText:   "🎉 Reserva especial registrada. Te contactamos para afinar los detalles.",
			CancelText: "Reserva especial cancelada. Cuando quieras retomamos.",
		},
		models.ModeOrderingBeer: {
			Mode:  models.ModeOrderingBeer,
			Intro: "Pedir cerveza:\n• Sixpack\n• Barril 20L / 30L",
			Slots: []Slot{
				{
					Name:        "tipo",
					Prompt:      "¿Qué presentación quieres?",
					ErrorPrompt: "No reconocí esa presentación. Responde sixpack, barril 20L o barril 30L.",
					Validate:    ParseBeerKind,
					Options:     templates.BeerKindRows(),
				},
				{Name: "cantidad", Prompt: "¿Cuántas unidades?"},
				{Name: "entrega", Prompt: "¿Retiras en el local o prefieres entrega a domicilio?"},
			},
			Summary: func(fields map[string]string) string {
				return fmt.Sprintf(
					"Tu pedido:\nPresentación: %s\nCantidad: %s\nEntrega: %s\n\n¿Confirmamos?",
					BeerKindLabel(fields["tipo"]), fields["cantidad"], fields["entrega"])
			},
			DoneText:   "🍺 Pedido registrado. Te contactamos para coordinar pago y entrega.",
			CancelText: "Pedido cancelado. Aquí estaremos cuando te dé sed.",
		},
	}
	return flows
}

// FlowForIntent maps a flow-initiating intent to its session mode
func FlowForIntent(intent Intent) (models.SessionMode, bool) {
	switch intent {
	case IntentReserveTable:
		return models.ModeReserving, true
	case IntentReserveSpecial:
		return models.ModeReservingSpecial, true
	case IntentOrderBeer:
		return models.ModeOrderingBeer, true
	default:
		return "", false
	}
}
