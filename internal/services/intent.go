package services

import (
	"strings"
)

// Intent is a coarse classification of what the user wants
type Intent string

const (
	IntentGreeting       Intent = "saludo"
	IntentHoursAndMenu   Intent = "horario_menu"
	IntentLocation       Intent = "ubicacion"
	IntentPromotions     Intent = "promos"
	IntentPlanOffer      Intent = "plan_wayra"
	IntentOrderBeer      Intent = "pedir_cerveza"
	IntentReserveTable   Intent = "reservar_mesa"
	IntentReserveSpecial Intent = "reserva_especial"
	IntentUnknown        Intent = "desconocido"
)

// selectionIntents maps interactive option IDs 1:1 to intents
var selectionIntents = map[string]Intent{
	OptionHoursMenu:      IntentHoursAndMenu,
	OptionLocation:       IntentLocation,
	OptionPromos:         IntentPromotions,
	OptionPlanWayra:      IntentPlanOffer,
	OptionOrderBeer:      IntentOrderBeer,
	OptionReserveTable:   IntentReserveTable,
	OptionReserveSpecial: IntentReserveSpecial,
}

// textPatterns is the single ordered keyword table for free text.
// Order is the policy: greetings are checked first so "hola, quiero
// reservar" welcomes the user into the menu instead of jumping straight
// into a flow, and special reservations are checked before plain
// reservations because both match "reserva".
var textPatterns = []struct {
	intent   Intent
	keywords []string
}{
	{IntentGreeting, []string{"hola", "buenas", "buenos"}},
	{IntentReserveSpecial, []string{"especial", "cumple", "aniversario", "celebrar", "evento privado"}},
	{IntentReserveTable, []string{"reserva", "mesa"}},
	{IntentOrderBeer, []string{"cerveza", "six", "barril", "growler"}},
	{IntentPlanOffer, []string{"plan"}},
	{IntentHoursAndMenu, []string{"horario", "menú", "menu", "carta"}},
	{IntentLocation, []string{"ubicación", "ubicacion", "dirección", "direccion", "dónde", "donde"}},
	{IntentPromotions, []string{"promo", "evento"}},
}

// ClassifyText maps free text to an intent. Pure function: same input,
// same intent.
func ClassifyText(text string) Intent {
	lowered := strings.ToLower(strings.TrimSpace(text))
	if lowered == "" {
		return IntentUnknown
	}

	for _, pattern := range textPatterns {
		for _, keyword := range pattern.keywords {
			if strings.Contains(lowered, keyword) {
				return pattern.intent
			}
		}
	}
	return IntentUnknown
}

// ClassifySelection maps an interactive option ID to an intent
func ClassifySelection(id string) Intent {
	if intent, ok := selectionIntents[id]; ok {
		return intent
	}
	return IntentUnknown
}
