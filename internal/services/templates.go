package services

import (
	"fmt"

	"github.com/CasaWayra/wayra-backend/internal/config"
)

// Interactive option IDs. These come back in button_reply / list_reply
// payloads and must stay stable because the classifier maps them to
// intents.
const (
	OptionHoursMenu      = "horario_menu"
	OptionLocation       = "ubicacion"
	OptionPromos         = "promos"
	OptionPlanWayra      = "plan_wayra"
	OptionOrderBeer      = "pedir_cerveza"
	OptionReserveTable   = "reservar_mesa"
	OptionReserveSpecial = "reserva_especial"

	OptionConfirmYes = "si"
	OptionConfirmNo  = "no"

	OptionBeerSixpack = "cerveza_six"
	OptionBeerKeg20   = "cerveza_barril_20"
	OptionBeerKeg30   = "cerveza_barril_30"
)

// TemplateService renders all user-facing copy and menus. Texts are in
// Spanish because that is what Casa Wayra's customers speak.
type TemplateService struct {
	cfg *config.Config
}

// NewTemplateService creates a new template service
func NewTemplateService(cfg *config.Config) *TemplateService {
	return &TemplateService{cfg: cfg}
}

func (t *TemplateService) WelcomeText() string {
	return fmt.Sprintf(
		"Hola, soy el asistente de %s en %s. Te ayudo con reservas, promos y pedidos de cerveza.",
		t.cfg.BusinessName, t.cfg.City)
}

func (t *TemplateService) WelcomePrompt() string {
	return "Bienvenido a Casa Wayra\n¿Qué te gustaría hacer?"
}

func (t *TemplateService) HoursText() string {
	return "Horarios:\n" + t.cfg.HoursText
}

func (t *TemplateService) PromosText() string {
	return t.cfg.PromosText
}

func (t *TemplateService) PlanText() string {
	return t.cfg.PlanText
}

func (t *TemplateService) LocationLinkText() string {
	return "Nuestra ubicación:\n" + t.cfg.MapsURL
}

func (t *TemplateService) FallbackText() string {
	return "Puedo ayudarte con:\n• Horarios y menú\n• Ubicación\n• Promos/Eventos\n• Plan Wayra\n• Pedir cerveza\n• Reservar mesa"
}

func (t *TemplateService) UnknownOptionText() string {
	return "No entendí la opción. Elige de nuevo:"
}

func (t *TemplateService) ConfirmReminderText() string {
	return "Responde *sí* para confirmar o *no* para cancelar."
}

// MainMenuButtons is the top-level menu (button messages max out at 3)
func (t *TemplateService) MainMenuButtons() []ReplyButton {
	return []ReplyButton{
		{ID: OptionHoursMenu, Title: "Horarios y menú"},
		{ID: OptionLocation, Title: "Ubicación"},
		{ID: OptionPromos, Title: "Promos/Eventos"},
	}
}

// ExtraMenuButtons is the second menu shown after informational replies
func (t *TemplateService) ExtraMenuButtons() []ReplyButton {
	return []ReplyButton{
		{ID: OptionPlanWayra, Title: "Plan Wayra"},
		{ID: OptionOrderBeer, Title: "Pedir cerveza"},
		{ID: OptionReserveTable, Title: "Reservar mesa"},
	}
}

// AllOptionsSections is the full list menu, used on the fallback path so
// every option (including special reservations) stays discoverable.
func (t *TemplateService) AllOptionsSections() []ListSection {
	return []ListSection{
		{
			Title: "Información",
			Rows: []ListRow{
				{ID: OptionHoursMenu, Title: "Horarios y menú"},
				{ID: OptionLocation, Title: "Ubicación"},
				{ID: OptionPromos, Title: "Promos/Eventos"},
				{ID: OptionPlanWayra, Title: "Plan Wayra"},
			},
		},
		{
			Title: "Pedidos y reservas",
			Rows: []ListRow{
				{ID: OptionOrderBeer, Title: "Pedir cerveza"},
				{ID: OptionReserveTable, Title: "Reservar mesa"},
				{ID: OptionReserveSpecial, Title: "Reserva especial", Description: "Cumpleaños, aniversarios, eventos"},
			},
		},
	}
}

// BeerKindRows lists the available beer presentations. The row IDs run
// through the same keyword validation as typed input.
func (t *TemplateService) BeerKindRows() []ListRow {
	return []ListRow{
		{ID: OptionBeerSixpack, Title: "Sixpack"},
		{ID: OptionBeerKeg20, Title: "Barril 20L"},
		{ID: OptionBeerKeg30, Title: "Barril 30L"},
	}
}

func (t *TemplateService) ConfirmButtons() []ReplyButton {
	return []ReplyButton{
		{ID: OptionConfirmYes, Title: "Sí"},
		{ID: OptionConfirmNo, Title: "No"},
	}
}
