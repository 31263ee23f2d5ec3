package services

import (
	"log"
	"strings"
	"sync"

	"github.com/CasaWayra/wayra-backend/internal/config"
	"github.com/CasaWayra/wayra-backend/internal/models"
	"github.com/CasaWayra/wayra-backend/internal/storage"
)

// ConversationService routes every inbound message: an active session
// continues its flow unconditionally; otherwise the text is classified
// into a top-level intent. All outbound send failures are logged and
// swallowed - the webhook is always acked, and a committed state
// transition is never rolled back.
type ConversationService struct {
	store     storage.Store
	sender    MessageSender
	templates *TemplateService
	cfg       *config.Config
	flows     map[models.SessionMode]*Flow

	// one mutex per phone so a provider double-send cannot interleave
	// the read-modify-write on the same session
	phoneLocks sync.Map
}

// NewConversationService creates a new conversation service
func NewConversationService(
	store storage.Store,
	sender MessageSender,
	templates *TemplateService,
	cfg *config.Config,
) *ConversationService {
	return &ConversationService{
		store:     store,
		sender:    sender,
		templates: templates,
		cfg:       cfg,
		flows:     BuildFlows(templates),
	}
}

// HandleText processes a free-text inbound message
func (s *ConversationService) HandleText(phone, text string) error {
	lock := s.lockFor(phone)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.store.GetSession(phone)
	if err != nil {
		return err
	}
	if session != nil {
		return s.continueFlow(session, text)
	}

	intent := ClassifyText(text)
	log.Printf("📱 Mensaje de %s: %q | intent: %s", phone, text, intent)
	return s.dispatchIntent(phone, intent)
}

// HandleSelection processes an interactive button/list reply. During an
// active flow the selected option ID feeds the current slot, so list
// rows (like beer kinds) validate the same way typed input does.
func (s *ConversationService) HandleSelection(phone, optionID string) error {
	lock := s.lockFor(phone)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.store.GetSession(phone)
	if err != nil {
		return err
	}
	if session != nil {
		return s.continueFlow(session, optionID)
	}

	intent := ClassifySelection(optionID)
	log.Printf("🔘 Opción de %s: %q | intent: %s", phone, optionID, intent)
	if intent == IntentUnknown {
		s.text(phone, s.templates.UnknownOptionText())
		s.mainMenu(phone, "")
		return nil
	}
	return s.dispatchIntent(phone, intent)
}

// dispatchIntent handles a top-level intent for a user with no session
func (s *ConversationService) dispatchIntent(phone string, intent Intent) error {
	if mode, ok := FlowForIntent(intent); ok {
		return s.startFlow(phone, mode)
	}

	switch intent {
	case IntentGreeting:
		s.text(phone, s.templates.WelcomeText())
		s.mainMenu(phone, s.templates.WelcomePrompt())

	case IntentHoursAndMenu:
		s.text(phone, s.templates.HoursText())
		if s.cfg.MenuImageURL != "" {
			if err := s.sender.SendImage(phone, s.cfg.MenuImageURL, "Menú Casa Wayra"); err != nil {
				log.Printf("⚠️ No se pudo enviar la imagen del menú: %v", err)
			}
		}
		s.extraMenu(phone)

	case IntentLocation:
		if s.cfg.HasLocationPin() {
			err := s.sender.SendLocation(phone, s.cfg.MapsLat, s.cfg.MapsLng,
				s.cfg.MapsName, s.cfg.MapsAddress)
			if err != nil {
				log.Printf("⚠️ No se pudo enviar la ubicación: %v", err)
			}
		}
		if s.cfg.MapsURL != "" {
			s.text(phone, s.templates.LocationLinkText())
		}
		s.mainMenu(phone, "")

	case IntentPromotions:
		s.text(phone, s.templates.PromosText())
		s.extraMenu(phone)

	case IntentPlanOffer:
		s.text(phone, s.templates.PlanText())
		s.mainMenu(phone, "")

	default:
		// Didn't understand: help text plus the full option list,
		// no session is created
		s.text(phone, s.templates.FallbackText())
		if err := s.sender.SendList(phone, "Todas las opciones:", "Ver opciones",
			s.templates.AllOptionsSections()); err != nil {
			log.Printf("⚠️ No se pudo enviar la lista de opciones: %v", err)
		}
	}
	return nil
}

// startFlow creates a session and prompts the first slot
func (s *ConversationService) startFlow(phone string, mode models.SessionMode) error {
	flow := s.flows[mode]

	session, err := s.store.CreateSession(phone, mode)
	if err != nil {
		return err
	}
	log.Printf("▶️ Flujo %s iniciado para %s", mode, phone)

	if flow.Intro != "" {
		s.text(phone, flow.Intro)
	}
	s.promptSlot(session.Phone, flow, 0)
	return nil
}

// continueFlow advances an active session with the latest input
func (s *ConversationService) continueFlow(session *models.Session, input string) error {
	flow, ok := s.flows[session.Mode]
	if !ok {
		// Unknown mode in the store (e.g. stale row after a deploy):
		// drop the session and fall back
		log.Printf("⚠️ Sesión de %s con modo desconocido %q, descartando", session.Phone, session.Mode)
		if err := s.store.DeleteSession(session.Phone); err != nil {
			return err
		}
		return s.dispatchIntent(session.Phone, IntentUnknown)
	}

	if session.Confirming {
		return s.resolveConfirmation(session, flow, input)
	}

	input = strings.TrimSpace(input)
	slot := flow.Slots[session.SlotIndex]

	if input == "" {
		s.promptSlot(session.Phone, flow, session.SlotIndex)
		return nil
	}

	value := input
	if slot.Validate != nil {
		validated, ok := slot.Validate(input)
		if !ok {
			// Input not understood: the slot does not advance
			s.text(session.Phone, slot.ErrorPrompt)
			return nil
		}
		value = validated
	}

	session.Fields[slot.Name] = value

	if session.SlotIndex+1 < len(flow.Slots) {
		session.SlotIndex++
		if err := s.store.SaveSession(session); err != nil {
			return err
		}
		s.promptSlot(session.Phone, flow, session.SlotIndex)
		return nil
	}

	// All slots filled: show the summary and wait for yes/no
	session.Confirming = true
	if err := s.store.SaveSession(session); err != nil {
		return err
	}
	if err := s.sender.SendButtons(session.Phone, flow.Summary(session.Fields),
		s.templates.ConfirmButtons()); err != nil {
		log.Printf("⚠️ No se pudo enviar el resumen a %s: %v", session.Phone, err)
	}
	return nil
}

// resolveConfirmation handles the yes/no stage of a flow
func (s *ConversationService) resolveConfirmation(session *models.Session, flow *Flow, input string) error {
	switch {
	case IsAffirmative(input):
		if err := s.store.DeleteSession(session.Phone); err != nil {
			return err
		}
		log.Printf("✅ Flujo %s confirmado por %s", session.Mode, session.Phone)
		s.text(session.Phone, flow.DoneText)
		s.mainMenu(session.Phone, "")

	case IsNegative(input):
		if err := s.store.DeleteSession(session.Phone); err != nil {
			return err
		}
		log.Printf("🚫 Flujo %s cancelado por %s", session.Mode, session.Phone)
		s.text(session.Phone, flow.CancelText)
		s.mainMenu(session.Phone, "")

	default:
		// Not a recognized yes/no: remind and stay put
		s.text(session.Phone, s.templates.ConfirmReminderText())
	}
	return nil
}

// promptSlot asks for the slot at the given index
func (s *ConversationService) promptSlot(phone string, flow *Flow, index int) {
	slot := flow.Slots[index]
	if len(slot.Options) > 0 {
		sections := []ListSection{{Title: "Opciones", Rows: slot.Options}}
		if err := s.sender.SendList(phone, slot.Prompt, "Ver opciones", sections); err != nil {
			log.Printf("⚠️ No se pudo enviar el prompt de %s a %s: %v", slot.Name, phone, err)
		}
		return
	}
	s.text(phone, slot.Prompt)
}

// text sends a plain text message, logging and swallowing failures
func (s *ConversationService) text(phone, body string) {
	if err := s.sender.SendText(phone, body); err != nil {
		log.Printf("⚠️ No se pudo enviar texto a %s: %v", phone, err)
	}
}

// mainMenu re-shows the top-level menu
func (s *ConversationService) mainMenu(phone, prompt string) {
	if prompt == "" {
		prompt = "¿Qué te gustaría hacer?"
	}
	if err := s.sender.SendButtons(phone, prompt, s.templates.MainMenuButtons()); err != nil {
		log.Printf("⚠️ No se pudo enviar el menú principal a %s: %v", phone, err)
	}
}

// extraMenu shows the second menu (plan / beer / reserve)
func (s *ConversationService) extraMenu(phone string) {
	if err := s.sender.SendButtons(phone, "Más opciones:", s.templates.ExtraMenuButtons()); err != nil {
		log.Printf("⚠️ No se pudo enviar el menú extra a %s: %v", phone, err)
	}
}

// lockFor returns the serialization mutex for a phone
func (s *ConversationService) lockFor(phone string) *sync.Mutex {
	lock, _ := s.phoneLocks.LoadOrStore(phone, &sync.Mutex{})
	return lock.(*sync.Mutex)
}
