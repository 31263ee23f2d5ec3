package services

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CasaWayra/wayra-backend/internal/config"
	"github.com/CasaWayra/wayra-backend/internal/models"
	"github.com/CasaWayra/wayra-backend/internal/storage"
)

const testPhone = "593999999999"

type sentMessage struct {
	kind string // text, image, location, buttons, list
	to   string
	body string
	ids  []string // button / row option IDs
}

// fakeSender records outbound messages instead of calling the Cloud API
type fakeSender struct {
	mu   sync.Mutex
	sent []sentMessage
	fail bool
}

func (f *fakeSender) record(msg sentMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("gateway unavailable")
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeSender) SendText(to, body string) error {
	return f.record(sentMessage{kind: "text", to: to, body: body})
}

func (f *fakeSender) SendImage(to, link, caption string) error {
	return f.record(sentMessage{kind: "image", to: to, body: link})
}

func (f *fakeSender) SendLocation(to string, lat, lng float64, name, address string) error {
	return f.record(sentMessage{kind: "location", to: to, body: name})
}

func (f *fakeSender) SendButtons(to, body string, buttons []ReplyButton) error {
	ids := make([]string, 0, len(buttons))
	for _, b := range buttons {
		ids = append(ids, b.ID)
	}
	return f.record(sentMessage{kind: "buttons", to: to, body: body, ids: ids})
}

func (f *fakeSender) SendList(to, body, buttonText string, sections []ListSection) error {
	var ids []string
	for _, s := range sections {
		for _, r := range s.Rows {
			ids = append(ids, r.ID)
		}
	}
	return f.record(sentMessage{kind: "list", to: to, body: body, ids: ids})
}

func (f *fakeSender) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentMessage, len(f.sent))
	copy(out, f.sent)
	return out
}

func (f *fakeSender) last() sentMessage {
	msgs := f.messages()
	if len(msgs) == 0 {
		return sentMessage{}
	}
	return msgs[len(msgs)-1]
}

func (f *fakeSender) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = nil
}

func testConfig() *config.Config {
	return &config.Config{
		BusinessName: "Wayra Brew Garten",
		City:         "Ibarra",
		HoursText:    "Jue–Vie 18h–23h30",
		PlanText:     "PLAN WAYRA: todo a $2.",
		PromosText:   "Esta semana: 3 pintas por $10",
		MenuImageURL: "https://example.com/menu.jpg",
		MapsLat:      0.3517,
		MapsLng:      -78.1223,
		MapsName:     "Wayra Brew Garten",
		MapsAddress:  "Ibarra, Ecuador",
		MapsURL:      "https://maps.example.com/wayra",
	}
}

func newTestConversation(t *testing.T) (*ConversationService, *storage.MemoryStore, *fakeSender) {
	t.Helper()
	store := storage.NewMemoryStore()
	sender := &fakeSender{}
	cfg := testConfig()
	svc := NewConversationService(store, sender, NewTemplateService(cfg), cfg)
	return svc, store, sender
}

func mustSession(t *testing.T, store storage.Store, phone string) *models.Session {
	t.Helper()
	session, err := store.GetSession(phone)
	require.NoError(t, err)
	require.NotNil(t, session)
	return session
}

func TestGreetingShowsWelcomeAndMenu(t *testing.T) {
	svc, store, sender := newTestConversation(t)

	require.NoError(t, svc.HandleText(testPhone, "hola"))

	msgs := sender.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "text", msgs[0].kind)
	assert.Contains(t, msgs[0].body, "Wayra Brew Garten")
	assert.Contains(t, msgs[0].body, "Ibarra")
	assert.Equal(t, "buttons", msgs[1].kind)
	assert.Equal(t, []string{OptionHoursMenu, OptionLocation, OptionPromos}, msgs[1].ids)

	session, err := store.GetSession(testPhone)
	require.NoError(t, err)
	assert.Nil(t, session, "greeting must not create a session")
}

func TestHoursSendsTextImageAndExtraMenu(t *testing.T) {
	svc, _, sender := newTestConversation(t)

	require.NoError(t, svc.HandleSelection(testPhone, OptionHoursMenu))

	msgs := sender.messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "text", msgs[0].kind)
	assert.Contains(t, msgs[0].body, "Horarios:")
	assert.Equal(t, "image", msgs[1].kind)
	assert.Equal(t, "buttons", msgs[2].kind)
	assert.Equal(t, []string{OptionPlanWayra, OptionOrderBeer, OptionReserveTable}, msgs[2].ids)
}

func TestLocationSendsPinLinkAndMenu(t *testing.T) {
	svc, _, sender := newTestConversation(t)

	require.NoError(t, svc.HandleText(testPhone, "dónde están?"))

	msgs := sender.messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "location", msgs[0].kind)
	assert.Equal(t, "text", msgs[1].kind)
	assert.Contains(t, msgs[1].body, "https://maps.example.com/wayra")
	assert.Equal(t, "buttons", msgs[2].kind)
}

func TestUnknownTextSendsFallbackWithoutSession(t *testing.T) {
	svc, store, sender := newTestConversation(t)

	require.NoError(t, svc.HandleText(testPhone, "qwerty"))

	msgs := sender.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "text", msgs[0].kind)
	assert.Contains(t, msgs[0].body, "Puedo ayudarte con")
	assert.Equal(t, "list", msgs[1].kind)
	assert.Contains(t, msgs[1].ids, OptionReserveSpecial)

	session, err := store.GetSession(testPhone)
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestUnknownSelectionReshowsMenu(t *testing.T) {
	svc, _, sender := newTestConversation(t)

	require.NoError(t, svc.HandleSelection(testPhone, "mystery_button"))

	msgs := sender.messages()
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0].body, "No entendí la opción")
	assert.Equal(t, "buttons", msgs[1].kind)
}

func TestReserveSelectionStartsFlow(t *testing.T) {
	svc, store, sender := newTestConversation(t)

	require.NoError(t, svc.HandleSelection(testPhone, OptionReserveTable))

	session := mustSession(t, store, testPhone)
	assert.Equal(t, models.ModeReserving, session.Mode)
	assert.Equal(t, 0, session.SlotIndex)
	assert.False(t, session.Confirming)

	msgs := sender.messages()
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0].body, "vamos con tu reserva")
	assert.Contains(t, msgs[1].body, "fecha")
}

func TestFullReservationFlowConfirmed(t *testing.T) {
	svc, store, sender := newTestConversation(t)

	require.NoError(t, svc.HandleSelection(testPhone, OptionReserveTable))

	inputs := []string{"15/10", "20:00", "4", "Ana"}
	for _, input := range inputs {
		require.NoError(t, svc.HandleText(testPhone, input))
	}

	// All slots filled: summary with yes/no buttons, session confirming
	session := mustSession(t, store, testPhone)
	assert.True(t, session.Confirming)
	assert.Equal(t, map[string]string{
		"fecha": "15/10", "hora": "20:00", "personas": "4", "nombre": "Ana",
	}, session.Fields)

	summary := sender.last()
	assert.Equal(t, "buttons", summary.kind)
	assert.Equal(t, []string{OptionConfirmYes, OptionConfirmNo}, summary.ids)
	for _, v := range inputs {
		assert.Contains(t, summary.body, v)
	}

	sender.reset()
	require.NoError(t, svc.HandleText(testPhone, "sí"))

	gone, err := store.GetSession(testPhone)
	require.NoError(t, err)
	assert.Nil(t, gone, "session must be deleted on confirmation")

	msgs := sender.messages()
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0].body, "Reserva registrada")
	assert.Equal(t, "buttons", msgs[1].kind, "menu is re-shown after success")
}

func TestReservationCancelledAtConfirm(t *testing.T) {
	svc, store, sender := newTestConversation(t)

	require.NoError(t, svc.HandleSelection(testPhone, OptionReserveTable))
	for _, input := range []string{"15/10", "20:00", "4", "Ana"} {
		require.NoError(t, svc.HandleText(testPhone, input))
	}

	sender.reset()
	require.NoError(t, svc.HandleText(testPhone, "no"))

	gone, err := store.GetSession(testPhone)
	require.NoError(t, err)
	assert.Nil(t, gone)

	msgs := sender.messages()
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0].body, "cancelada")
	assert.Equal(t, "buttons", msgs[1].kind)
}

func TestUnrecognizedConfirmInputKeepsWaiting(t *testing.T) {
	svc, store, sender := newTestConversation(t)

	require.NoError(t, svc.HandleSelection(testPhone, OptionReserveTable))
	for _, input := range []string{"15/10", "20:00", "4", "Ana"} {
		require.NoError(t, svc.HandleText(testPhone, input))
	}

	sender.reset()
	require.NoError(t, svc.HandleText(testPhone, "tal vez"))

	session := mustSession(t, store, testPhone)
	assert.True(t, session.Confirming, "state must not change")

	msgs := sender.messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].body, "Responde")
}

func TestActiveFlowTakesPriorityOverIntents(t *testing.T) {
	svc, store, _ := newTestConversation(t)

	require.NoError(t, svc.HandleSelection(testPhone, OptionReserveTable))

	// "hola" would normally classify as a greeting, but mid-flow it is
	// consumed as the pending slot value
	require.NoError(t, svc.HandleText(testPhone, "hola"))

	session := mustSession(t, store, testPhone)
	assert.Equal(t, "hola", session.Fields["fecha"])
	assert.Equal(t, 1, session.SlotIndex)
}

func TestSpecialReservationFlow(t *testing.T) {
	svc, store, sender := newTestConversation(t)

	require.NoError(t, svc.HandleText(testPhone, "quiero algo especial"))

	session := mustSession(t, store, testPhone)
	require.Equal(t, models.ModeReservingSpecial, session.Mode)

	inputs := []string{"cumpleaños", "15/10", "20:00", "8", "Ana", "torta sin gluten"}
	for _, input := range inputs {
		require.NoError(t, svc.HandleText(testPhone, input))
	}

	session = mustSession(t, store, testPhone)
	assert.True(t, session.Confirming)

	summary := sender.last()
	for _, v := range inputs {
		assert.Contains(t, summary.body, v)
	}
}

func TestBeerFlowStartsWithKindList(t *testing.T) {
	svc, store, sender := newTestConversation(t)

	require.NoError(t, svc.HandleText(testPhone, "quiero cerveza"))

	session := mustSession(t, store, testPhone)
	assert.Equal(t, models.ModeOrderingBeer, session.Mode)

	prompt := sender.last()
	assert.Equal(t, "list", prompt.kind)
	assert.Equal(t, []string{OptionBeerSixpack, OptionBeerKeg20, OptionBeerKeg30}, prompt.ids)
}

func TestBeerKindValidationRejectsAndReprompts(t *testing.T) {
	svc, store, sender := newTestConversation(t)

	require.NoError(t, svc.HandleText(testPhone, "quiero cerveza"))

	sender.reset()
	require.NoError(t, svc.HandleText(testPhone, "algo"))

	session := mustSession(t, store, testPhone)
	assert.Equal(t, 0, session.SlotIndex, "invalid kind must not advance the slot")
	assert.Empty(t, session.Fields["tipo"])

	msgs := sender.messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].body, "No reconocí esa presentación")

	// Free text with a recognizable keyword advances
	require.NoError(t, svc.HandleText(testPhone, "quiero 20 litros"))
	session = mustSession(t, store, testPhone)
	assert.Equal(t, BeerKindKeg20L, session.Fields["tipo"])
	assert.Equal(t, 1, session.SlotIndex)
}

func TestBeerListSelectionFeedsKindSlot(t *testing.T) {
	svc, store, _ := newTestConversation(t)

	require.NoError(t, svc.HandleText(testPhone, "quiero cerveza"))
	require.NoError(t, svc.HandleSelection(testPhone, OptionBeerSixpack))

	session := mustSession(t, store, testPhone)
	assert.Equal(t, BeerKindSixpack, session.Fields["tipo"])
	assert.Equal(t, 1, session.SlotIndex)
}

func TestFullBeerOrderSummaryUsesLabel(t *testing.T) {
	svc, _, sender := newTestConversation(t)

	require.NoError(t, svc.HandleText(testPhone, "quiero cerveza"))
	for _, input := range []string{"sixpack", "3", "retiro en el local"} {
		require.NoError(t, svc.HandleText(testPhone, input))
	}

	summary := sender.last()
	assert.Equal(t, "buttons", summary.kind)
	assert.Contains(t, summary.body, "Sixpack")
	assert.Contains(t, summary.body, "3")
	assert.Contains(t, summary.body, "retiro en el local")
}

func TestSendFailureDoesNotRollBackTransition(t *testing.T) {
	svc, store, sender := newTestConversation(t)

	require.NoError(t, svc.HandleSelection(testPhone, OptionReserveTable))

	// Gateway goes dark; the state machine still advances
	sender.mu.Lock()
	sender.fail = true
	sender.mu.Unlock()

	require.NoError(t, svc.HandleText(testPhone, "15/10"))

	session := mustSession(t, store, testPhone)
	assert.Equal(t, "15/10", session.Fields["fecha"])
	assert.Equal(t, 1, session.SlotIndex)
}

func TestEmptyInputRepromptsSameSlot(t *testing.T) {
	svc, store, sender := newTestConversation(t)

	require.NoError(t, svc.HandleSelection(testPhone, OptionReserveTable))

	sender.reset()
	require.NoError(t, svc.HandleText(testPhone, "   "))

	session := mustSession(t, store, testPhone)
	assert.Equal(t, 0, session.SlotIndex)
	assert.Contains(t, sender.last().body, "fecha")
}

func TestSamePhoneMessagesAreSerialized(t *testing.T) {
	svc, store, _ := newTestConversation(t)

	require.NoError(t, svc.HandleSelection(testPhone, OptionReserveTable))

	var wg sync.WaitGroup
	for _, input := range []string{"15/10", "20:00"} {
		wg.Add(1)
		go func(text string) {
			defer wg.Done()
			_ = svc.HandleText(testPhone, text)
		}(input)
	}
	wg.Wait()

	// Arrival order is not guaranteed, but each message must land in
	// exactly one slot: no merges, no lost updates
	session := mustSession(t, store, testPhone)
	assert.Equal(t, 2, session.SlotIndex)
	values := []string{session.Fields["fecha"], session.Fields["hora"]}
	assert.ElementsMatch(t, []string{"15/10", "20:00"}, values)
}

func TestSessionListingIsSafeDuringSlotFilling(t *testing.T) {
	svc, store, _ := newTestConversation(t)

	require.NoError(t, svc.HandleSelection(testPhone, OptionReserveTable))

	// The admin endpoint marshals active sessions while the flow keeps
	// writing slot fields. The store hands out detached copies, so the
	// two sides never share a Fields map (verified under -race).
	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, input := range []string{"15/10", "20:00", "4", "Carla"} {
			_ = svc.HandleText(testPhone, input)
		}
	}()

	for i := 0; i < 100; i++ {
		sessions, err := store.GetActiveSessions()
		require.NoError(t, err)
		for _, session := range sessions {
			_, err := json.Marshal(session.Fields)
			require.NoError(t, err)
		}
	}
	<-done

	session := mustSession(t, store, testPhone)
	assert.True(t, session.Confirming)
	assert.Equal(t, "Carla", session.Fields["nombre"])
}

func TestDistinctPhonesDoNotCrossContaminate(t *testing.T) {
	svc, store, _ := newTestConversation(t)

	phoneA := "593111111111"
	phoneB := "593222222222"

	require.NoError(t, svc.HandleSelection(phoneA, OptionReserveTable))
	require.NoError(t, svc.HandleSelection(phoneB, OptionOrderBeer))
	require.NoError(t, svc.HandleText(phoneA, "15/10"))
	require.NoError(t, svc.HandleText(phoneB, "sixpack"))

	sessionA := mustSession(t, store, phoneA)
	sessionB := mustSession(t, store, phoneB)
	assert.Equal(t, models.ModeReserving, sessionA.Mode)
	assert.Equal(t, "15/10", sessionA.Fields["fecha"])
	assert.Equal(t, models.ModeOrderingBeer, sessionB.Mode)
	assert.Equal(t, BeerKindSixpack, sessionB.Fields["tipo"])
}
