package session

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromClaims(t *testing.T) {
	id := uuid.New()
	s, err := FromClaims(jwt.MapClaims{
		"sub":   id.String(),
		"email": "budi@example.com",
		"name":  "Budi",
		"role":  "user",
	})
	require.NoError(t, err)

	assert.Equal(t, id, s.UserID)
	assert.Equal(t, "budi@example.com", s.Email)
	assert.Equal(t, "Budi", s.DisplayName)
	assert.False(t, s.IsZero())
}

func TestFromClaims_Invalid(t *testing.T) {
	_, err := FromClaims(jwt.MapClaims{})
	assert.Error(t, err)

	_, err = FromClaims(jwt.MapClaims{"sub": "not-a-uuid"})
	assert.Error(t, err)
}

func TestFromFiber_NoToken(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		_, err := FromFiber(c)
		assert.ErrorIs(t, err, ErrNoSession)
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestHub_SubscribeAndUnsubscribe(t *testing.T) {
	h := NewHub()

	var got []Event
	unsubscribe := h.Subscribe(func(e Event) { got = append(got, e) })

	s := Session{UserID: uuid.New()}
	h.Publish(Event{Kind: EventSignedIn, Session: s})
	require.Len(t, got, 1)
	assert.Equal(t, EventSignedIn, got[0].Kind)
	assert.Equal(t, s.UserID, got[0].Session.UserID)

	unsubscribe()
	unsubscribe()
	h.Publish(Event{Kind: EventSignedOut})
	assert.Len(t, got, 1)
}

func TestHub_SubscribeUserStartsFromCurrentState(t *testing.T) {
	h := NewHub()
	budi := Session{UserID: uuid.New(), Email: "budi@example.com"}
	other := Session{UserID: uuid.New()}

	var before []Event
	unsubBefore := h.SubscribeUser(budi.UserID, func(e Event) { before = append(before, e) })
	defer unsubBefore()
	require.Len(t, before, 1)
	assert.Equal(t, EventCurrent, before[0].Kind)
	assert.True(t, before[0].Session.IsZero(), "signed out until a sign-in is seen")

	h.Publish(Event{Kind: EventSignedIn, Session: budi})
	h.Publish(Event{Kind: EventSignedIn, Session: other})

	var after []Event
	unsubAfter := h.SubscribeUser(budi.UserID, func(e Event) { after = append(after, e) })
	defer unsubAfter()
	require.Len(t, after, 1)
	assert.Equal(t, EventCurrent, after[0].Kind)
	assert.Equal(t, budi.Email, after[0].Session.Email)

	h.Publish(Event{Kind: EventSignedOut, Session: budi})
	require.Len(t, after, 2)
	assert.Equal(t, EventSignedOut, after[1].Kind)
	assert.Len(t, before, 3, "only budi's events: current, signed in, signed out")
}

func TestHub_SubscribeReplaysSignedInUsers(t *testing.T) {
	h := NewHub()
	a := Session{UserID: uuid.New()}
	b := Session{UserID: uuid.New()}
	h.Publish(Event{Kind: EventSignedIn, Session: a})
	h.Publish(Event{Kind: EventSignedIn, Session: b})
	h.Publish(Event{Kind: EventSignedOut, Session: b})

	var got []Event
	unsubscribe := h.Subscribe(func(e Event) { got = append(got, e) })
	defer unsubscribe()

	require.Len(t, got, 1)
	assert.Equal(t, EventCurrent, got[0].Kind)
	assert.Equal(t, a.UserID, got[0].Session.UserID)
}
