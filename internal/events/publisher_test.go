package events_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/ehdrbdndns/Hagah-Backend/internal/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestUserSignedUpEvent_Marshal(t *testing.T) {
	ev := events.UserSignedUpEvent{
		EventType:  "user.signed_up",
		UserID:     uuid.New(),
		Provider:   "kakao",
		SignedUpAt: time.Now(),
	}

	b, err := json.Marshal(ev)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &decoded))
	require.Equal(t, "user.signed_up", decoded["event_type"])
	require.Equal(t, "kakao", decoded["provider"])
}
