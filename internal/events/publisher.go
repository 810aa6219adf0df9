package events

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/ehdrbdndns/Hagah-Backend/internal/model"
)

type EventPublisher interface {
	PublishUserSignedUp(user *model.User) error
}

type NatsPublisher struct {
	conn *nats.Conn
}

func NewNatsPublisher(natsURL string) (EventPublisher, error) {
	nc, err := nats.Connect(natsURL)

	if err != nil {
		return nil, err
	}

	return &NatsPublisher{conn: nc}, nil
}

type UserSignedUpEvent struct {
	EventType  string    `json:"event_type"`
	UserID     uuid.UUID `json:"user_id"`
	Provider   string    `json:"provider"`
	SignedUpAt time.Time `json:"signed_up_at"`
}

func (p *NatsPublisher) PublishUserSignedUp(user *model.User) error {
	event := UserSignedUpEvent{
		EventType:  "user.signed_up",
		UserID:     user.ID,
		Provider:   user.Provider,
		SignedUpAt: time.Now(),
	}

	eventJSON, err := json.Marshal(event)

	if err != nil {
		log.Printf("Error marshalling event JSON: %v", err)
		return err
	}

	subject := "user.signed_up"
	err = p.conn.Publish(subject, eventJSON)

	if err != nil {
		log.Printf("Error publishing to NATS: %v", err)
		return err
	}

	log.Printf("Published event to NATS on subject '%s' for user '%s'", subject, user.ID)

	return nil
}
