package websocket

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/rocketscienceinc/chatgames-backend/internal/entity"
)

const actionChat = "chat"

// Message - one websocket frame in either direction.
type Message struct {
	Action  string `json:"action"`
	Payload any    `json:"payload,omitempty"`
}

type ResponsePayload struct {
	Messages []entity.Message `json:"messages,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// decodeInput - the payload arrives as a free-form JSON object.
func decodeInput(payload any) (entity.Input, error) {
	var in entity.Input

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &in,
		WeaklyTypedInput: true,
		ErrorUnused:      false,
	})
	if err != nil {
		return entity.Input{}, fmt.Errorf("failed to build payload decoder: %w", err)
	}

	if err = decoder.Decode(payload); err != nil {
		return entity.Input{}, fmt.Errorf("failed to decode payload: %w", err)
	}

	return in, nil
}
