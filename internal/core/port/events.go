package port

import "context"

// EventConsumer delivers storage notifications to a MessageService
type EventConsumer interface {
	Subscribe(ctx context.Context, handler MessageService) error
	Close() error
}

// MessageService handles one raw notification payload
type MessageService interface {
	HandleMessage(ctx context.Context, data []byte) error
}
