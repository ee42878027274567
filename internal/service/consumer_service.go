package service

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/Krussell101/data-visualizer/internal/constant"
	"github.com/Krussell101/data-visualizer/internal/dto"
	"github.com/Krussell101/data-visualizer/internal/repository/specification"
	"github.com/Krussell101/data-visualizer/internal/repository/unitofwork"
)

const sessionTitleMaxLen = 80

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService reacts to recorded exchanges off the request path. Its one
// job today is session naming: a session created with the default title takes
// its name from the first successful prompt.
type consumerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
) IConsumerService {
	return &consumerService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.ExchangeRecordedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal exchange message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.AnalysisSessionRepository().FindOne(ctx, specification.ByID{ID: payload.SessionId})
	if err != nil {
		log.Printf("[ERROR] Failed to get session %s: %v", payload.SessionId, err)
		msg.Nack() // Nack for retriable errors
		return
	}
	if session == nil {
		// Session deleted between recording and consumption
		msg.Ack()
		return
	}

	now := time.Now()
	if payload.Status == constant.QueryStatusSuccess && session.Title == constant.DefaultSessionTitle {
		session.Title = deriveTitle(payload.Prompt)
		log.Printf("[INFO] Naming session %s from first successful prompt", session.Id)
	}
	session.UpdatedAt = &now

	if err := uow.AnalysisSessionRepository().Update(ctx, session); err != nil {
		log.Printf("[ERROR] Failed to update session %s: %v", session.Id, err)
		msg.Nack()
		return
	}

	msg.Ack()
}

func deriveTitle(prompt string) string {
	title := strings.Join(strings.Fields(prompt), " ")
	if title == "" {
		return constant.DefaultSessionTitle
	}
	runes := []rune(title)
	if len(runes) > sessionTitleMaxLen {
		title = strings.TrimSpace(string(runes[:sessionTitleMaxLen])) + "…"
	}
	return title
}
