package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/server/media"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
	"github.com/dmitrijs2005/gophchat/internal/server/registry"
	"github.com/dmitrijs2005/gophchat/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// ChannelLookup finds the live channel of a user.
type ChannelLookup interface {
	Lookup(userID string) (registry.Channel, bool)
}

// MessageService persists direct messages and routes them to live channels.
type MessageService struct {
	repomanager repomanager.RepositoryManager
	channels    ChannelLookup
	media       media.Store
	logger      logging.Logger
}

func NewMessageService(m repomanager.RepositoryManager, channels ChannelLookup, store media.Store, logger logging.Logger) *MessageService {
	return &MessageService{
		repomanager: m,
		channels:    channels,
		media:       store,
		logger:      logger.With("module", "messages"),
	}
}

// Send stores a message from senderID to receiverID and pushes it to the
// receiver's live channel if there is one.
//
// The message is written before any push is attempted. If the write fails
// the call fails and nothing is pushed. A failed push is logged and does not
// affect the result: the receiver will see the message in history.
// An inline image is uploaded before the write; an upload failure stores nothing.
func (s *MessageService) Send(ctx context.Context, senderID, receiverID string, content models.Content) (*models.Message, error) {
	// a started send runs to completion even if the caller goes away
	ctx = context.WithoutCancel(ctx)

	if err := content.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(receiverID) == "" {
		return nil, fmt.Errorf("%w: receiver is required", common.ErrValidation)
	}

	if _, err := s.repomanager.Users(s.repomanager.Conn()).GetUserByID(ctx, receiverID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrIdentityNotFound
		}
		return nil, storageErr("find receiver", err)
	}

	imageURL := ""
	if content.Image != "" {
		img, err := media.DecodeImage(content.Image)
		if err != nil {
			return nil, err
		}
		imageURL, err = s.media.Upload(ctx, img.Data, img.ContentType)
		if err != nil {
			s.logger.Error(ctx, "image upload failed", "sender_id", senderID, "error", err)
			return nil, err
		}
	}

	msg := &models.Message{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       content.Text,
		Image:      imageURL,
	}

	// the store assigns CreatedAt
	saved, err := s.repomanager.Messages(s.repomanager.Conn()).Create(ctx, msg)
	if err != nil {
		s.logger.Error(ctx, "message not stored", "sender_id", senderID, "receiver_id", receiverID, "error", err)
		return nil, storageErr("store message", err)
	}

	s.deliver(ctx, saved)
	return saved, nil
}

func (s *MessageService) deliver(ctx context.Context, m *models.Message) {
	ch, ok := s.channels.Lookup(m.ReceiverID)
	if !ok {
		s.logger.Debug(ctx, "receiver offline", "message_id", m.ID, "receiver_id", m.ReceiverID)
		return
	}

	if err := ch.Push(registry.NewMessageEvent(m)); err != nil {
		s.logger.Warn(ctx, "live delivery failed", "message_id", m.ID, "receiver_id", m.ReceiverID, "error", err)
	}
}

// History returns the conversation between userID and otherID, oldest first.
func (s *MessageService) History(ctx context.Context, userID, otherID string) ([]*models.Message, error) {
	if strings.TrimSpace(otherID) == "" {
		return nil, fmt.Errorf("%w: user to chat with is required", common.ErrValidation)
	}

	list, err := s.repomanager.Messages(s.repomanager.Conn()).FindByParticipants(ctx, userID, otherID)
	if err != nil {
		return nil, storageErr("load history", err)
	}
	return list, nil
}
