package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lorrc/ticket-relay/internal/core/domain"
	apperrors "github.com/lorrc/ticket-relay/internal/core/errors"
	"github.com/lorrc/ticket-relay/internal/core/mocks"
	"github.com/lorrc/ticket-relay/internal/core/ports"
	"github.com/lorrc/ticket-relay/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMessageService_SendMessage(t *testing.T) {
	ctx := context.Background()
	connID := uuid.New()

	persisted := &domain.TicketMessage{
		ID:              101,
		TicketID:        7,
		Sender:          domain.RoleAdmin,
		AccountID:       1,
		Text:            "Hello",
		CreatedAt:       time.Now(),
		DisplayUsername: "root",
	}

	t.Run("admin message notifies room and ticket owner", func(t *testing.T) {
		mockMessages := mocks.NewMockMessageRepository()
		mockTickets := mocks.NewMockTicketRepository()
		mockRouter := mocks.NewMockEventRouter()

		svc := services.NewMessageService(mockMessages, mockTickets, mockRouter, testLogger())

		mockMessages.On("Insert", ctx, ports.InsertMessageParams{
			TicketID:  7,
			Sender:    domain.RoleAdmin,
			AccountID: 1,
			Text:      "Hello",
		}).Return(int64(101), nil)
		mockMessages.On("GetByID", ctx, int64(101)).Return(persisted, nil)
		mockRouter.On("BroadcastToRoom", int64(7), domain.EventNewMessage, persisted, uuid.Nil).Return(2)
		mockTickets.On("GetByID", ctx, int64(7)).Return(&domain.Ticket{ID: 7, AccountID: 42, Title: "Printer"}, nil)
		mockRouter.On("SendToAccount", domain.AccountID(42), domain.RoleEndUser, domain.EventNewAdminMessage, mock.AnythingOfType("services.MessageNotification")).Return(1)

		msg, err := svc.SendMessage(ctx, ports.SendMessageParams{
			ConnectionID: connID,
			TicketID:     7,
			AccountID:    1,
			Username:     "root",
			Sender:       domain.RoleAdmin,
			Text:         "Hello",
		})

		require.NoError(t, err)
		assert.Equal(t, int64(101), msg.ID)
		mockMessages.AssertExpectations(t)
		mockRouter.AssertExpectations(t)
		mockTickets.AssertExpectations(t)
	})

	t.Run("user message notifies admins even when none are online", func(t *testing.T) {
		mockMessages := mocks.NewMockMessageRepository()
		mockTickets := mocks.NewMockTicketRepository()
		mockRouter := mocks.NewMockEventRouter()

		svc := services.NewMessageService(mockMessages, mockTickets, mockRouter, testLogger())

		userMsg := &domain.TicketMessage{ID: 55, TicketID: 9, Sender: domain.RoleEndUser, AccountID: 42, Text: "help"}

		mockMessages.On("Insert", ctx, mock.AnythingOfType("ports.InsertMessageParams")).Return(int64(55), nil)
		mockMessages.On("GetByID", ctx, int64(55)).Return(userMsg, nil)
		mockRouter.On("BroadcastToRoom", int64(9), domain.EventNewMessage, userMsg, uuid.Nil).Return(1)
		// Zero admins online: zero deliveries, no error.
		mockRouter.On("BroadcastToAdmins", domain.EventNewUserMessage, mock.AnythingOfType("services.MessageNotification")).Return(0)

		msg, err := svc.SendMessage(ctx, ports.SendMessageParams{
			ConnectionID: connID,
			TicketID:     9,
			AccountID:    42,
			Username:     "alice",
			Sender:       domain.RoleEndUser,
			Text:         "help",
		})

		require.NoError(t, err)
		assert.Equal(t, int64(55), msg.ID)
		mockRouter.AssertExpectations(t)
		mockTickets.AssertNotCalled(t, "GetByID")
	})

	t.Run("missing ticket id reports message_error to origin only", func(t *testing.T) {
		mockMessages := mocks.NewMockMessageRepository()
		mockTickets := mocks.NewMockTicketRepository()
		mockRouter := mocks.NewMockEventRouter()

		svc := services.NewMessageService(mockMessages, mockTickets, mockRouter, testLogger())

		mockRouter.On("SendToConnection", connID, domain.EventMessageError, mock.AnythingOfType("services.SendErrorPayload")).Return(true)

		msg, err := svc.SendMessage(ctx, ports.SendMessageParams{
			ConnectionID: connID,
			Sender:       domain.RoleEndUser,
			Text:         "orphan",
		})

		assert.Nil(t, msg)
		assert.ErrorIs(t, err, apperrors.ErrTicketIDRequired)
		mockMessages.AssertNotCalled(t, "Insert")
		mockRouter.AssertNotCalled(t, "BroadcastToRoom")
		mockRouter.AssertExpectations(t)
	})

	t.Run("insert failure reports message_error and no broadcast", func(t *testing.T) {
		mockMessages := mocks.NewMockMessageRepository()
		mockTickets := mocks.NewMockTicketRepository()
		mockRouter := mocks.NewMockEventRouter()

		svc := services.NewMessageService(mockMessages, mockTickets, mockRouter, testLogger())

		mockMessages.On("Insert", ctx, mock.AnythingOfType("ports.InsertMessageParams")).
			Return(int64(0), errors.New("connection refused"))
		mockRouter.On("SendToConnection", connID, domain.EventMessageError, mock.AnythingOfType("services.SendErrorPayload")).Return(true)

		msg, err := svc.SendMessage(ctx, ports.SendMessageParams{
			ConnectionID: connID,
			TicketID:     7,
			AccountID:    42,
			Sender:       domain.RoleEndUser,
			Text:         "hi",
		})

		assert.Nil(t, msg)
		assert.Error(t, err)
		mockRouter.AssertNotCalled(t, "BroadcastToRoom")
		mockRouter.AssertNotCalled(t, "BroadcastToAdmins")
		mockRouter.AssertExpectations(t)
	})

	t.Run("reload failure reports message_error", func(t *testing.T) {
		mockMessages := mocks.NewMockMessageRepository()
		mockTickets := mocks.NewMockTicketRepository()
		mockRouter := mocks.NewMockEventRouter()

		svc := services.NewMessageService(mockMessages, mockTickets, mockRouter, testLogger())

		mockMessages.On("Insert", ctx, mock.AnythingOfType("ports.InsertMessageParams")).Return(int64(101), nil)
		mockMessages.On("GetByID", ctx, int64(101)).Return(nil, apperrors.ErrMessageNotFound)
		mockRouter.On("SendToConnection", connID, domain.EventMessageError, mock.AnythingOfType("services.SendErrorPayload")).Return(true)

		msg, err := svc.SendMessage(ctx, ports.SendMessageParams{
			ConnectionID: connID,
			TicketID:     7,
			AccountID:    42,
			Sender:       domain.RoleEndUser,
			Text:         "hi",
		})

		assert.Nil(t, msg)
		assert.ErrorIs(t, err, apperrors.ErrMessageNotFound)
		mockRouter.AssertNotCalled(t, "BroadcastToRoom")
	})

	t.Run("owner lookup failure does not fail an admin send", func(t *testing.T) {
		mockMessages := mocks.NewMockMessageRepository()
		mockTickets := mocks.NewMockTicketRepository()
		mockRouter := mocks.NewMockEventRouter()

		svc := services.NewMessageService(mockMessages, mockTickets, mockRouter, testLogger())

		mockMessages.On("Insert", ctx, mock.AnythingOfType("ports.InsertMessageParams")).Return(int64(101), nil)
		mockMessages.On("GetByID", ctx, int64(101)).Return(persisted, nil)
		mockRouter.On("BroadcastToRoom", int64(7), domain.EventNewMessage, persisted, uuid.Nil).Return(1)
		mockTickets.On("GetByID", ctx, int64(7)).Return(nil, apperrors.ErrTicketNotFound)

		msg, err := svc.SendMessage(ctx, ports.SendMessageParams{
			ConnectionID: connID,
			TicketID:     7,
			AccountID:    1,
			Username:     "root",
			Sender:       domain.RoleAdmin,
			Text:         "Hello",
		})

		require.NoError(t, err)
		assert.NotNil(t, msg)
		mockRouter.AssertNotCalled(t, "SendToAccount")
	})
}

func TestMessageService_History(t *testing.T) {
	ctx := context.Background()

	t.Run("returns messages in storage order", func(t *testing.T) {
		mockMessages := mocks.NewMockMessageRepository()
		mockTickets := mocks.NewMockTicketRepository()
		mockRouter := mocks.NewMockEventRouter()

		svc := services.NewMessageService(mockMessages, mockTickets, mockRouter, testLogger())

		history := []*domain.TicketMessage{
			{ID: 1, TicketID: 7, Text: "first"},
			{ID: 2, TicketID: 7, Text: "second"},
		}
		mockMessages.On("ListByTicket", ctx, int64(7)).Return(history, nil)

		got, err := svc.History(ctx, 7)

		require.NoError(t, err)
		assert.Equal(t, history, got)
	})

	t.Run("rejects a missing ticket id", func(t *testing.T) {
		mockMessages := mocks.NewMockMessageRepository()
		mockTickets := mocks.NewMockTicketRepository()
		mockRouter := mocks.NewMockEventRouter()

		svc := services.NewMessageService(mockMessages, mockTickets, mockRouter, testLogger())

		_, err := svc.History(ctx, 0)
		assert.ErrorIs(t, err, apperrors.ErrTicketIDRequired)
		mockMessages.AssertNotCalled(t, "ListByTicket")
	})
}
