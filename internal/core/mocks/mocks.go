package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/lorrc/ticket-relay/internal/core/domain"
	"github.com/lorrc/ticket-relay/internal/core/ports"
	"github.com/stretchr/testify/mock"
)

// MockMessageRepository is a mock implementation of ports.MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

func NewMockMessageRepository() *MockMessageRepository {
	return &MockMessageRepository{}
}

func (m *MockMessageRepository) Insert(ctx context.Context, params ports.InsertMessageParams) (int64, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMessageRepository) GetByID(ctx context.Context, id int64) (*domain.TicketMessage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TicketMessage), args.Error(1)
}

func (m *MockMessageRepository) ListByTicket(ctx context.Context, ticketID int64) ([]*domain.TicketMessage, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.TicketMessage), args.Error(1)
}

// MockTicketRepository is a mock implementation of ports.TicketRepository
type MockTicketRepository struct {
	mock.Mock
}

func NewMockTicketRepository() *MockTicketRepository {
	return &MockTicketRepository{}
}

func (m *MockTicketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

// MockEventRouter is a mock implementation of ports.EventRouter
type MockEventRouter struct {
	mock.Mock
}

func NewMockEventRouter() *MockEventRouter {
	return &MockEventRouter{}
}

func (m *MockEventRouter) BroadcastToRoom(ticketID int64, eventType domain.EventType, payload any, exclude uuid.UUID) int {
	args := m.Called(ticketID, eventType, payload, exclude)
	return args.Int(0)
}

func (m *MockEventRouter) BroadcastToAdmins(eventType domain.EventType, payload any) int {
	args := m.Called(eventType, payload)
	return args.Int(0)
}

func (m *MockEventRouter) SendToConnection(connectionID uuid.UUID, eventType domain.EventType, payload any) bool {
	args := m.Called(connectionID, eventType, payload)
	return args.Bool(0)
}

func (m *MockEventRouter) SendToAccount(accountID domain.AccountID, roleFilter domain.Role, eventType domain.EventType, payload any) int {
	args := m.Called(accountID, roleFilter, eventType, payload)
	return args.Int(0)
}

func (m *MockEventRouter) SendToAccountOutsideRoom(accountID domain.AccountID, ticketID int64, eventType domain.EventType, payload any) int {
	args := m.Called(accountID, ticketID, eventType, payload)
	return args.Int(0)
}

// MockMessageService is a mock implementation of ports.MessageService
type MockMessageService struct {
	mock.Mock
}

func NewMockMessageService() *MockMessageService {
	return &MockMessageService{}
}

func (m *MockMessageService) SendMessage(ctx context.Context, params ports.SendMessageParams) (*domain.TicketMessage, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TicketMessage), args.Error(1)
}

func (m *MockMessageService) History(ctx context.Context, ticketID int64) ([]*domain.TicketMessage, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.TicketMessage), args.Error(1)
}

// MockStatusService is a mock implementation of ports.StatusService
type MockStatusService struct {
	mock.Mock
}

func NewMockStatusService() *MockStatusService {
	return &MockStatusService{}
}

func (m *MockStatusService) BroadcastRealtime(ctx context.Context, params ports.StatusChangeParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

func (m *MockStatusService) BroadcastToOwner(ctx context.Context, params ports.StatusChangeParams) (int, error) {
	args := m.Called(ctx, params)
	return args.Int(0), args.Error(1)
}

// MockSMSGateway is a mock implementation of ports.SMSGateway
type MockSMSGateway struct {
	mock.Mock
}

func NewMockSMSGateway() *MockSMSGateway {
	return &MockSMSGateway{}
}

func (m *MockSMSGateway) Send(ctx context.Context, destination, text string) (ports.SMSResult, error) {
	args := m.Called(ctx, destination, text)
	return args.Get(0).(ports.SMSResult), args.Error(1)
}

// MockDispatcher is a mock implementation of ports.Dispatcher
type MockDispatcher struct {
	mock.Mock
}

func NewMockDispatcher() *MockDispatcher {
	return &MockDispatcher{}
}

func (m *MockDispatcher) Send(connectionID uuid.UUID, event domain.Event) bool {
	args := m.Called(connectionID, event)
	return args.Bool(0)
}
