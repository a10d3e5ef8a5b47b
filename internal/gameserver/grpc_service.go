package gameserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/cory-johannsen/parlor/internal/game/session"
	"github.com/cory-johannsen/parlor/internal/observability"
	"github.com/cory-johannsen/parlor/internal/protocol"
)

// SessionMethod is the full method name of the bidirectional session stream.
const SessionMethod = "/parlor.v1.SessionService/Session"

// errOutboxClosed ends forwardEvents when the connection's outbox is closed.
var errOutboxClosed = errors.New("outbox closed")

// SessionServiceServer is the server API for parlor.v1.SessionService.
// Both directions carry google.protobuf.Struct envelopes of the form
// {"type": ..., "payload": {...}}.
type SessionServiceServer interface {
	Session(stream grpc.ServerStream) error
}

// SessionServiceDesc describes parlor.v1.SessionService for grpc.Server.RegisterService.
var SessionServiceDesc = grpc.ServiceDesc{
	ServiceName: "parlor.v1.SessionService",
	HandlerType: (*SessionServiceServer)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Session",
			Handler:       sessionStreamHandler,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "parlor/v1/session.proto",
}

func sessionStreamHandler(srv interface{}, stream grpc.ServerStream) error {
	return srv.(SessionServiceServer).Session(stream)
}

// RegisterSessionServiceServer registers svc on s.
func RegisterSessionServiceServer(s grpc.ServiceRegistrar, svc SessionServiceServer) {
	s.RegisterService(&SessionServiceDesc, svc)
}

// SessionService exposes the coordinator over a gRPC bidirectional stream.
// One stream is one connection.
type SessionService struct {
	coord  *Coordinator
	logger *zap.Logger
}

// NewSessionService creates a SessionService.
//
// Precondition: coord and logger must be non-nil.
func NewSessionService(coord *Coordinator, logger *zap.Logger) *SessionService {
	return &SessionService{coord: coord, logger: logger}
}

// Session handles a bidirectional stream:
//  1. Register a connection with a fresh uuid
//  2. Forward outbox events to the stream on a goroutine
//  3. Dispatch inbound envelopes in order until the stream ends
//  4. Disconnect, which tells the other room member and tears the room down
func (s *SessionService) Session(stream grpc.ServerStream) error {
	connID := uuid.NewString()
	conn, err := s.coord.Connect(connID)
	if err != nil {
		return status.Errorf(codes.Internal, "registering connection: %v", err)
	}
	s.logger.Info("session stream opened", observability.Conn(connID))

	sendDone := make(chan error, 1)
	go func() { sendDone <- s.forwardEvents(conn.Outbox, stream) }()

	recvDone := make(chan error, 1)
	go func() { recvDone <- s.commandLoop(connID, stream) }()

	select {
	case err = <-recvDone:
		// Closing the outbox lets forwardEvents drain and return before the
		// handler does; the stream must not be written after that.
		s.coord.Disconnect(connID)
		<-sendDone
		if errors.Is(err, io.EOF) {
			err = nil
		}
	case err = <-sendDone:
		s.coord.Disconnect(connID)
		if errors.Is(err, errOutboxClosed) {
			err = status.Error(codes.ResourceExhausted, "outbound event buffer overflow")
		}
	}
	s.logger.Info("session stream closed", observability.Conn(connID), zap.Error(err))
	return err
}

// commandLoop dispatches inbound envelopes until the stream ends.
func (s *SessionService) commandLoop(connID string, stream grpc.ServerStream) error {
	for {
		msg := &structpb.Struct{}
		if err := stream.RecvMsg(msg); err != nil {
			return err
		}
		env, err := EnvelopeFromStruct(msg)
		if err != nil {
			_ = s.coord.Reject(connID, "", fmt.Errorf("%w: %v", ErrMalformedPayload, err))
			continue
		}
		_ = s.coord.Dispatch(connID, env)
	}
}

// forwardEvents sends outbox events to the stream until the outbox is closed.
func (s *SessionService) forwardEvents(outbox *session.Outbox, stream grpc.ServerStream) error {
	for ev := range outbox.Events() {
		msg, err := StructFromEvent(ev)
		if err != nil {
			s.logger.Error("encoding event", observability.Conn(outbox.ConnID()), observability.Event(ev.Type), zap.Error(err))
			continue
		}
		if err := stream.SendMsg(msg); err != nil {
			s.logger.Debug("forward event send failed", observability.Conn(outbox.ConnID()), zap.Error(err))
			return err
		}
	}
	return errOutboxClosed
}

// EnvelopeFromStruct converts a wire Struct into an inbound envelope.
func EnvelopeFromStruct(msg *structpb.Struct) (protocol.Envelope, error) {
	data, err := protojson.Marshal(msg)
	if err != nil {
		return protocol.Envelope{}, fmt.Errorf("encoding struct: %w", err)
	}
	return protocol.DecodeEnvelope(data)
}

// StructFromEvent converts an outbound event into a wire Struct.
func StructFromEvent(ev protocol.Event) (*structpb.Struct, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", ev.Type, err)
	}
	msg := &structpb.Struct{}
	if err := protojson.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("decoding %s into struct: %w", ev.Type, err)
	}
	return msg, nil
}

// StructFromEnvelope converts an inbound envelope into a wire Struct.
// Clients use it to build requests.
func StructFromEnvelope(env protocol.Envelope) (*structpb.Struct, error) {
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", env.Type, err)
	}
	msg := &structpb.Struct{}
	if err := protojson.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("decoding %s into struct: %w", env.Type, err)
	}
	return msg, nil
}
