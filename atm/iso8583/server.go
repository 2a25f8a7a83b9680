// Package iso8583 is the ATM host link: card-present transactions carried as
// ISO 8583 0200/0210 messages over TCP.
package iso8583

import (
	"fmt"
	"strconv"

	"github.com/alovak/atm-playground/atm/models"
	"github.com/alovak/atm-playground/internal/cardid"
	"github.com/moov-io/iso8583"
	connection "github.com/moov-io/iso8583-connection"
	"github.com/moov-io/iso8583-connection/server"
	"golang.org/x/exp/slog"
)

// Transactor runs one card-present transaction. *atm.Service implements it.
type Transactor interface {
	Transact(req models.TransactionRequest) (models.TransactionResult, error)
}

type Server struct {
	Addr string

	logger *slog.Logger
	atm    Transactor
	server *server.Server
}

func NewServer(logger *slog.Logger, addr string, atm Transactor) *Server {
	return &Server{
		Addr:   addr,
		logger: logger.With(slog.String("component", "iso8583")),
		atm:    atm,
	}
}

// Start listens on Addr. When Addr has port 0, Addr is updated with the
// port actually taken.
func (s *Server) Start() error {
	srv := server.New(spec, readMessageLength, writeMessageLength, connection.InboundMessageHandler(s.handleMessage))

	err := srv.Start(s.Addr)
	if err != nil {
		return fmt.Errorf("starting iso8583 server: %w", err)
	}

	s.Addr = srv.Addr
	s.server = srv

	s.logger.Info("iso8583 server started", slog.String("addr", s.Addr))

	return nil
}

func (s *Server) Close() error {
	if s.server != nil {
		s.server.Close()
	}
	return nil
}

func (s *Server) handleMessage(c *connection.Connection, message *iso8583.Message) {
	mti, err := message.GetMTI()
	if err != nil {
		s.logger.Error("getting MTI", slog.String("err", err.Error()))
		return
	}

	if mti != mtiRequest {
		s.logger.Warn("unexpected message", slog.String("mti", mti))
		return
	}

	response, err := s.process(message)
	if err != nil {
		s.logger.Error("building response", slog.String("err", err.Error()))
		return
	}

	if err := c.Reply(response); err != nil {
		s.logger.Error("replying", slog.String("err", err.Error()))
	}
}

func (s *Server) process(message *iso8583.Message) (*iso8583.Message, error) {
	response := iso8583.NewMessage(spec)
	response.MTI(mtiResponse)

	// echo the request fields
	for _, id := range []int{2, 3, 4, 11, 41} {
		v := getString(message, id)
		if v == "" {
			continue
		}
		if err := response.Field(id, v); err != nil {
			return nil, fmt.Errorf("setting field %d: %w", id, err)
		}
	}

	req, code := parseRequest(message)
	logger := s.logger.With(
		slog.String("stan", getString(message, 11)),
		slog.String("terminal", getString(message, 41)),
		slog.String("card", cardid.Mask(req.CardID)),
	)

	if code == "" {
		result, err := s.atm.Transact(req)
		code = responseCodeFor(err)

		if err != nil {
			logger.Info("transaction declined",
				slog.String("operation", string(req.Operation)),
				slog.String("code", code),
				slog.String("reason", err.Error()),
			)
		} else {
			logger.Info("transaction approved", slog.String("operation", string(req.Operation)))
			if err := response.Field(54, strconv.FormatInt(result.Balance, 10)); err != nil {
				return nil, fmt.Errorf("setting balance: %w", err)
			}
		}
	} else {
		logger.Info("malformed request", slog.String("code", code))
	}

	if err := response.Field(39, code); err != nil {
		return nil, fmt.Errorf("setting response code: %w", err)
	}

	return response, nil
}

// parseRequest returns a non-empty response code when the message cannot be
// turned into a transaction.
func parseRequest(message *iso8583.Message) (models.TransactionRequest, string) {
	req := models.TransactionRequest{
		CardID: getString(message, 2),
		PIN:    getString(message, 52),
	}
	if req.CardID == "" {
		return req, CodeFormatError
	}

	op, ok := operationFor(getString(message, 3))
	if !ok {
		return req, CodeInvalidAmount
	}
	req.Operation = op

	if op == models.OperationBalance {
		return req, ""
	}

	amount, err := strconv.ParseInt(getString(message, 4), 10, 64)
	if err != nil {
		return req, CodeInvalidAmount
	}
	req.Amount = amount

	return req, ""
}

// getString treats unset and unreadable fields alike. Unset numeric fields
// would otherwise read as "0".
func getString(message *iso8583.Message, id int) string {
	if _, set := message.GetFields()[id]; !set {
		return ""
	}
	v, err := message.GetString(id)
	if err != nil {
		return ""
	}
	return v
}
