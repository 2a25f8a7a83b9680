package iso8583

import (
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/alovak/atm-playground/atm/models"
	"github.com/alovak/atm-playground/internal/cardid"
	"github.com/moov-io/iso8583"
	connection "github.com/moov-io/iso8583-connection"
)

// DefaultTerminalID is sent in field 41 when the client has none set.
const DefaultTerminalID = "ATM00001"

// Client sends transactions to a host link server over one connection.
type Client struct {
	TerminalID string

	addr string
	conn *connection.Connection
	stan atomic.Uint32
}

func NewClient(addr string) *Client {
	return &Client{
		TerminalID: DefaultTerminalID,
		addr:       addr,
	}
}

func (c *Client) Connect() error {
	conn, err := connection.New(c.addr, spec, readMessageLength, writeMessageLength)
	if err != nil {
		return fmt.Errorf("creating connection: %w", err)
	}

	if err := conn.Connect(); err != nil {
		return fmt.Errorf("connecting to %s: %w", c.addr, err)
	}

	c.conn = conn

	return nil
}

func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// Transact sends req and waits for the response. Declines come back as the
// matching models errors; SessionID is never set as sessions stay on the
// host.
func (c *Client) Transact(req models.TransactionRequest) (models.TransactionResult, error) {
	if c.conn == nil {
		return models.TransactionResult{}, fmt.Errorf("client is not connected")
	}

	message, err := c.buildRequest(req)
	if err != nil {
		return models.TransactionResult{}, err
	}

	response, err := c.conn.Send(message)
	if err != nil {
		return models.TransactionResult{}, fmt.Errorf("sending request: %w", err)
	}

	mti, err := response.GetMTI()
	if err != nil {
		return models.TransactionResult{}, fmt.Errorf("getting MTI: %w", err)
	}
	if mti != mtiResponse {
		return models.TransactionResult{}, fmt.Errorf("unexpected response MTI %s", mti)
	}

	if err := errorFor(getString(response, 39)); err != nil {
		return models.TransactionResult{}, err
	}

	result := models.TransactionResult{}
	if req.Operation != models.OperationBalance {
		result.Amount = req.Amount
	}
	result.Balance, err = strconv.ParseInt(getString(response, 54), 10, 64)
	if err != nil {
		return models.TransactionResult{}, fmt.Errorf("parsing balance: %w", err)
	}

	return result, nil
}

func (c *Client) buildRequest(req models.TransactionRequest) (*iso8583.Message, error) {
	if err := cardid.ValidateWire(req.CardID); err != nil {
		return nil, err
	}
	if req.Amount < 0 {
		return nil, models.ErrNegativeAmount
	}

	procCode, err := procCodeFor(req.Operation)
	if err != nil {
		return nil, err
	}

	message := iso8583.NewMessage(spec)
	message.MTI(mtiRequest)

	fields := map[int]string{
		2:  req.CardID,
		3:  procCode,
		11: fmt.Sprintf("%06d", c.stan.Add(1)%1000000),
		41: c.TerminalID,
		52: req.PIN,
	}
	if req.Operation != models.OperationBalance {
		fields[4] = strconv.FormatInt(req.Amount, 10)
	}

	for id, v := range fields {
		if v == "" {
			continue
		}
		if err := message.Field(id, v); err != nil {
			return nil, fmt.Errorf("setting field %d: %w", id, err)
		}
	}

	return message, nil
}
